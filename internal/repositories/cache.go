package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/fretsheet/internal/models"
)

// CacheRepository stores read-only snapshots of the remote worksheets in
// local SQLite for offline listing. The spreadsheet stays the sole source of
// truth; snapshots are replaced wholesale on each refresh and never written
// back.
type CacheRepository struct {
	db *sql.DB
}

// NewCacheRepository creates a new CacheRepository with the given database
// connection.
func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// SnapshotItems replaces the cached item set.
func (r *CacheRepository) SnapshotItems(items []models.Item, fetchedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cached_items"); err != nil {
		return fmt.Errorf("failed to clear item snapshot: %w", err)
	}

	query := `
		INSERT INTO cached_items (id, item_ref, title, notes, duration, description, position, tuning, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, item := range items {
		if _, err := tx.Exec(query,
			item.ID,
			item.ItemRef,
			item.Title,
			item.Notes,
			item.Duration,
			item.Description,
			item.Order,
			item.Tuning,
			fetchedAt,
		); err != nil {
			return fmt.Errorf("failed to insert item snapshot: %w", err)
		}
	}

	return tx.Commit()
}

// SnapshotCharts replaces the cached chart set.
func (r *CacheRepository) SnapshotCharts(charts []models.ChordChart, fetchedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cached_charts"); err != nil {
		return fmt.Errorf("failed to clear chart snapshot: %w", err)
	}

	query := `
		INSERT INTO cached_charts (id, item_id, title, chord_data, created_at, position, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, chart := range charts {
		if _, err := tx.Exec(query,
			chart.ID,
			chart.ItemID,
			chart.Title,
			chart.ChordData,
			chart.CreatedAt,
			chart.Order,
			fetchedAt,
		); err != nil {
			return fmt.Errorf("failed to insert chart snapshot: %w", err)
		}
	}

	return tx.Commit()
}

// Items returns the cached items sorted by position, with the snapshot time.
func (r *CacheRepository) Items() ([]models.Item, time.Time, error) {
	query := `
		SELECT id, item_ref, title, notes, duration, description, position, tuning, fetched_at
		FROM cached_items
		ORDER BY position
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query item snapshot: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	var fetchedAt time.Time
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(
			&item.ID,
			&item.ItemRef,
			&item.Title,
			&item.Notes,
			&item.Duration,
			&item.Description,
			&item.Order,
			&item.Tuning,
			&fetchedAt,
		); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan item snapshot: %w", err)
		}
		items = append(items, item)
	}
	return items, fetchedAt, rows.Err()
}

// Charts returns the cached charts sorted by scope and position, with the
// snapshot time.
func (r *CacheRepository) Charts() ([]models.ChordChart, time.Time, error) {
	query := `
		SELECT id, item_id, title, chord_data, created_at, position, fetched_at
		FROM cached_charts
		ORDER BY item_id, position
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query chart snapshot: %w", err)
	}
	defer rows.Close()

	var charts []models.ChordChart
	var fetchedAt time.Time
	for rows.Next() {
		var chart models.ChordChart
		if err := rows.Scan(
			&chart.ID,
			&chart.ItemID,
			&chart.Title,
			&chart.ChordData,
			&chart.CreatedAt,
			&chart.Order,
			&fetchedAt,
		); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan chart snapshot: %w", err)
		}
		charts = append(charts, chart)
	}
	return charts, fetchedAt, rows.Err()
}
