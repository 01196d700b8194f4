package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestCacheRepository(t *testing.T) {
	fetchedAt := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	t.Run("Item snapshots round-trip", func(t *testing.T) {
		repo := NewCacheRepository(newTestDB(t))

		items := []models.Item{
			{ID: 10, ItemRef: 10, Title: "Major Scales", Notes: "metronome", Duration: "10", Description: "warmup", Order: 0, Tuning: "Standard"},
			{ID: 11, ItemRef: 11, Title: "Blackbird", Duration: "15", Order: 1, Tuning: "Standard"},
		}
		if err := repo.SnapshotItems(items, fetchedAt); err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}

		cached, at, err := repo.Items()
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(cached) != 2 {
			t.Fatalf("expected 2 cached items, got %d", len(cached))
		}
		if cached[0].Title != "Major Scales" || cached[1].Title != "Blackbird" {
			t.Errorf("unexpected items: %v", cached)
		}
		if !at.Equal(fetchedAt) {
			t.Errorf("expected fetch time %v, got %v", fetchedAt, at)
		}
	})

	t.Run("Snapshots replace wholesale", func(t *testing.T) {
		repo := NewCacheRepository(newTestDB(t))

		if err := repo.SnapshotItems([]models.Item{{ID: 1, Title: "Old"}}, fetchedAt); err != nil {
			t.Fatalf("first snapshot failed: %v", err)
		}
		if err := repo.SnapshotItems([]models.Item{{ID: 2, Title: "New"}}, fetchedAt.Add(time.Hour)); err != nil {
			t.Fatalf("second snapshot failed: %v", err)
		}

		cached, at, err := repo.Items()
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(cached) != 1 || cached[0].Title != "New" {
			t.Errorf("expected replaced snapshot, got %v", cached)
		}
		if !at.Equal(fetchedAt.Add(time.Hour)) {
			t.Errorf("fetch time not refreshed: %v", at)
		}
	})

	t.Run("Chart snapshots keep position order", func(t *testing.T) {
		repo := NewCacheRepository(newTestDB(t))

		charts := []models.ChordChart{
			{ID: 2, ItemID: "10", Title: "C", ChordData: `{"title":"C"}`, CreatedAt: "2026-08-01 09:31:00", Order: 1},
			{ID: 1, ItemID: "10", Title: "G", ChordData: `{"title":"G"}`, CreatedAt: "2026-08-01 09:30:00", Order: 0},
		}
		if err := repo.SnapshotCharts(charts, fetchedAt); err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}

		cached, _, err := repo.Charts()
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(cached) != 2 {
			t.Fatalf("expected 2 cached charts, got %d", len(cached))
		}
		if cached[0].Title != "G" || cached[1].Title != "C" {
			t.Errorf("expected position ordering, got %v", cached)
		}
		if cached[0].ChordData != `{"title":"G"}` {
			t.Errorf("chord data changed: %q", cached[0].ChordData)
		}
	})

	t.Run("Empty cache", func(t *testing.T) {
		repo := NewCacheRepository(newTestDB(t))

		cached, at, err := repo.Items()
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(cached) != 0 {
			t.Errorf("expected empty cache, got %v", cached)
		}
		if !at.IsZero() {
			t.Errorf("expected zero fetch time, got %v", at)
		}
	})
}
