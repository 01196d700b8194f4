package main

import (
	"context"
	"time"

	"github.com/desertthunder/fretsheet/internal/repositories"
	"github.com/urfave/cli/v3"
)

// CacheRefresh snapshots items and charts from the sheet into the local database.
func (r *Runner) CacheRefresh(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	cache := repositories.NewCacheRepository(db)
	fetchedAt := time.Now()

	items, err := r.items.List(ctx)
	if err != nil {
		return err
	}
	if err := cache.SnapshotItems(items, fetchedAt); err != nil {
		return err
	}
	r.logger.Info("items snapshotted", "count", len(items))

	charts, err := r.charts.List(ctx)
	if err != nil {
		return err
	}
	if err := cache.SnapshotCharts(charts, fetchedAt); err != nil {
		return err
	}
	r.logger.Info("charts snapshotted", "count", len(charts))

	return r.writePlain("✓ Cached %d items and %d charts\n", len(items), len(charts))
}

// CacheItems lists items from the local snapshot without touching the sheet.
func (r *Runner) CacheItems(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	r.ensureConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	items, fetchedAt, err := repositories.NewCacheRepository(db).Items()
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(items, true)
	}

	r.writePlain("%d items cached at %s:\n\n", len(items), fetchedAt.Format(time.RFC3339))
	for _, item := range items {
		r.writePlain("%d. %s\n", item.ID, item.Title)
	}
	return nil
}

// CacheCharts lists charts from the local snapshot without touching the sheet.
func (r *Runner) CacheCharts(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	r.ensureConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	charts, fetchedAt, err := repositories.NewCacheRepository(db).Charts()
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(charts, true)
	}

	r.writePlain("%d charts cached at %s:\n\n", len(charts), fetchedAt.Format(time.RFC3339))
	r.printCharts(charts)
	return nil
}
