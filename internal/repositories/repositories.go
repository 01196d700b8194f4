package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/fretsheet/internal/codec"
	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/desertthunder/fretsheet/internal/sheets"
)

// Fixed worksheet titles. Every routine additionally owns a worksheet named
// by its numeric ID.
const (
	ItemsSheet         = "Items"
	RoutinesSheet      = "Routines"
	ActiveRoutineSheet = "ActiveRoutine"
	ChartsSheet        = "ChordCharts"
)

// dataSheetRows is the initial grid height of a provisioned data worksheet.
const dataSheetRows = 100

// ProvisionSheets creates any missing fixed worksheets so a blank
// spreadsheet is usable without manual grid setup. Data sheets get their
// header row; the active-routine singleton is a bare cell. Returns the
// titles it created.
func ProvisionSheets(ctx context.Context, store sheets.Spreadsheet, retry shared.RetryConfig) ([]string, error) {
	fixed := []struct {
		title string
		kind  codec.Kind
	}{
		{ItemsSheet, codec.KindItem},
		{RoutinesSheet, codec.KindRoutine},
		{ChartsSheet, codec.KindChordChart},
	}

	var created []string
	for _, sheet := range fixed {
		_, err := store.Worksheet(ctx, sheet.title)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrWorksheetNotFound) {
			return created, err
		}

		schema := sheet.kind.Schema()
		err = withRetry(ctx, retry, func() error {
			ws, err := store.AddWorksheet(ctx, sheet.title, dataSheetRows, schema.Columns)
			if err != nil {
				return err
			}
			return ws.Update(ctx, fmt.Sprintf("A1:%s1", schema.LastColumn), [][]string{schema.Header})
		})
		if err != nil {
			return created, err
		}
		created = append(created, sheet.title)
	}

	if _, err := store.Worksheet(ctx, ActiveRoutineSheet); err != nil {
		if !errors.Is(err, shared.ErrWorksheetNotFound) {
			return created, err
		}
		err = withRetry(ctx, retry, func() error {
			_, err := store.AddWorksheet(ctx, ActiveRoutineSheet, 1, 1)
			return err
		})
		if err != nil {
			return created, err
		}
		created = append(created, ActiveRoutineSheet)
	}

	return created, nil
}

// nextID allocates the next record ID as max(existing)+1. IDs are never
// reused; deleting the highest-numbered record does not free its ID for the
// next allocation within the same read.
func nextID[T models.Record](records []T) int {
	max := 0
	for _, r := range records {
		if r.RecordID() > max {
			max = r.RecordID()
		}
	}
	return max + 1
}

// withRetry wraps a full read-modify-write cycle in the rate-limit retry
// policy. The wrapped op must be safe to re-run from scratch.
func withRetry(ctx context.Context, cfg shared.RetryConfig, op func() error) error {
	return sheets.RetryOnRateLimit(ctx, cfg.MaxRetries, cfg.BaseDelay(), op)
}
