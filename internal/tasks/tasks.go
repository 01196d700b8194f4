// package tasks implements long-running import and export operations.
//
// The core abstraction is ImportEngine, which orchestrates bulk imports,
// chart autocreation, and routine exports over the sheet repositories.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/repositories"
	"github.com/desertthunder/fretsheet/internal/services"
	"github.com/desertthunder/fretsheet/internal/shared"
)

// ItemImport is one row of an item import request.
type ItemImport struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

// ItemImportResult summarizes a bulk item import.
type ItemImportResult struct {
	Imported int           // Number of items appended
	Items    []models.Item // The appended items with assigned IDs
}

// RoutineImportResult summarizes a bulk routine import.
type RoutineImportResult struct {
	Imported []models.Routine // Created routines with provisioned worksheets
	Skipped  []string         // Names skipped because a routine already exists
}

// RoutineItemImportResult summarizes importing items into a routine by title.
type RoutineItemImportResult struct {
	Imported int      // Entries appended to the routine
	Skipped  []string // Titles already present in the routine
	NotFound []string // Titles with no matching practice item
}

// AutocreateResult contains the charts created from a chord sheet analysis.
type AutocreateResult struct {
	Analysis *services.Analysis  // Raw recognition result
	Charts   []models.ChordChart // Charts persisted for the item
}

// Engine defines the long-running operations exposed to the CLI.
type Engine interface {
	// ImportItems appends a batch of practice items to the Items sheet.
	ImportItems(ctx context.Context, progress chan<- ProgressUpdate, entries []ItemImport) (*ItemImportResult, error)

	// ImportRoutines creates a routine (and its worksheet) per name, skipping duplicates.
	ImportRoutines(ctx context.Context, progress chan<- ProgressUpdate, names []string) (*RoutineImportResult, error)

	// ImportRoutineItems adds items to a routine by matching titles case-insensitively.
	ImportRoutineItems(ctx context.Context, progress chan<- ProgressUpdate, routineID int, titles []string) (*RoutineItemImportResult, error)

	// AutocreateCharts analyzes chord sheet uploads and persists the recognized charts.
	AutocreateCharts(ctx context.Context, progress chan<- ProgressUpdate, itemID int, files []services.File) (*AutocreateResult, error)

	// ImportChordCollection loads a local chord collection file into the common library.
	ImportChordCollection(ctx context.Context, progress chan<- ProgressUpdate, path string, opts CollectionOpts) (*CollectionResult, error)

	// ExportRoutines writes routines to local files concurrently.
	ExportRoutines(ctx context.Context, progress chan<- ProgressUpdate, ids []int, opts ExportOpts) (*ExportResult, error)
}

// ImportEngine implements Engine over the sheet repositories.
type ImportEngine struct {
	items      *repositories.ItemRepository
	routines   *repositories.RoutineRepository
	charts     *repositories.ChartRepository
	recognizer services.Recognizer
}

// NewImportEngine creates a new ImportEngine with the provided repositories.
// The recognizer may be nil when chart autocreation is not configured.
func NewImportEngine(items *repositories.ItemRepository, routines *repositories.RoutineRepository, charts *repositories.ChartRepository, recognizer services.Recognizer) *ImportEngine {
	return &ImportEngine{
		items:      items,
		routines:   routines,
		charts:     charts,
		recognizer: recognizer,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// ImportItems appends the given entries to the Items sheet in a single write.
func (e *ImportEngine) ImportItems(ctx context.Context, progress chan<- ProgressUpdate, entries []ItemImport) (*ItemImportResult, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no items to import", shared.ErrInvalidInput)
	}
	for _, entry := range entries {
		if entry.Title == "" {
			return nil, fmt.Errorf("%w: every item needs a title", shared.ErrInvalidInput)
		}
	}

	e.sendProgress(progress, appendItemsUpdate(1, 1, len(entries)))

	incoming := make([]models.Item, len(entries))
	for i, entry := range entries {
		incoming[i] = models.Item{Title: entry.Title, Duration: entry.Duration}
	}

	imported, err := e.items.BulkImport(ctx, incoming)
	if err != nil {
		return nil, err
	}

	result := &ItemImportResult{Imported: len(imported), Items: imported}
	e.sendProgress(progress, importedItemsUpdate(1, 1, result))
	return result, nil
}

// ImportRoutines creates one routine per name. Names whose routine already
// exists are skipped; any other failure aborts the import.
func (e *ImportEngine) ImportRoutines(ctx context.Context, progress chan<- ProgressUpdate, names []string) (*RoutineImportResult, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no routines to import", shared.ErrInvalidInput)
	}

	result := &RoutineImportResult{}
	for i, name := range names {
		e.sendProgress(progress, createRoutineUpdate(i+1, len(names), name))

		routine, err := e.routines.Create(ctx, name)
		if errors.Is(err, shared.ErrDuplicateName) {
			result.Skipped = append(result.Skipped, name)
			continue
		}
		if err != nil {
			return result, err
		}
		result.Imported = append(result.Imported, routine)
	}
	return result, nil
}

// ImportRoutineItems matches titles against the Items sheet and appends an
// entry per match. Unmatched titles are reported rather than imported, and
// items already in the routine are skipped.
func (e *ImportEngine) ImportRoutineItems(ctx context.Context, progress chan<- ProgressUpdate, routineID int, titles []string) (*RoutineItemImportResult, error) {
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: no titles to import", shared.ErrInvalidInput)
	}

	e.sendProgress(progress, matchTitlesUpdate(1, 2))

	items, err := e.items.List(ctx)
	if err != nil {
		return nil, err
	}
	byTitle := make(map[string]models.Item, len(items))
	for _, item := range items {
		byTitle[shared.NormalizeName(item.Title)] = item
	}

	existing, err := e.routines.Entries(ctx, routineID)
	if err != nil {
		return nil, err
	}
	present := make(map[int]bool, len(existing))
	for _, entry := range existing {
		present[entry.ItemID] = true
	}

	e.sendProgress(progress, appendEntriesUpdate(2, 2, len(titles)))

	result := &RoutineItemImportResult{}
	for _, title := range titles {
		item, ok := byTitle[shared.NormalizeName(title)]
		if !ok {
			result.NotFound = append(result.NotFound, title)
			continue
		}
		if present[item.ID] {
			result.Skipped = append(result.Skipped, title)
			continue
		}

		if _, err := e.routines.AddEntry(ctx, routineID, item.ID); err != nil {
			return result, err
		}
		present[item.ID] = true
		result.Imported++
	}
	return result, nil
}

// AutocreateCharts runs recognition over the uploads and persists one chart
// per recognized chord, scoped to the given item.
func (e *ImportEngine) AutocreateCharts(ctx context.Context, progress chan<- ProgressUpdate, itemID int, files []services.File) (*AutocreateResult, error) {
	if e.recognizer == nil {
		return nil, fmt.Errorf("%w: recognizer not configured", shared.ErrMissingConfig)
	}
	if _, err := e.items.Get(ctx, itemID); err != nil {
		return nil, err
	}

	e.sendProgress(progress, analyzeFilesUpdate(1, 2, len(files)))

	analysis, err := e.recognizer.AnalyzeChordSheet(ctx, files)
	if err != nil {
		return nil, err
	}

	diagrams := analysis.ChartData()
	incoming := make([]models.ChordChart, 0, len(diagrams))
	for _, diagram := range diagrams {
		chart := models.ChordChart{ItemID: strconv.Itoa(itemID), Title: diagram.Title}
		if err := chart.SetData(diagram); err != nil {
			return nil, err
		}
		incoming = append(incoming, chart)
	}
	if len(incoming) == 0 {
		return nil, fmt.Errorf("%w: analysis produced no chords", shared.ErrMalformedResponse)
	}

	e.sendProgress(progress, createChartsUpdate(2, 2, len(incoming)))

	charts, err := e.charts.BatchAdd(ctx, incoming)
	if err != nil {
		return nil, err
	}
	return &AutocreateResult{Analysis: analysis, Charts: charts}, nil
}
