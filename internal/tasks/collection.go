package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/services"
	"github.com/desertthunder/fretsheet/internal/shared"
	"golang.org/x/time/rate"
)

// CollectionOpts contains configuration for chord collection imports.
type CollectionOpts struct {
	BatchSize int     // Chords per write (default: 50)
	RateLimit float64 // Batch writes per second (default: 0.5)
}

// CollectionResult summarizes a chord collection import.
type CollectionResult struct {
	Imported []string // Chord names added to the library
	Skipped  []string // Names already in the library
	Failed   []string // Names with unusable data, or batches that failed to write
}

// chordVariation is one fingering of a chord in the collection file. The
// file maps chord names to variation lists; only the first variation is
// imported. Positions are listed low E to high E with -1 for muted.
type chordVariation struct {
	Positions []int `json:"positions"`
}

// ImportChordCollection loads a local JSON chord collection and appends the
// chords missing from the common library, in batches with a write rate cap.
// One batch failing marks its chords failed and aborts the import; earlier
// batches stay written.
func (e *ImportEngine) ImportChordCollection(ctx context.Context, progress chan<- ProgressUpdate, path string, opts CollectionOpts) (*CollectionResult, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 0.5
	}

	e.sendProgress(progress, loadCollectionUpdate(1, 1, path))

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chord collection: %w", err)
	}
	var collection map[string][]chordVariation
	if err := json.Unmarshal(raw, &collection); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	existing, err := e.charts.ListCommon(ctx)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[strings.ToLower(c.Title)] = true
	}

	names := make([]string, 0, len(collection))
	for name := range collection {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &CollectionResult{}
	var pending []models.ChordChart
	var pendingNames []string

	for _, name := range names {
		if have[strings.ToLower(name)] {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		variations := collection[name]
		if len(variations) == 0 || len(variations[0].Positions) != 6 {
			result.Failed = append(result.Failed, name)
			continue
		}

		chart := models.ChordChart{ItemID: models.CommonScope, Title: name}
		if err := chart.SetData(services.DiagramFromFrets(name, variations[0].Positions)); err != nil {
			result.Failed = append(result.Failed, name)
			continue
		}

		have[strings.ToLower(name)] = true
		pending = append(pending, chart)
		pendingNames = append(pendingNames, name)
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	totalBatches := (len(pending) + opts.BatchSize - 1) / opts.BatchSize

	for i := 0; i < len(pending); i += opts.BatchSize {
		end := min(i+opts.BatchSize, len(pending))
		batch := pending[i:end]
		batchNames := pendingNames[i:end]

		e.sendProgress(progress, importBatchUpdate(i/opts.BatchSize+1, totalBatches, len(batch)))

		if err := limiter.Wait(ctx); err != nil {
			result.Failed = append(result.Failed, pendingNames[i:]...)
			return result, err
		}
		if _, err := e.charts.BatchAdd(ctx, batch); err != nil {
			result.Failed = append(result.Failed, pendingNames[i:]...)
			return result, err
		}
		result.Imported = append(result.Imported, batchNames...)
	}

	return result, nil
}
