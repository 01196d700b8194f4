package repositories

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/fretsheet/internal/codec"
	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/desertthunder/fretsheet/internal/sheets"
)

// ChartRepository manages chord charts on the ChordCharts worksheet. Unlike
// items, chart order is dense per ItemID scope: each item's charts and the
// common library each count from zero independently.
type ChartRepository struct {
	store sheets.Spreadsheet
	retry shared.RetryConfig
}

// NewChartRepository creates a new ChartRepository backed by the given
// spreadsheet.
func NewChartRepository(store sheets.Spreadsheet, retry shared.RetryConfig) *ChartRepository {
	return &ChartRepository{store: store, retry: retry}
}

func (r *ChartRepository) worksheet(ctx context.Context) (sheets.Worksheet, error) {
	return r.store.Worksheet(ctx, ChartsSheet)
}

func (r *ChartRepository) readAll(ctx context.Context, ws sheets.Worksheet) ([]models.ChordChart, error) {
	grid, err := codec.ReadGrid(ctx, ws, codec.KindChordChart)
	if err != nil {
		return nil, err
	}
	return codec.DecodeCharts(grid), nil
}

func (r *ChartRepository) writeAll(ctx context.Context, ws sheets.Worksheet, charts []models.ChordChart) error {
	return codec.WriteGrid(ctx, ws, codec.KindChordChart, codec.EncodeCharts(charts))
}

// List returns every chart on the worksheet.
func (r *ChartRepository) List(ctx context.Context) ([]models.ChordChart, error) {
	ws, err := r.worksheet(ctx)
	if err != nil {
		return nil, err
	}
	return r.readAll(ctx, ws)
}

// ListForItem returns the charts attached to an item, sorted by their order
// within that item's scope. Multi-item charts are included for each item they
// reference.
func (r *ChartRepository) ListForItem(ctx context.Context, itemID int) ([]models.ChordChart, error) {
	charts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var matched []models.ChordChart
	for _, c := range charts {
		if c.AppliesTo(itemID) {
			matched = append(matched, c)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Order < matched[j].Order })
	return matched, nil
}

// ListCommon returns the shared chord library sorted by order.
func (r *ChartRepository) ListCommon(ctx context.Context) ([]models.ChordChart, error) {
	charts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var common []models.ChordChart
	for _, c := range charts {
		if c.IsCommon() {
			common = append(common, c)
		}
	}
	sort.SliceStable(common, func(i, j int) bool { return common[i].Order < common[j].Order })
	return common, nil
}

// SearchCommon finds library chords whose title contains the query,
// case-insensitively.
func (r *ChartRepository) SearchCommon(ctx context.Context, query string) ([]models.ChordChart, error) {
	common, err := r.ListCommon(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return common, nil
	}

	var matched []models.ChordChart
	for _, c := range common {
		if strings.Contains(strings.ToLower(c.Title), needle) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// scopeCounts tallies existing charts per ordering scope.
func scopeCounts(charts []models.ChordChart) map[string]int {
	counts := make(map[string]int)
	for _, c := range charts {
		counts[c.ScopeKey()]++
	}
	return counts
}

// Add allocates an ID, assigns the next order slot within the chart's scope,
// and persists it.
func (r *ChartRepository) Add(ctx context.Context, chart models.ChordChart) (models.ChordChart, error) {
	added, err := r.BatchAdd(ctx, []models.ChordChart{chart})
	if err != nil {
		return models.ChordChart{}, err
	}
	return added[0], nil
}

// BatchAdd appends several charts in a single read-modify-write cycle,
// allocating sequential IDs and per-scope order slots.
func (r *ChartRepository) BatchAdd(ctx context.Context, incoming []models.ChordChart) ([]models.ChordChart, error) {
	if len(incoming) == 0 {
		return nil, nil
	}

	ws, err := r.worksheet(ctx)
	if err != nil {
		return nil, err
	}

	var added []models.ChordChart
	err = withRetry(ctx, r.retry, func() error {
		charts, err := r.readAll(ctx, ws)
		if err != nil {
			return err
		}

		added = added[:0]
		id := nextID(charts)
		counts := scopeCounts(charts)
		for _, chart := range incoming {
			if strings.TrimSpace(chart.ItemID) == "" {
				chart.ItemID = models.CommonScope
			}
			chart.ID = id
			chart.Order = counts[chart.ScopeKey()]
			if chart.CreatedAt == "" {
				chart.CreatedAt = shared.Timestamp()
			}
			counts[chart.ScopeKey()]++
			id++

			charts = append(charts, chart)
			added = append(added, chart)
		}
		return r.writeAll(ctx, ws, charts)
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// Update replaces a chart's title and chord data, preserving its identity,
// scope, order, and creation time.
func (r *ChartRepository) Update(ctx context.Context, chart models.ChordChart) (models.ChordChart, error) {
	ws, err := r.worksheet(ctx)
	if err != nil {
		return models.ChordChart{}, err
	}

	var updated models.ChordChart
	err = withRetry(ctx, r.retry, func() error {
		charts, err := r.readAll(ctx, ws)
		if err != nil {
			return err
		}

		found := false
		for i, existing := range charts {
			if existing.ID != chart.ID {
				continue
			}
			existing.Title = chart.Title
			existing.ChordData = chart.ChordData
			charts[i] = existing
			updated = existing
			found = true
			break
		}
		if !found {
			return fmt.Errorf("%w: chart %d", shared.ErrNotFound, chart.ID)
		}
		return r.writeAll(ctx, ws, charts)
	})
	if err != nil {
		return models.ChordChart{}, err
	}
	return updated, nil
}

// Delete removes a single chart, compacting order within its scope.
func (r *ChartRepository) Delete(ctx context.Context, id int) error {
	result, err := r.BatchDelete(ctx, []int{id})
	if err != nil {
		return err
	}
	if len(result.NotFound) > 0 {
		return fmt.Errorf("%w: chart %d", shared.ErrNotFound, id)
	}
	return nil
}

// BatchDelete removes several charts in one read-modify-write cycle. Orders
// are recomputed per scope: each survivor's order drops by the number of
// deleted orders below it in the same scope. When the final write fails after
// retries, the affected IDs are reported as failed alongside the error.
func (r *ChartRepository) BatchDelete(ctx context.Context, ids []int) (models.BatchDeleteResult, error) {
	var result models.BatchDeleteResult

	ws, err := r.worksheet(ctx)
	if err != nil {
		return result, err
	}

	requested := make(map[int]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}

	err = withRetry(ctx, r.retry, func() error {
		charts, err := r.readAll(ctx, ws)
		if err != nil {
			return err
		}

		result = models.BatchDeleteResult{}
		deletedOrders := make(map[string][]int)
		present := make(map[int]bool)

		kept := charts[:0]
		for _, c := range charts {
			if requested[c.ID] {
				present[c.ID] = true
				scope := c.ScopeKey()
				deletedOrders[scope] = append(deletedOrders[scope], c.Order)
				result.Deleted = append(result.Deleted, c.ID)
				continue
			}
			kept = append(kept, c)
		}
		for id := range requested {
			if !present[id] {
				result.NotFound = append(result.NotFound, id)
			}
		}
		sort.Ints(result.Deleted)
		sort.Ints(result.NotFound)

		for i := range kept {
			below := 0
			for _, order := range deletedOrders[kept[i].ScopeKey()] {
				if order < kept[i].Order {
					below++
				}
			}
			kept[i].Order -= below
		}
		return r.writeAll(ctx, ws, kept)
	})
	if err != nil {
		result.Failed = result.Deleted
		result.Deleted = nil
		return result, err
	}
	return result, nil
}

// Reorder applies caller-supplied order values verbatim. The caller is
// trusted to keep each scope's assignment dense; density is not validated.
func (r *ChartRepository) Reorder(ctx context.Context, orders map[int]int) error {
	ws, err := r.worksheet(ctx)
	if err != nil {
		return err
	}

	return withRetry(ctx, r.retry, func() error {
		charts, err := r.readAll(ctx, ws)
		if err != nil {
			return err
		}
		for i := range charts {
			if order, ok := orders[charts[i].ID]; ok {
				charts[i].Order = order
			}
		}
		return r.writeAll(ctx, ws, charts)
	})
}

// CopyToItems clones every chart of the source item onto each target item in
// a single write. Returns the clones in creation order.
func (r *ChartRepository) CopyToItems(ctx context.Context, sourceItemID int, targetItemIDs []int) ([]models.ChordChart, error) {
	if len(targetItemIDs) == 0 {
		return nil, fmt.Errorf("%w: no target items", shared.ErrInvalidInput)
	}

	ws, err := r.worksheet(ctx)
	if err != nil {
		return nil, err
	}

	var copied []models.ChordChart
	err = withRetry(ctx, r.retry, func() error {
		charts, err := r.readAll(ctx, ws)
		if err != nil {
			return err
		}

		var source []models.ChordChart
		for _, c := range charts {
			if c.AppliesTo(sourceItemID) {
				source = append(source, c)
			}
		}
		sort.SliceStable(source, func(i, j int) bool { return source[i].Order < source[j].Order })
		if len(source) == 0 {
			return fmt.Errorf("%w: item %d has no charts", shared.ErrNotFound, sourceItemID)
		}

		copied = copied[:0]
		id := nextID(charts)
		counts := scopeCounts(charts)
		for _, target := range targetItemIDs {
			scope := strconv.Itoa(target)
			for _, c := range source {
				clone := c
				clone.ID = id
				clone.ItemID = scope
				clone.Order = counts[scope]
				clone.CreatedAt = shared.Timestamp()
				counts[scope]++
				id++

				charts = append(charts, clone)
				copied = append(copied, clone)
			}
		}
		return r.writeAll(ctx, ws, charts)
	})
	if err != nil {
		return nil, err
	}
	return copied, nil
}

// SeedCommon adds the essential open chords to the library, skipping any
// whose title is already present. Returns the charts actually added.
func (r *ChartRepository) SeedCommon(ctx context.Context) ([]models.ChordChart, error) {
	existing, err := r.ListCommon(ctx)
	if err != nil {
		return nil, err
	}

	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[strings.ToLower(c.Title)] = true
	}

	var missing []models.ChordChart
	for _, seed := range commonChordSeeds() {
		if have[strings.ToLower(seed.Title)] {
			continue
		}
		chart := models.ChordChart{ItemID: models.CommonScope, Title: seed.Title}
		if err := chart.SetData(seed); err != nil {
			return nil, err
		}
		missing = append(missing, chart)
	}
	if len(missing) == 0 {
		return nil, nil
	}

	return r.BatchAdd(ctx, missing)
}

// commonChordSeeds returns diagrams for the essential open chords. Finger
// entries are [string, fret] pairs with string 1 = high E.
func commonChordSeeds() []models.ChordData {
	openChord := func(title string, fingers [][]any, open, muted []int) models.ChordData {
		return models.ChordData{
			Title:        title,
			NumFrets:     4,
			NumStrings:   6,
			Fingers:      fingers,
			OpenStrings:  open,
			MutedStrings: muted,
		}
	}

	return []models.ChordData{
		openChord("A", [][]any{{2, 2}, {3, 2}, {4, 2}}, []int{1, 5}, []int{6}),
		openChord("Am", [][]any{{2, 1}, {3, 2}, {4, 2}}, []int{1, 5}, []int{6}),
		openChord("C", [][]any{{2, 1}, {4, 2}, {5, 3}}, []int{1, 3}, []int{6}),
		openChord("D", [][]any{{1, 2}, {2, 3}, {3, 2}}, []int{4}, []int{5, 6}),
		openChord("Dm", [][]any{{1, 1}, {2, 3}, {3, 2}}, []int{4}, []int{5, 6}),
		openChord("E", [][]any{{3, 1}, {4, 2}, {5, 2}}, []int{1, 2, 6}, nil),
		openChord("Em", [][]any{{4, 2}, {5, 2}}, []int{1, 2, 3, 6}, nil),
		{
			Title:      "F",
			NumFrets:   4,
			NumStrings: 6,
			Fingers:    [][]any{{2, 1}, {3, 2}, {4, 3}},
			Barres:     []models.Barre{{FromString: 1, ToString: 6, Fret: 1}},
		},
		openChord("G", [][]any{{1, 3}, {5, 2}, {6, 3}}, []int{2, 3, 4}, nil),
	}
}
