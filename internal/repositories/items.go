package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/fretsheet/internal/codec"
	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/desertthunder/fretsheet/internal/sheets"
)

// ItemRepository manages practice items on the Items worksheet. Order is a
// dense 0-based rank over all items.
type ItemRepository struct {
	store sheets.Spreadsheet
	retry shared.RetryConfig
}

// NewItemRepository creates a new ItemRepository backed by the given
// spreadsheet.
func NewItemRepository(store sheets.Spreadsheet, retry shared.RetryConfig) *ItemRepository {
	return &ItemRepository{store: store, retry: retry}
}

func (r *ItemRepository) worksheet(ctx context.Context) (sheets.Worksheet, error) {
	return r.store.Worksheet(ctx, ItemsSheet)
}

// readAll loads every item, sorted by order.
func (r *ItemRepository) readAll(ctx context.Context, ws sheets.Worksheet) ([]models.Item, error) {
	grid, err := codec.ReadGrid(ctx, ws, codec.KindItem)
	if err != nil {
		return nil, err
	}
	return codec.DecodeItems(grid), nil
}

func (r *ItemRepository) writeAll(ctx context.Context, ws sheets.Worksheet, items []models.Item) error {
	return codec.WriteGrid(ctx, ws, codec.KindItem, codec.EncodeItems(items))
}

// List returns all items sorted by order.
func (r *ItemRepository) List(ctx context.Context) ([]models.Item, error) {
	ws, err := r.worksheet(ctx)
	if err != nil {
		return nil, err
	}
	return r.readAll(ctx, ws)
}

// Get returns a single item by ID.
func (r *ItemRepository) Get(ctx context.Context, id int) (models.Item, error) {
	items, err := r.List(ctx)
	if err != nil {
		return models.Item{}, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return models.Item{}, fmt.Errorf("%w: item %d", shared.ErrNotFound, id)
}

// dedupeTitle resolves a title collision by suffixing " (n)" with the lowest
// free n.
func dedupeTitle(title string, items []models.Item) string {
	taken := make(map[string]bool, len(items))
	for _, it := range items {
		taken[shared.NormalizeName(it.Title)] = true
	}

	if !taken[shared.NormalizeName(title)] {
		return title
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", title, n)
		if !taken[shared.NormalizeName(candidate)] {
			return candidate
		}
	}
}

// Add allocates an ID, resolves title collisions, assigns the next order
// slot, and persists the item. ItemRef mirrors the allocated ID.
func (r *ItemRepository) Add(ctx context.Context, item models.Item) (models.Item, error) {
	ws, err := r.worksheet(ctx)
	if err != nil {
		return models.Item{}, err
	}

	var added models.Item
	err = withRetry(ctx, r.retry, func() error {
		items, err := r.readAll(ctx, ws)
		if err != nil {
			return err
		}

		item.ID = nextID(items)
		item.ItemRef = item.ID
		item.Title = dedupeTitle(item.Title, items)
		item.Order = len(items)

		added = item
		return r.writeAll(ctx, ws, append(items, item))
	})
	if err != nil {
		return models.Item{}, err
	}
	return added, nil
}

// Update replaces the stored fields of an item, preserving its ID and order.
func (r *ItemRepository) Update(ctx context.Context, item models.Item) (models.Item, error) {
	ws, err := r.worksheet(ctx)
	if err != nil {
		return models.Item{}, err
	}

	var updated models.Item
	err = withRetry(ctx, r.retry, func() error {
		items, err := r.readAll(ctx, ws)
		if err != nil {
			return err
		}

		found := false
		for i, existing := range items {
			if existing.ID != item.ID {
				continue
			}
			item.ItemRef = existing.ItemRef
			item.Order = existing.Order
			items[i] = item
			updated = item
			found = true
			break
		}
		if !found {
			return fmt.Errorf("%w: item %d", shared.ErrNotFound, item.ID)
		}
		return r.writeAll(ctx, ws, items)
	})
	if err != nil {
		return models.Item{}, err
	}
	return updated, nil
}

// UpdateNotes replaces only the notes field of an item.
func (r *ItemRepository) UpdateNotes(ctx context.Context, id int, notes string) error {
	ws, err := r.worksheet(ctx)
	if err != nil {
		return err
	}

	return withRetry(ctx, r.retry, func() error {
		items, err := r.readAll(ctx, ws)
		if err != nil {
			return err
		}

		found := false
		for i := range items {
			if items[i].ID == id {
				items[i].Notes = notes
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: item %d", shared.ErrNotFound, id)
		}
		return r.writeAll(ctx, ws, items)
	})
}

// Delete removes an item and closes the order gap: every remaining item with
// a higher order decrements by one.
func (r *ItemRepository) Delete(ctx context.Context, id int) error {
	ws, err := r.worksheet(ctx)
	if err != nil {
		return err
	}

	return withRetry(ctx, r.retry, func() error {
		items, err := r.readAll(ctx, ws)
		if err != nil {
			return err
		}

		removedOrder := -1
		kept := items[:0]
		for _, it := range items {
			if it.ID == id {
				removedOrder = it.Order
				continue
			}
			kept = append(kept, it)
		}
		if removedOrder < 0 {
			return fmt.Errorf("%w: item %d", shared.ErrNotFound, id)
		}

		for i := range kept {
			if kept[i].Order > removedOrder {
				kept[i].Order--
			}
		}
		return r.writeAll(ctx, ws, kept)
	})
}

// Reorder applies caller-supplied order values verbatim. The caller is
// trusted to supply a dense zero-based assignment; density is not validated.
// IDs absent from the mapping keep their current order.
func (r *ItemRepository) Reorder(ctx context.Context, orders map[int]int) error {
	ws, err := r.worksheet(ctx)
	if err != nil {
		return err
	}

	return withRetry(ctx, r.retry, func() error {
		items, err := r.readAll(ctx, ws)
		if err != nil {
			return err
		}

		for i := range items {
			if order, ok := orders[items[i].ID]; ok {
				items[i].Order = order
			}
		}
		return r.writeAll(ctx, ws, items)
	})
}

// BulkImport appends a batch of items in one write, allocating sequential
// IDs and order slots and resolving title collisions against both the sheet
// and earlier entries of the batch.
func (r *ItemRepository) BulkImport(ctx context.Context, incoming []models.Item) ([]models.Item, error) {
	if len(incoming) == 0 {
		return nil, nil
	}

	ws, err := r.worksheet(ctx)
	if err != nil {
		return nil, err
	}

	var added []models.Item
	err = withRetry(ctx, r.retry, func() error {
		items, err := r.readAll(ctx, ws)
		if err != nil {
			return err
		}

		added = added[:0]
		id := nextID(items)
		for _, item := range incoming {
			item.ID = id
			item.ItemRef = id
			item.Title = dedupeTitle(item.Title, items)
			item.Order = len(items)
			items = append(items, item)
			added = append(added, item)
			id++
		}
		return r.writeAll(ctx, ws, items)
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}
