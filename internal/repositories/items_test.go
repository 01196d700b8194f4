package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/shared"
)

func TestItemRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("List returns items sorted by order", func(t *testing.T) {
		repo := NewItemRepository(newFakeStore(t), testRetry)

		items, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(items) != 4 {
			t.Fatalf("expected 4 items, got %d", len(items))
		}
		for i, item := range items {
			if item.Order != i {
				t.Errorf("item %d has order %d, want %d", item.ID, item.Order, i)
			}
		}
	})

	t.Run("Get missing item", func(t *testing.T) {
		repo := NewItemRepository(newFakeStore(t), testRetry)

		_, err := repo.Get(ctx, 99)
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Add allocates ID and order and mirrors ItemRef", func(t *testing.T) {
		repo := NewItemRepository(newFakeStore(t), testRetry)

		added, err := repo.Add(ctx, models.Item{Title: "Fingerpicking", Duration: "10"})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if added.ID != 14 || added.ItemRef != 14 {
			t.Errorf("expected ID and ItemRef 14, got %d/%d", added.ID, added.ItemRef)
		}
		if added.Order != 4 {
			t.Errorf("expected order 4, got %d", added.Order)
		}

		items, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		orders := make([]int, len(items))
		for i, it := range items {
			orders[i] = it.Order
		}
		assertDenseOrders(t, orders)
	})

	t.Run("Duplicate titles get numbered suffixes", func(t *testing.T) {
		repo := NewItemRepository(newFakeStore(t), testRetry)

		first, err := repo.Add(ctx, models.Item{Title: "Major Scales"})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if first.Title != "Major Scales (1)" {
			t.Errorf("expected Major Scales (1), got %q", first.Title)
		}

		second, err := repo.Add(ctx, models.Item{Title: "Major Scales"})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if second.Title != "Major Scales (2)" {
			t.Errorf("expected Major Scales (2), got %q", second.Title)
		}
	})

	t.Run("Delete compacts orders", func(t *testing.T) {
		repo := NewItemRepository(newFakeStore(t), testRetry)

		// Items hold orders [0,1,2,3] for IDs [10,11,12,13]; deleting ID 11
		// leaves [0,1,2] for [10,12,13].
		if err := repo.Delete(ctx, 11); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		items, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}

		wantOrders := map[int]int{10: 0, 12: 1, 13: 2}
		for _, it := range items {
			if want, ok := wantOrders[it.ID]; !ok || it.Order != want {
				t.Errorf("item %d has order %d, want %d", it.ID, it.Order, want)
			}
		}
	})

	t.Run("Delete missing item", func(t *testing.T) {
		repo := NewItemRepository(newFakeStore(t), testRetry)

		if err := repo.Delete(ctx, 99); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("IDs are never reused", func(t *testing.T) {
		repo := NewItemRepository(newFakeStore(t), testRetry)

		if err := repo.Delete(ctx, 13); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		added, err := repo.Add(ctx, models.Item{Title: "New Item"})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if added.ID != 14 {
			t.Errorf("expected fresh ID 14 after deleting 13, got %d", added.ID)
		}
	})

	t.Run("Update preserves ID and order", func(t *testing.T) {
		repo := NewItemRepository(newFakeStore(t), testRetry)

		updated, err := repo.Update(ctx, models.Item{ID: 11, Title: "Blackbird", Notes: "capo 0", Duration: "20", Tuning: "Standard"})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Order != 1 || updated.ItemRef != 11 {
			t.Errorf("expected preserved order 1 and ItemRef 11, got %d/%d", updated.Order, updated.ItemRef)
		}

		got, err := repo.Get(ctx, 11)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Notes != "capo 0" || got.Duration != "20" {
			t.Errorf("unexpected stored item: %+v", got)
		}
	})

	t.Run("UpdateNotes touches only notes", func(t *testing.T) {
		repo := NewItemRepository(newFakeStore(t), testRetry)

		if err := repo.UpdateNotes(ctx, 12, "slow to 60bpm"); err != nil {
			t.Fatalf("update notes failed: %v", err)
		}

		got, err := repo.Get(ctx, 12)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Notes != "slow to 60bpm" {
			t.Errorf("expected updated notes, got %q", got.Notes)
		}
		if got.Title != "Sweep Picking" || got.Order != 2 {
			t.Errorf("other fields changed: %+v", got)
		}
	})

	t.Run("Reorder applies caller orders verbatim", func(t *testing.T) {
		repo := NewItemRepository(newFakeStore(t), testRetry)

		err := repo.Reorder(ctx, map[int]int{10: 3, 11: 2, 12: 1, 13: 0})
		if err != nil {
			t.Fatalf("reorder failed: %v", err)
		}

		items, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if items[0].ID != 13 || items[3].ID != 10 {
			t.Errorf("expected reversed order, got %v", items)
		}
	})

	t.Run("BulkImport allocates sequential IDs and dedupes against the batch", func(t *testing.T) {
		repo := NewItemRepository(newFakeStore(t), testRetry)

		added, err := repo.BulkImport(ctx, []models.Item{
			{Title: "Travis Picking"},
			{Title: "Travis Picking"},
			{Title: "Major Scales"},
		})
		if err != nil {
			t.Fatalf("bulk import failed: %v", err)
		}
		if len(added) != 3 {
			t.Fatalf("expected 3 items, got %d", len(added))
		}
		if added[0].ID != 14 || added[1].ID != 15 || added[2].ID != 16 {
			t.Errorf("expected sequential IDs 14..16, got %d,%d,%d", added[0].ID, added[1].ID, added[2].ID)
		}
		if added[1].Title != "Travis Picking (1)" {
			t.Errorf("expected batch-level dedup, got %q", added[1].Title)
		}
		if added[2].Title != "Major Scales (1)" {
			t.Errorf("expected sheet-level dedup, got %q", added[2].Title)
		}

		items, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		orders := make([]int, len(items))
		for i, it := range items {
			orders[i] = it.Order
		}
		assertDenseOrders(t, orders)
	})

	t.Run("Writes retry through rate limits", func(t *testing.T) {
		store := newFakeStore(t)
		repo := NewItemRepository(store, testRetry)

		store.FailWrites(fmt.Errorf("%w: quota exceeded", shared.ErrRateLimited), 2)

		added, err := repo.Add(ctx, models.Item{Title: "Alternate Picking"})
		if err != nil {
			t.Fatalf("expected retries to recover, got %v", err)
		}
		if added.ID != 14 {
			t.Errorf("expected ID 14, got %d", added.ID)
		}
	})

	t.Run("Exhausted retries surface the rate limit", func(t *testing.T) {
		store := newFakeStore(t)
		repo := NewItemRepository(store, testRetry)

		store.FailWrites(fmt.Errorf("%w: quota exceeded", shared.ErrRateLimited), 10)

		_, err := repo.Add(ctx, models.Item{Title: "Alternate Picking"})
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
	})
}
