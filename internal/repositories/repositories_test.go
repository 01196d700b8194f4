package repositories

import (
	"context"
	"testing"

	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/shared"
	tu "github.com/desertthunder/fretsheet/internal/testing"
)

var testRetry = shared.RetryConfig{MaxRetries: 3, BaseDelayMS: 1}

// newFakeStore seeds a spreadsheet with the fixed worksheets and a small
// data set: four items, one routine with two entries, and charts attached to
// item 10 plus a common chord.
func newFakeStore(t *testing.T) *tu.FakeSpreadsheet {
	t.Helper()

	store := tu.NewFakeSpreadsheet()
	store.Seed(ItemsSheet, [][]string{
		{"ID", "Item", "Title", "Notes", "Duration", "Description", "Order", "Tuning"},
		{"10", "10", "Major Scales", "metronome", "10", "warmup", "0", "Standard"},
		{"11", "11", "Blackbird", "", "15", "", "1", "Standard"},
		{"12", "12", "Sweep Picking", "", "5", "", "2", "Standard"},
		{"13", "13", "Barre Chords", "", "10", "", "3", "Standard"},
	})
	store.Seed(RoutinesSheet, [][]string{
		{"ID", "Name", "Created", "Order"},
		{"5", "morning warmup", "2026-08-01 09:30:00", "0"},
	})
	store.Seed("5", [][]string{
		{"ID", "Item ID", "Order", "Completed"},
		{"1", "10", "0", "TRUE"},
		{"2", "11", "1", ""},
	})
	store.Seed(ActiveRoutineSheet, [][]string{{"5"}})
	store.Seed(ChartsSheet, [][]string{
		{"ID", "Item ID", "Title", "Chord Data", "Created At", "Order"},
		{"1", "10", "G", `{"title":"G"}`, "2026-08-01 09:30:00", "0"},
		{"2", "10", "C", `{"title":"C"}`, "2026-08-01 09:31:00", "1"},
		{"3", "10", "D", `{"title":"D"}`, "2026-08-01 09:32:00", "2"},
		{"4", "10", "Em", `{"title":"Em"}`, "2026-08-01 09:33:00", "3"},
		{"5", "common", "Am", `{"title":"Am"}`, "2026-08-01 09:34:00", "0"},
		{"6", "10,11", "Cadd9", `{"title":"Cadd9"}`, "2026-08-01 09:35:00", "4"},
	})
	return store
}

// assertDenseOrders fails unless the given orders are exactly {0..n-1}.
func assertDenseOrders(t *testing.T, orders []int) {
	t.Helper()

	seen := make(map[int]bool, len(orders))
	for _, o := range orders {
		if o < 0 || o >= len(orders) {
			t.Errorf("order %d outside dense range [0,%d)", o, len(orders))
		}
		if seen[o] {
			t.Errorf("duplicate order %d", o)
		}
		seen[o] = true
	}
}

func TestNextID(t *testing.T) {
	store := newFakeStore(t)
	repo := NewItemRepository(store, testRetry)
	ctx := context.Background()

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if got := nextID(items); got != 14 {
		t.Errorf("nextID = %d, want 14", got)
	}

	if got := nextID[models.Item](nil); got != 1 {
		t.Errorf("nextID on empty set = %d, want 1", got)
	}
}

func TestProvisionSheets(t *testing.T) {
	ctx := context.Background()

	t.Run("blank spreadsheet gets every fixed worksheet", func(t *testing.T) {
		store := tu.NewFakeSpreadsheet()

		created, err := ProvisionSheets(ctx, store, testRetry)
		if err != nil {
			t.Fatalf("provision failed: %v", err)
		}
		if len(created) != 4 {
			t.Fatalf("expected 4 worksheets created, got %v", created)
		}

		for _, title := range []string{ItemsSheet, RoutinesSheet, ChartsSheet, ActiveRoutineSheet} {
			if _, err := store.Worksheet(ctx, title); err != nil {
				t.Errorf("worksheet %s missing: %v", title, err)
			}
		}

		ws, err := store.Worksheet(ctx, ItemsSheet)
		if err != nil {
			t.Fatalf("items sheet missing: %v", err)
		}
		header, err := ws.Get(ctx, "A1:H1")
		if err != nil {
			t.Fatalf("header read failed: %v", err)
		}
		if len(header) != 1 || header[0][0] != "ID" {
			t.Errorf("expected header row, got %v", header)
		}
	})

	t.Run("existing worksheets are left alone", func(t *testing.T) {
		store := newFakeStore(t)

		created, err := ProvisionSheets(ctx, store, testRetry)
		if err != nil {
			t.Fatalf("provision failed: %v", err)
		}
		if len(created) != 0 {
			t.Errorf("expected no worksheets created, got %v", created)
		}

		items, err := NewItemRepository(store, testRetry).List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(items) != 4 {
			t.Errorf("expected seeded items untouched, got %d", len(items))
		}
	})
}
