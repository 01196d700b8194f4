package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/desertthunder/fretsheet/internal/codec"
	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/desertthunder/fretsheet/internal/sheets"
)

// routineSheetRows is the initial grid height of a routine's worksheet.
const routineSheetRows = 100

// RoutineRepository manages the routines index, each routine's dedicated
// worksheet, and the active-routine singleton cell.
//
// Routine IDs are allocated against both the index and any purely numeric
// worksheet titles, so an orphaned routine worksheet can never collide with a
// newly created routine.
type RoutineRepository struct {
	store sheets.Spreadsheet
	retry shared.RetryConfig
}

// NewRoutineRepository creates a new RoutineRepository backed by the given
// spreadsheet.
func NewRoutineRepository(store sheets.Spreadsheet, retry shared.RetryConfig) *RoutineRepository {
	return &RoutineRepository{store: store, retry: retry}
}

// indexSheet resolves the routines index worksheet, provisioning it with a
// header row the first time a fresh spreadsheet is touched.
func (r *RoutineRepository) indexSheet(ctx context.Context) (sheets.Worksheet, error) {
	ws, err := r.store.Worksheet(ctx, RoutinesSheet)
	if !errors.Is(err, shared.ErrWorksheetNotFound) {
		return ws, err
	}

	schema := codec.KindRoutine.Schema()
	err = withRetry(ctx, r.retry, func() error {
		var err error
		ws, err = r.store.AddWorksheet(ctx, RoutinesSheet, routineSheetRows, schema.Columns)
		if err != nil {
			return err
		}
		return ws.Update(ctx, fmt.Sprintf("A1:%s1", schema.LastColumn), [][]string{schema.Header})
	})
	return ws, err
}

// activeSheet resolves the active-routine singleton worksheet, creating it
// on first touch so a fresh spreadsheet reads as having no active routine.
func (r *RoutineRepository) activeSheet(ctx context.Context) (sheets.Worksheet, error) {
	ws, err := r.store.Worksheet(ctx, ActiveRoutineSheet)
	if !errors.Is(err, shared.ErrWorksheetNotFound) {
		return ws, err
	}

	err = withRetry(ctx, r.retry, func() error {
		var err error
		ws, err = r.store.AddWorksheet(ctx, ActiveRoutineSheet, 1, 1)
		return err
	})
	return ws, err
}

// routineSheet resolves the worksheet owned by a routine, mapping a missing
// worksheet to a missing routine.
func (r *RoutineRepository) routineSheet(ctx context.Context, id int) (sheets.Worksheet, error) {
	ws, err := r.store.Worksheet(ctx, strconv.Itoa(id))
	if err != nil {
		if errors.Is(err, shared.ErrWorksheetNotFound) {
			return nil, fmt.Errorf("%w: routine %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	return ws, nil
}

func (r *RoutineRepository) readIndex(ctx context.Context, ws sheets.Worksheet) ([]models.Routine, error) {
	grid, err := codec.ReadGrid(ctx, ws, codec.KindRoutine)
	if err != nil {
		return nil, err
	}
	return codec.DecodeRoutines(grid), nil
}

func (r *RoutineRepository) writeIndex(ctx context.Context, ws sheets.Worksheet, routines []models.Routine) error {
	return codec.WriteGrid(ctx, ws, codec.KindRoutine, codec.EncodeRoutines(routines))
}

// List returns all routines sorted by order, with the active flag set from
// the singleton cell.
func (r *RoutineRepository) List(ctx context.Context) ([]models.Routine, error) {
	ws, err := r.indexSheet(ctx)
	if err != nil {
		return nil, err
	}

	routines, err := r.readIndex(ctx, ws)
	if err != nil {
		return nil, err
	}

	activeID, ok, err := r.ActiveID(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		for i := range routines {
			routines[i].Active = routines[i].ID == activeID
		}
	}
	return routines, nil
}

// Get returns a routine index entry by ID.
func (r *RoutineRepository) Get(ctx context.Context, id int) (models.Routine, error) {
	routines, err := r.List(ctx)
	if err != nil {
		return models.Routine{}, err
	}
	for _, routine := range routines {
		if routine.ID == id {
			return routine, nil
		}
	}
	return models.Routine{}, fmt.Errorf("%w: routine %d", shared.ErrNotFound, id)
}

// Create adds a routine: a new index row plus a dedicated worksheet named by
// the allocated ID. Names are stored lowercased and must be unique
// case-insensitively.
func (r *RoutineRepository) Create(ctx context.Context, name string) (models.Routine, error) {
	normalized := shared.NormalizeName(name)
	if normalized == "" {
		return models.Routine{}, fmt.Errorf("%w: routine name is required", shared.ErrInvalidInput)
	}

	ws, err := r.indexSheet(ctx)
	if err != nil {
		return models.Routine{}, err
	}

	var routine models.Routine
	err = withRetry(ctx, r.retry, func() error {
		routines, err := r.readIndex(ctx, ws)
		if err != nil {
			return err
		}
		for _, existing := range routines {
			if shared.NormalizeName(existing.Name) == normalized {
				return fmt.Errorf("%w: routine %q", shared.ErrDuplicateName, existing.Name)
			}
		}
		routine = models.Routine{
			ID:      r.allocateID(ctx, routines),
			Name:    normalized,
			Created: shared.Timestamp(),
			Order:   len(routines),
		}
		return nil
	})
	if err != nil {
		return models.Routine{}, err
	}

	schema := codec.KindRoutineItem.Schema()
	var routineWS sheets.Worksheet
	err = withRetry(ctx, r.retry, func() error {
		var err error
		routineWS, err = r.store.AddWorksheet(ctx, routine.WorksheetTitle(), routineSheetRows, schema.Columns)
		return err
	})
	if err != nil {
		return models.Routine{}, err
	}

	err = withRetry(ctx, r.retry, func() error {
		return routineWS.Update(ctx, fmt.Sprintf("A1:%s1", schema.LastColumn), [][]string{schema.Header})
	})
	if err != nil {
		return models.Routine{}, err
	}

	err = withRetry(ctx, r.retry, func() error {
		return ws.Append(ctx, codec.EncodeRoutines([]models.Routine{routine})[0])
	})
	if err != nil {
		return models.Routine{}, err
	}

	return routine, nil
}

// allocateID picks max+1 over index IDs and any numeric worksheet titles.
func (r *RoutineRepository) allocateID(ctx context.Context, routines []models.Routine) int {
	id := nextID(routines)

	titles, err := r.store.WorksheetTitles(ctx)
	if err != nil {
		return id
	}
	for _, title := range titles {
		if n, err := strconv.Atoi(title); err == nil && n >= id {
			id = n + 1
		}
	}
	return id
}

// Delete removes a routine: its worksheet, its index row (compacting sibling
// orders), and the active pointer when it referenced the deleted routine.
func (r *RoutineRepository) Delete(ctx context.Context, id int) error {
	ws, err := r.indexSheet(ctx)
	if err != nil {
		return err
	}

	routines, err := r.readIndex(ctx, ws)
	if err != nil {
		return err
	}

	removedOrder := -1
	kept := routines[:0]
	for _, routine := range routines {
		if routine.ID == id {
			removedOrder = routine.Order
			continue
		}
		kept = append(kept, routine)
	}
	if removedOrder < 0 {
		return fmt.Errorf("%w: routine %d", shared.ErrNotFound, id)
	}

	err = withRetry(ctx, r.retry, func() error {
		err := r.store.DeleteWorksheet(ctx, strconv.Itoa(id))
		if errors.Is(err, shared.ErrWorksheetNotFound) {
			// Index row without a worksheet; still remove the entry.
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}

	for i := range kept {
		if kept[i].Order > removedOrder {
			kept[i].Order--
		}
	}
	if err := withRetry(ctx, r.retry, func() error {
		return r.writeIndex(ctx, ws, kept)
	}); err != nil {
		return err
	}

	return r.clearActiveIf(ctx, id)
}

// Reorder applies caller-supplied order values to index entries verbatim.
// Density is not validated; IDs absent from the mapping keep their order.
func (r *RoutineRepository) Reorder(ctx context.Context, orders map[int]int) error {
	ws, err := r.indexSheet(ctx)
	if err != nil {
		return err
	}

	return withRetry(ctx, r.retry, func() error {
		routines, err := r.readIndex(ctx, ws)
		if err != nil {
			return err
		}
		for i := range routines {
			if order, ok := orders[routines[i].ID]; ok {
				routines[i].Order = order
			}
		}
		return r.writeIndex(ctx, ws, routines)
	})
}

// ActiveID reads the active-routine singleton cell. ok is false when no
// routine is active.
func (r *RoutineRepository) ActiveID(ctx context.Context) (int, bool, error) {
	ws, err := r.activeSheet(ctx)
	if err != nil {
		return 0, false, err
	}

	grid, err := ws.Get(ctx, "A1")
	if err != nil {
		return 0, false, err
	}
	if len(grid) == 0 || len(grid[0]) == 0 {
		return 0, false, nil
	}

	id, err := strconv.Atoi(grid[0][0])
	if err != nil {
		return 0, false, nil
	}
	return id, true, nil
}

// Active returns the currently active routine, if any.
func (r *RoutineRepository) Active(ctx context.Context) (models.Routine, bool, error) {
	id, ok, err := r.ActiveID(ctx)
	if err != nil || !ok {
		return models.Routine{}, false, err
	}

	routine, err := r.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		// Stale pointer to a deleted routine reads as no active routine.
		return models.Routine{}, false, nil
	}
	if err != nil {
		return models.Routine{}, false, err
	}
	return routine, true, nil
}

// SetActive activates or deactivates a routine. Activation overwrites the
// singleton cell; deactivation is a no-op unless the routine is currently
// the active one.
func (r *RoutineRepository) SetActive(ctx context.Context, id int, active bool) error {
	if !active {
		return r.clearActiveIf(ctx, id)
	}

	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	ws, err := r.activeSheet(ctx)
	if err != nil {
		return err
	}
	return withRetry(ctx, r.retry, func() error {
		return ws.Update(ctx, "A1", [][]string{{strconv.Itoa(id)}})
	})
}

// clearActiveIf clears the singleton cell only when it points at the given
// routine.
func (r *RoutineRepository) clearActiveIf(ctx context.Context, id int) error {
	current, ok, err := r.ActiveID(ctx)
	if err != nil {
		return err
	}
	if !ok || current != id {
		return nil
	}

	ws, err := r.activeSheet(ctx)
	if err != nil {
		return err
	}
	return withRetry(ctx, r.retry, func() error {
		return ws.Clear(ctx, "A1")
	})
}

// Details assembles a routine, its entries, and the referenced items from a
// single batch read. Entries referencing deleted items are flagged rather
// than dropped.
func (r *RoutineRepository) Details(ctx context.Context, id int) (models.RoutineDetails, error) {
	ranges := []string{
		fmt.Sprintf("'%s'!%s", RoutinesSheet, codec.KindRoutine.DataRange()),
		fmt.Sprintf("'%d'!%s", id, codec.KindRoutineItem.DataRange()),
		fmt.Sprintf("'%s'!%s", ItemsSheet, codec.KindItem.DataRange()),
	}

	grids, err := r.store.BatchGet(ctx, ranges)
	if err != nil {
		if errors.Is(err, shared.ErrWorksheetNotFound) {
			return models.RoutineDetails{}, fmt.Errorf("%w: routine %d", shared.ErrNotFound, id)
		}
		return models.RoutineDetails{}, err
	}

	var details models.RoutineDetails
	found := false
	for _, routine := range codec.DecodeRoutines(grids[0]) {
		if routine.ID == id {
			details.Routine = routine
			found = true
			break
		}
	}
	if !found {
		return models.RoutineDetails{}, fmt.Errorf("%w: routine %d", shared.ErrNotFound, id)
	}

	itemsByID := make(map[int]models.Item)
	for _, item := range codec.DecodeItems(grids[2]) {
		itemsByID[item.ID] = item
	}

	for _, entry := range codec.DecodeRoutineItems(grids[1]) {
		item, ok := itemsByID[entry.ItemID]
		details.Entries = append(details.Entries, models.RoutineEntry{
			RoutineItem: entry,
			Item:        item,
			Missing:     !ok,
		})
	}
	return details, nil
}

// Entries returns a routine's entries sorted by order.
func (r *RoutineRepository) Entries(ctx context.Context, routineID int) ([]models.RoutineItem, error) {
	ws, err := r.routineSheet(ctx, routineID)
	if err != nil {
		return nil, err
	}

	grid, err := codec.ReadGrid(ctx, ws, codec.KindRoutineItem)
	if err != nil {
		return nil, err
	}
	return codec.DecodeRoutineItems(grid), nil
}

func (r *RoutineRepository) writeEntries(ctx context.Context, ws sheets.Worksheet, entries []models.RoutineItem) error {
	return codec.WriteGrid(ctx, ws, codec.KindRoutineItem, codec.EncodeRoutineItems(entries))
}

// AddEntry appends an item reference to a routine. Entry IDs are unique
// within the routine only.
func (r *RoutineRepository) AddEntry(ctx context.Context, routineID, itemID int) (models.RoutineItem, error) {
	ws, err := r.routineSheet(ctx, routineID)
	if err != nil {
		return models.RoutineItem{}, err
	}

	var added models.RoutineItem
	err = withRetry(ctx, r.retry, func() error {
		grid, err := codec.ReadGrid(ctx, ws, codec.KindRoutineItem)
		if err != nil {
			return err
		}
		entries := codec.DecodeRoutineItems(grid)

		added = models.RoutineItem{
			ID:     nextID(entries),
			ItemID: itemID,
			Order:  len(entries),
		}
		return r.writeEntries(ctx, ws, append(entries, added))
	})
	if err != nil {
		return models.RoutineItem{}, err
	}
	return added, nil
}

// RemoveEntry deletes an entry and compacts the orders of the survivors.
func (r *RoutineRepository) RemoveEntry(ctx context.Context, routineID, entryID int) error {
	ws, err := r.routineSheet(ctx, routineID)
	if err != nil {
		return err
	}

	return withRetry(ctx, r.retry, func() error {
		grid, err := codec.ReadGrid(ctx, ws, codec.KindRoutineItem)
		if err != nil {
			return err
		}
		entries := codec.DecodeRoutineItems(grid)

		removedOrder := -1
		kept := entries[:0]
		for _, entry := range entries {
			if entry.ID == entryID {
				removedOrder = entry.Order
				continue
			}
			kept = append(kept, entry)
		}
		if removedOrder < 0 {
			return fmt.Errorf("%w: entry %d in routine %d", shared.ErrNotFound, entryID, routineID)
		}

		for i := range kept {
			if kept[i].Order > removedOrder {
				kept[i].Order--
			}
		}
		return r.writeEntries(ctx, ws, kept)
	})
}

// ReorderEntries applies caller-supplied order values to a routine's entries
// verbatim.
func (r *RoutineRepository) ReorderEntries(ctx context.Context, routineID int, orders map[int]int) error {
	ws, err := r.routineSheet(ctx, routineID)
	if err != nil {
		return err
	}

	return withRetry(ctx, r.retry, func() error {
		grid, err := codec.ReadGrid(ctx, ws, codec.KindRoutineItem)
		if err != nil {
			return err
		}
		entries := codec.DecodeRoutineItems(grid)

		for i := range entries {
			if order, ok := orders[entries[i].ID]; ok {
				entries[i].Order = order
			}
		}
		return r.writeEntries(ctx, ws, entries)
	})
}

// SetCompleted toggles the completion flag of one entry.
func (r *RoutineRepository) SetCompleted(ctx context.Context, routineID, entryID int, completed bool) error {
	ws, err := r.routineSheet(ctx, routineID)
	if err != nil {
		return err
	}

	return withRetry(ctx, r.retry, func() error {
		grid, err := codec.ReadGrid(ctx, ws, codec.KindRoutineItem)
		if err != nil {
			return err
		}
		entries := codec.DecodeRoutineItems(grid)

		found := false
		for i := range entries {
			if entries[i].ID == entryID {
				entries[i].Completed = completed
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: entry %d in routine %d", shared.ErrNotFound, entryID, routineID)
		}
		return r.writeEntries(ctx, ws, entries)
	})
}

// ResetProgress clears the completion flag of every entry in a routine.
func (r *RoutineRepository) ResetProgress(ctx context.Context, routineID int) error {
	ws, err := r.routineSheet(ctx, routineID)
	if err != nil {
		return err
	}

	return withRetry(ctx, r.retry, func() error {
		grid, err := codec.ReadGrid(ctx, ws, codec.KindRoutineItem)
		if err != nil {
			return err
		}
		entries := codec.DecodeRoutineItems(grid)

		for i := range entries {
			entries[i].Completed = false
		}
		return r.writeEntries(ctx, ws, entries)
	})
}
