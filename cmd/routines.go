package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// RoutinesList lists every routine, marking the active one.
func (r *Runner) RoutinesList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	routines, err := r.routines.List(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(routines, pretty)
	}

	r.writePlain("Found %d routines:\n\n", len(routines))
	for _, routine := range routines {
		marker := " "
		if routine.Active {
			marker = "*"
		}
		r.writePlain("%s %d. %s\n", marker, routine.ID, routine.Name)
		if routine.Created != "" {
			r.writePlain("     Created: %s\n", routine.Created)
		}
	}
	if len(routines) > 0 {
		r.writePlain("\n* active routine\n")
	}
	return nil
}

// RoutinesCreate creates a routine and provisions its worksheet.
func (r *Runner) RoutinesCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	routine, err := r.routines.Create(ctx, name)
	if err != nil {
		return err
	}

	r.logger.Info("routine created", "id", routine.ID, "name", routine.Name)
	return r.writePlain("✓ Created routine %d: %s\n", routine.ID, routine.Name)
}

// RoutinesDelete removes a routine and its worksheet.
func (r *Runner) RoutinesDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	if err := r.routines.Delete(ctx, id); err != nil {
		return err
	}

	r.logger.Info("routine deleted", "id", id)
	return r.writePlain("✓ Deleted routine %d\n", id)
}

// RoutinesShow prints a routine with its resolved entries.
func (r *Runner) RoutinesShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	details, err := r.routines.Details(ctx, id)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(details, pretty)
	}

	r.writePlainHeader(details.Routine.Name)
	if len(details.Entries) == 0 {
		r.writePlain("No entries. Add items with `fretsheet routines add %d <item-id>`\n", id)
		return nil
	}

	done := 0
	for _, entry := range details.Entries {
		mark := "[ ]"
		if entry.RoutineItem.Completed {
			mark = "[x]"
			done++
		}
		if entry.Missing {
			r.writePlain("%s %d. (missing item %d)\n", mark, entry.RoutineItem.ID, entry.RoutineItem.ItemID)
			continue
		}
		r.writePlain("%s %d. %s\n", mark, entry.RoutineItem.ID, entry.Item.Title)
		if entry.Item.Duration != "" {
			r.writePlain("      Duration: %s min\n", entry.Item.Duration)
		}
		if entry.Item.Tuning != "" {
			r.writePlain("      Tuning: %s\n", entry.Item.Tuning)
		}
	}
	r.writePlain("\n%d/%d complete\n", done, len(details.Entries))
	return nil
}

// RoutinesActivate marks a routine as the active one.
func (r *Runner) RoutinesActivate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	if err := r.routines.SetActive(ctx, id, true); err != nil {
		return err
	}

	return r.writePlain("✓ Routine %d is now active\n", id)
}

// RoutinesDeactivate clears the active routine marker.
func (r *Runner) RoutinesDeactivate(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	id, ok, err := r.routines.ActiveID(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return r.writePlain("No active routine\n")
	}

	if err := r.routines.SetActive(ctx, id, false); err != nil {
		return err
	}

	return r.writePlain("✓ Routine %d deactivated\n", id)
}

// RoutinesAddItem appends a practice item to a routine.
func (r *Runner) RoutinesAddItem(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	itemID := cmd.IntArg("item")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	entry, err := r.routines.AddEntry(ctx, id, itemID)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Added item %d to routine %d as entry %d\n", itemID, id, entry.ID)
}

// RoutinesRemoveItem removes an entry from a routine.
func (r *Runner) RoutinesRemoveItem(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	entryID := cmd.IntArg("entry")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	if err := r.routines.RemoveEntry(ctx, id, entryID); err != nil {
		return err
	}

	return r.writePlain("✓ Removed entry %d from routine %d\n", entryID, id)
}

// RoutinesReorder applies id=position pairs to a routine's entries.
func (r *Runner) RoutinesReorder(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")

	orders, err := parseOrderPairs(cmd.Args().Slice())
	if err != nil {
		return err
	}

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	if err := r.routines.ReorderEntries(ctx, id, orders); err != nil {
		return err
	}

	return r.writePlain("✓ Reordered %d entries in routine %d\n", len(orders), id)
}

// RoutinesComplete marks an entry done, or not done with --undo.
func (r *Runner) RoutinesComplete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	entryID := cmd.IntArg("entry")
	completed := !cmd.Bool("undo")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	if err := r.routines.SetCompleted(ctx, id, entryID, completed); err != nil {
		return err
	}

	if completed {
		return r.writePlain("✓ Entry %d marked done\n", entryID)
	}
	return r.writePlain("✓ Entry %d marked not done\n", entryID)
}

// RoutinesReset clears completion marks on every entry in a routine.
func (r *Runner) RoutinesReset(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	if err := r.routines.ResetProgress(ctx, id); err != nil {
		return err
	}

	return r.writePlain("✓ Progress reset on routine %d\n", id)
}
