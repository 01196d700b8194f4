package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/urfave/cli/v3"
)

// parseOrderPairs parses trailing "id=position" arguments into a reorder map.
func parseOrderPairs(args []string) (map[int]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: at least one id=position pair is required", shared.ErrMissingArgument)
	}

	orders := make(map[int]int, len(args))
	for _, arg := range args {
		id, pos, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("%w: %q is not an id=position pair", shared.ErrInvalidArgument, arg)
		}
		idNum, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid id in %q", shared.ErrInvalidArgument, arg)
		}
		posNum, err := strconv.Atoi(pos)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid position in %q", shared.ErrInvalidArgument, arg)
		}
		orders[idNum] = posNum
	}
	return orders, nil
}

// ItemsList lists every practice item in sheet order.
func (r *Runner) ItemsList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	items, err := r.items.List(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(items, pretty)
	}

	r.writePlain("Found %d items:\n\n", len(items))
	for _, item := range items {
		r.writePlain("%d. %s\n", item.ID, item.Title)
		if item.Duration != "" {
			r.writePlain("   Duration: %s min\n", item.Duration)
		}
		if item.Tuning != "" {
			r.writePlain("   Tuning: %s\n", item.Tuning)
		}
		if item.Notes != "" {
			r.writePlain("   Notes: %s\n", item.Notes)
		}
		r.writePlain("\n")
	}
	return nil
}

// ItemsAdd appends a practice item to the sheet.
func (r *Runner) ItemsAdd(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: title is required", shared.ErrMissingArgument)
	}

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	item, err := r.items.Add(ctx, models.Item{
		Title:       title,
		Duration:    cmd.String("duration"),
		Tuning:      cmd.String("tuning"),
		Notes:       cmd.String("notes"),
		Description: cmd.String("description"),
	})
	if err != nil {
		return err
	}

	r.logger.Info("item added", "id", item.ID, "title", item.Title)
	return r.writePlain("✓ Added item %d: %s\n", item.ID, item.Title)
}

// ItemsUpdate patches fields on an existing item.
func (r *Runner) ItemsUpdate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	item, err := r.items.Get(ctx, id)
	if err != nil {
		return err
	}

	changed := false
	for flag, dest := range map[string]*string{
		"title":       &item.Title,
		"duration":    &item.Duration,
		"tuning":      &item.Tuning,
		"description": &item.Description,
	} {
		if cmd.IsSet(flag) {
			*dest = cmd.String(flag)
			changed = true
		}
	}
	if !changed {
		return fmt.Errorf("%w: nothing to update, pass at least one field flag", shared.ErrMissingArgument)
	}

	updated, err := r.items.Update(ctx, item)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Updated item %d: %s\n", updated.ID, updated.Title)
}

// ItemsNotes replaces the notes column on an item.
func (r *Runner) ItemsNotes(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	notes := cmd.StringArg("notes")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	if err := r.items.UpdateNotes(ctx, id, notes); err != nil {
		return err
	}

	return r.writePlain("✓ Notes updated on item %d\n", id)
}

// ItemsDelete removes an item and its routine entries.
func (r *Runner) ItemsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	if err := r.items.Delete(ctx, id); err != nil {
		return err
	}

	r.logger.Info("item deleted", "id", id)
	return r.writePlain("✓ Deleted item %d\n", id)
}

// ItemsReorder applies id=position pairs to the items sheet.
func (r *Runner) ItemsReorder(ctx context.Context, cmd *cli.Command) error {
	orders, err := parseOrderPairs(cmd.Args().Slice())
	if err != nil {
		return err
	}

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	if err := r.items.Reorder(ctx, orders); err != nil {
		return err
	}

	return r.writePlain("✓ Reordered %d items\n", len(orders))
}
