package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/desertthunder/fretsheet/internal/tasks"
	"github.com/urfave/cli/v3"
)

// runWithProgress runs fn while logging its progress updates.
func (r *Runner) runWithProgress(fn func(chan<- tasks.ProgressUpdate) error) error {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		r.drainProgress(progress)
		close(done)
	}()

	err := fn(progress)
	close(progress)
	<-done
	return err
}

// ImportItems imports practice items from a JSON file.
func (r *Runner) ImportItems(ctx context.Context, cmd *cli.Command) error {
	file := cmd.StringArg("file")

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var entries []tasks.ItemImport
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: %s is not an item import file: %v", shared.ErrInvalidInput, file, err)
	}

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	var result *tasks.ItemImportResult
	err = r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		result, err = r.engine.ImportItems(ctx, progress, entries)
		return err
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Imported %d items:\n", result.Imported)
	for _, item := range result.Items {
		r.writePlain("  %d. %s\n", item.ID, item.Title)
	}
	return nil
}

// ImportRoutines creates routines by name, skipping names already in use.
func (r *Runner) ImportRoutines(ctx context.Context, cmd *cli.Command) error {
	names := cmd.StringArgs("names")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	var result *tasks.RoutineImportResult
	err := r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = r.engine.ImportRoutines(ctx, progress, names)
		return err
	})
	if err != nil {
		return err
	}

	for _, routine := range result.Imported {
		r.writePlain("✓ Created routine %d: %s\n", routine.ID, routine.Name)
	}
	for _, name := range result.Skipped {
		r.writePlain("- Skipped %q, routine already exists\n", name)
	}
	return nil
}

// ImportRoutineItems adds items to a routine by matching titles.
func (r *Runner) ImportRoutineItems(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	titles := cmd.StringArgs("titles")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	var result *tasks.RoutineItemImportResult
	err := r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = r.engine.ImportRoutineItems(ctx, progress, id, titles)
		return err
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Added %d items to routine %d\n", result.Imported, id)
	for _, title := range result.Skipped {
		r.writePlain("- Skipped %q, already in the routine\n", title)
	}
	for _, title := range result.NotFound {
		r.writePlain("✗ No item matches %q\n", title)
	}
	if len(result.NotFound) > 0 {
		return fmt.Errorf("%w: %d titles had no matching item", shared.ErrNotFound, len(result.NotFound))
	}
	return nil
}

// ImportCollection loads a chord collection file into the common library.
func (r *Runner) ImportCollection(ctx context.Context, cmd *cli.Command) error {
	file := cmd.StringArg("file")
	opts := tasks.CollectionOpts{
		BatchSize: cmd.Int("batch-size"),
		RateLimit: cmd.Float("rate"),
	}

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	var result *tasks.CollectionResult
	err := r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = r.engine.ImportChordCollection(ctx, progress, file, opts)
		return err
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Imported %d chords\n", len(result.Imported))
	if len(result.Skipped) > 0 {
		r.writePlain("- Skipped %d already in the library\n", len(result.Skipped))
	}
	for _, name := range result.Failed {
		r.writePlain("✗ %s could not be imported\n", name)
	}
	return nil
}
