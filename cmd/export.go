package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/desertthunder/fretsheet/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes routines to local files concurrently.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.IntArgs("ids")
	all := cmd.Bool("all")

	if len(ids) == 0 && !all {
		return fmt.Errorf("%w: pass routine IDs or --all", shared.ErrMissingArgument)
	}

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	if all {
		routines, err := r.routines.List(ctx)
		if err != nil {
			return err
		}
		ids = ids[:0]
		for _, routine := range routines {
			ids = append(ids, routine.ID)
		}
		if len(ids) == 0 {
			return r.writePlain("No routines to export\n")
		}
	}

	opts := tasks.ExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}

	var result *tasks.ExportResult
	err := r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = r.engine.ExportRoutines(ctx, progress, ids, opts)
		return err
	})
	if err != nil {
		return err
	}

	r.writePlainHeader("Export complete")
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d routines\n", result.SuccessfulExports, result.TotalRoutines)
	for _, routine := range result.Results {
		if routine.Success {
			continue
		}
		r.writePlain("✗ %s: %v\n", routine.RoutineName, routine.Error)
	}
	if result.FailedExports > 0 {
		return fmt.Errorf("%d routines failed to export", result.FailedExports)
	}
	return nil
}
