package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/desertthunder/fretsheet/internal/ui"
	"github.com/urfave/cli/v3"
)

// Practice launches the interactive checklist for a practice session. With
// no routine ID argument the active routine is used.
func (r *Runner) Practice(ctx context.Context, cmd *cli.Command) error {
	routineID := cmd.IntArg("id")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	if routineID == 0 {
		id, ok, err := r.routines.ActiveID(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: no active routine, pass an ID or run `fretsheet routines activate`", shared.ErrNotFound)
		}
		routineID = id
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/fretsheet-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(shared.WithLogger(fileLogger, "routine", routineID))

	model := ui.NewModel(ctx, r.routines, routineID)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
