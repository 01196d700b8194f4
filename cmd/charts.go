package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/services"
	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/desertthunder/fretsheet/internal/tasks"
	"github.com/urfave/cli/v3"
)

// readChartFile loads a chord diagram definition from a JSON file.
func readChartFile(path string) (models.ChordData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ChordData{}, fmt.Errorf("failed to read chart file: %w", err)
	}

	var chord models.ChordData
	if err := json.Unmarshal(data, &chord); err != nil {
		return models.ChordData{}, fmt.Errorf("%w: %s is not a chord diagram: %v", shared.ErrInvalidInput, path, err)
	}
	return chord, nil
}

// printCharts writes a plain chart listing.
func (r *Runner) printCharts(charts []models.ChordChart) {
	for _, chart := range charts {
		r.writePlain("%d. %s\n", chart.ID, chart.Title)
		r.writePlain("   Scope: %s\n", chart.ScopeKey())
		if chart.CreatedAt != "" {
			r.writePlain("   Created: %s\n", chart.CreatedAt)
		}
	}
}

// ChartsList lists charts attached to a practice item, including common charts.
func (r *Runner) ChartsList(ctx context.Context, cmd *cli.Command) error {
	itemID := cmd.IntArg("item")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	charts, err := r.charts.ListForItem(ctx, itemID)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(charts, pretty)
	}

	r.writePlain("Found %d charts for item %d:\n\n", len(charts), itemID)
	r.printCharts(charts)
	return nil
}

// ChartsCommon lists the shared chord library.
func (r *Runner) ChartsCommon(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	charts, err := r.charts.ListCommon(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(charts, pretty)
	}

	r.writePlain("Common library has %d chords:\n\n", len(charts))
	r.printCharts(charts)
	return nil
}

// ChartsSearch searches the common library by name.
func (r *Runner) ChartsSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	useJSON := cmd.Bool("json")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	charts, err := r.charts.SearchCommon(ctx, query)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(charts, true)
	}

	r.writePlain("Found %d matches for %q:\n\n", len(charts), query)
	r.printCharts(charts)
	return nil
}

// ChartsAdd adds a chart from a JSON definition file.
func (r *Runner) ChartsAdd(ctx context.Context, cmd *cli.Command) error {
	file := cmd.StringArg("file")
	scope := cmd.String("scope")
	title := cmd.String("title")

	chord, err := readChartFile(file)
	if err != nil {
		return err
	}
	if title == "" {
		title = chord.Title
	}
	if title == "" {
		return fmt.Errorf("%w: chart needs a title, pass --title or set one in the file", shared.ErrInvalidInput)
	}

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	chart := models.ChordChart{ItemID: scope, Title: title}
	if err := chart.SetData(chord); err != nil {
		return err
	}

	created, err := r.charts.Add(ctx, chart)
	if err != nil {
		return err
	}

	r.logger.Info("chart added", "id", created.ID, "title", created.Title, "scope", created.ScopeKey())
	return r.writePlain("✓ Added chart %d: %s\n", created.ID, created.Title)
}

// ChartsUpdate replaces a chart's diagram from a JSON file.
func (r *Runner) ChartsUpdate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	file := cmd.StringArg("file")

	chord, err := readChartFile(file)
	if err != nil {
		return err
	}

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	charts, err := r.charts.List(ctx)
	if err != nil {
		return err
	}
	var chart models.ChordChart
	found := false
	for _, c := range charts {
		if c.ID == id {
			chart = c
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: chart %d", shared.ErrNotFound, id)
	}

	if chord.Title != "" {
		chart.Title = chord.Title
	}
	if err := chart.SetData(chord); err != nil {
		return err
	}

	updated, err := r.charts.Update(ctx, chart)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Updated chart %d: %s\n", updated.ID, updated.Title)
}

// ChartsDelete removes charts by ID, reporting per-ID outcomes.
func (r *Runner) ChartsDelete(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.IntArgs("ids")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	result, err := r.charts.BatchDelete(ctx, ids)
	if err != nil {
		return err
	}

	for _, id := range result.Deleted {
		r.writePlain("✓ Deleted chart %d\n", id)
	}
	for _, id := range result.NotFound {
		r.writePlain("✗ Chart %d not found\n", id)
	}
	if len(result.NotFound) > 0 {
		return fmt.Errorf("%w: %d of %d charts", shared.ErrNotFound, len(result.NotFound), len(ids))
	}
	return nil
}

// ChartsReorder applies id=position pairs within each chart's scope.
func (r *Runner) ChartsReorder(ctx context.Context, cmd *cli.Command) error {
	orders, err := parseOrderPairs(cmd.Args().Slice())
	if err != nil {
		return err
	}

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	if err := r.charts.Reorder(ctx, orders); err != nil {
		return err
	}

	return r.writePlain("✓ Reordered %d charts\n", len(orders))
}

// ChartsCopy copies one item's charts onto other items.
func (r *Runner) ChartsCopy(ctx context.Context, cmd *cli.Command) error {
	source := cmd.IntArg("source")
	targets := cmd.IntArgs("targets")

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	copied, err := r.charts.CopyToItems(ctx, source, targets)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Copied %d charts from item %d to %d items\n", len(copied), source, len(targets))
}

// ChartsSeed populates the common library with standard open chords.
func (r *Runner) ChartsSeed(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	seeded, err := r.charts.SeedCommon(ctx)
	if err != nil {
		return err
	}

	if len(seeded) == 0 {
		return r.writePlain("Common library already seeded\n")
	}
	return r.writePlain("✓ Seeded %d chords into the common library\n", len(seeded))
}

// ChartsAutocreate recognizes charts from chord sheet files and saves them.
func (r *Runner) ChartsAutocreate(ctx context.Context, cmd *cli.Command) error {
	itemID := cmd.IntArg("item")
	paths := cmd.StringArgs("files")
	useJSON := cmd.Bool("json")

	if err := r.ensureRecognizer(); err != nil {
		return err
	}
	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	files := make([]services.File, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
		files = append(files, services.File{
			Name:      filepath.Base(path),
			MediaType: mediaType,
			Data:      data,
		})
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		r.drainProgress(progress)
		close(done)
	}()

	result, err := r.engine.AutocreateCharts(ctx, progress, itemID, files)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(result.Analysis, true)
	}

	r.writePlain("✓ Created %d charts for item %d:\n\n", len(result.Charts), itemID)
	r.printCharts(result.Charts)
	return nil
}
