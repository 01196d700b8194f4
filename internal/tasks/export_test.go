package tasks

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/desertthunder/fretsheet/internal/models"
	tu "github.com/desertthunder/fretsheet/internal/testing"
)

func TestExportRoutines(t *testing.T) {
	ctx := context.Background()

	t.Run("exports JSON with a manifest", func(t *testing.T) {
		engine, _ := newTestEngine(t, nil)
		dir := t.TempDir()

		result, err := engine.ExportRoutines(ctx, nil, []int{5}, ExportOpts{
			Format:    "json",
			OutputDir: dir,
			RateLimit: 100,
		})
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if result.SuccessfulExports != 1 || result.FailedExports != 0 {
			t.Errorf("result = %+v, want one success", result)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "5.json"))
		tu.AssertFileExists(t, result.ManifestPath)

		var details models.RoutineDetails
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, filepath.Join(dir, "5.json"))), &details); err != nil {
			t.Fatalf("exported JSON is invalid: %v", err)
		}
		if details.Routine.Name != "morning warmup" || len(details.Entries) != 2 {
			t.Errorf("exported details = %+v, want morning warmup with two entries", details)
		}

		var manifest ExportResult
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("manifest is invalid: %v", err)
		}
		if manifest.TotalRoutines != 1 || len(manifest.Results) != 1 {
			t.Errorf("manifest = %+v, want one routine", manifest)
		}
	})

	t.Run("exports CSV files", func(t *testing.T) {
		engine, _ := newTestEngine(t, nil)
		dir := t.TempDir()

		result, err := engine.ExportRoutines(ctx, nil, []int{5}, ExportOpts{
			Format:    "csv",
			OutputDir: dir,
			RateLimit: 100,
		})
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if result.SuccessfulExports != 1 {
			t.Fatalf("result = %+v, want one success", result)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "5_entries.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "5_metadata.json"))
	})

	t.Run("exports markdown directories", func(t *testing.T) {
		engine, _ := newTestEngine(t, nil)
		dir := t.TempDir()

		result, err := engine.ExportRoutines(ctx, nil, []int{5}, ExportOpts{
			Format:    "markdown",
			OutputDir: dir,
			RateLimit: 100,
		})
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if result.SuccessfulExports != 1 {
			t.Fatalf("result = %+v, want one success", result)
		}
		tu.AssertDirExists(t, filepath.Join(dir, "5"))
		tu.AssertFileExists(t, filepath.Join(dir, "5", "README.md"))
	})

	t.Run("exports plain text", func(t *testing.T) {
		engine, _ := newTestEngine(t, nil)
		dir := t.TempDir()

		result, err := engine.ExportRoutines(ctx, nil, []int{5}, ExportOpts{
			Format:    "txt",
			OutputDir: dir,
			RateLimit: 100,
		})
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if result.SuccessfulExports != 1 {
			t.Fatalf("result = %+v, want one success", result)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "5_entries.txt"))
	})

	t.Run("records failures without aborting", func(t *testing.T) {
		engine, _ := newTestEngine(t, nil)
		dir := t.TempDir()

		result, err := engine.ExportRoutines(ctx, nil, []int{42, 5}, ExportOpts{
			Format:    "json",
			OutputDir: dir,
			RateLimit: 100,
		})
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if result.SuccessfulExports != 1 || result.FailedExports != 1 {
			t.Errorf("result = %+v, want one success and one failure", result)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "5.json"))

		failed := 0
		for _, r := range result.Results {
			if !r.Success && r.RoutineID == 42 {
				failed++
			}
		}
		if failed != 1 {
			t.Errorf("expected routine 42 to be reported as failed, got %+v", result.Results)
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		engine, _ := newTestEngine(t, nil)
		progress := make(chan ProgressUpdate, 16)

		_, err := engine.ExportRoutines(ctx, progress, []int{5}, ExportOpts{
			OutputDir: t.TempDir(),
			RateLimit: 100,
		})
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		close(progress)

		seen := 0
		for update := range progress {
			if update.Phase == ExportRoutine {
				seen++
			}
		}
		if seen == 0 {
			t.Error("expected export progress updates")
		}
	})
}
