package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/fretsheet/internal/formatter"
	"github.com/desertthunder/fretsheet/internal/models"
	"golang.org/x/time/rate"
)

// ExportOpts contains configuration for bulk routine exports.
type ExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: routine_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 3)
	RateLimit  float64 // Spreadsheet reads per second (default: 1)
}

// RoutineExportJob carries one fetched routine to an export worker.
type RoutineExportJob struct {
	RoutineID int
	Details   *models.RoutineDetails
}

// RoutineExportResult records the outcome of exporting a single routine.
type RoutineExportResult struct {
	RoutineID   int      `json:"routine_id"`
	RoutineName string   `json:"routine_name"`
	Success     bool     `json:"success"`
	Files       []string `json:"files,omitempty"`
	Error       error    `json:"-"`
}

// ExportResult summarizes a bulk routine export.
type ExportResult struct {
	TotalRoutines     int                   `json:"total_routines"`
	SuccessfulExports int                   `json:"successful_exports"`
	FailedExports     int                   `json:"failed_exports"`
	OutputDirectory   string                `json:"output_directory"`
	ManifestPath      string                `json:"manifest_path,omitempty"`
	Results           []RoutineExportResult `json:"results"`
}

// ExportRoutines exports multiple routines concurrently with rate limiting
// and progress tracking.
//
// Routine details are fetched sequentially behind a rate limiter to stay
// inside the spreadsheet read quota, while file writing fans out to a small
// worker pool. A manifest file summarizing the export is written last.
func (e *ImportEngine) ExportRoutines(ctx context.Context, prog chan<- ProgressUpdate, ids []int, opts ExportOpts) (*ExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("routine_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		TotalRoutines:   len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]RoutineExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan RoutineExportJob, len(ids))
	results := make(chan RoutineExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		for i, routineID := range ids {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				close(jobs)
				return
			}

			details, err := e.routines.Details(ctx, routineID)
			if err != nil {
				results <- RoutineExportResult{
					RoutineID:   routineID,
					RoutineName: fmt.Sprintf("Unknown (%d)", routineID),
					Success:     false,
					Error:       fmt.Errorf("failed to fetch routine: %w", err),
				}
				continue
			}

			jobs <- RoutineExportJob{RoutineID: routineID, Details: &details}
			e.sendProgress(prog, exportingRoutineUpdate(i+1, len(ids), details.Routine.Name))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.RoutineName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.RoutineName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	manifest, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, manifest, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports routines from the jobs channel.
func (e *ImportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan RoutineExportJob,
	results chan<- RoutineExportResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- exportSingleRoutine(job, opts)
	}
}

// exportSingleRoutine exports a single routine to the appropriate format.
func exportSingleRoutine(j RoutineExportJob, opts ExportOpts) RoutineExportResult {
	result := RoutineExportResult{
		RoutineID:   j.RoutineID,
		RoutineName: j.Details.Routine.Name,
		Success:     false,
		Files:       []string{},
	}

	base := fmt.Sprintf("%d", j.RoutineID)

	switch opts.Format {
	case "csv":
		csvRes, err := formatter.WriteCSVExport(j.Details, filepath.Join(opts.OutputDir, base))
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.EntriesFile, csvRes.MetadataFile}
		result.Success = true

	case "markdown":
		mdRes, err := formatter.WriteMarkdownExport(j.Details, filepath.Join(opts.OutputDir, base))
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files
		result.Success = true

	case "txt":
		txtPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_entries.txt", base))
		written, err := formatter.WriteTextExport(j.Details, txtPath)
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{written}
		result.Success = true

	case "json":
		fallthrough
	default:
		jsonPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.json", base))
		data, err := json.MarshalIndent(j.Details, "", "  ")
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{jsonPath}
		result.Success = true
	}
	return result
}
