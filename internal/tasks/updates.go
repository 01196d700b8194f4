package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	AppendItems Phase = iota
	MatchTitles
	AppendEntries
	CreateRoutine
	AnalyzeFiles
	CreateCharts
	LoadCollection
	ImportBatch
	ExportRoutine
)

func (p Phase) String() string {
	switch p {
	case AppendItems:
		return "append_items"
	case MatchTitles:
		return "match_titles"
	case AppendEntries:
		return "append_entries"
	case CreateRoutine:
		return "create_routine"
	case AnalyzeFiles:
		return "analyze_files"
	case CreateCharts:
		return "create_charts"
	case LoadCollection:
		return "load_collection"
	case ImportBatch:
		return "import_batch"
	case ExportRoutine:
		return "export_routine"
	default:
		return ""
	}
}

func appendItemsUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AppendItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Appending %d items to the Items sheet...", count),
	}
}

func importedItemsUpdate(step, total int, result *ItemImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AppendItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Imported %d items", result.Imported),
		Data:    result,
	}
}

func createRoutineUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateRoutine,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Creating routine: %s", step, total, name),
	}
}

func matchTitlesUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchTitles,
		Step:    step,
		Total:   total,
		Message: "Matching titles against the Items sheet...",
	}
}

func appendEntriesUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AppendEntries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Adding %d entries to the routine...", count),
	}
}

func analyzeFilesUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AnalyzeFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Analyzing %d files...", count),
	}
}

func createChartsUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateCharts,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Creating %d chord charts...", count),
	}
}

func loadCollectionUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading chord collection from %s...", path),
	}
}

func importBatchUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Importing batch of %d chords...", step, total, count),
	}
}

func exportingRoutineUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRoutine,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRoutine,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRoutine,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
