package formatter

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/fretsheet/internal/models"
	th "github.com/desertthunder/fretsheet/internal/testing"
)

func sampleDetails() *models.RoutineDetails {
	return &models.RoutineDetails{
		Routine: models.Routine{
			ID:      5,
			Name:    "morning warmup",
			Created: "2026-08-01 09:30:00",
			Order:   0,
		},
		Entries: []models.RoutineEntry{
			{
				RoutineItem: models.RoutineItem{ID: 1, ItemID: 10, Order: 0, Completed: true},
				Item:        models.Item{ID: 10, Title: "Major Scales", Notes: "metronome", Duration: "10", Tuning: "Standard"},
			},
			{
				RoutineItem: models.RoutineItem{ID: 2, ItemID: 11, Order: 1},
				Item:        models.Item{ID: 11, Title: "Blackbird", Duration: "15", Tuning: "DADGAD"},
			},
			{
				RoutineItem: models.RoutineItem{ID: 3, ItemID: 99, Order: 2},
				Missing:     true,
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleDetails())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Position,Title,Duration,Tuning,Notes,Completed") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "Major Scales") {
			t.Errorf("CSV missing first entry title")
		}
		if !strings.Contains(output, "metronome") {
			t.Errorf("CSV missing notes")
		}
		if !strings.Contains(output, "true") || !strings.Contains(output, "false") {
			t.Errorf("CSV missing completion flags, got: %s", output)
		}
		if !strings.Contains(output, "(missing item 99)") {
			t.Errorf("CSV missing placeholder for dangling entry, got: %s", output)
		}
	})

	t.Run("ExportItemsToCSV", func(t *testing.T) {
		items := []models.Item{
			{ID: 10, Title: "Major Scales", Notes: "metronome", Duration: "10", Order: 0, Tuning: "Standard"},
			{ID: 11, Title: "Blackbird", Duration: "15", Order: 1, Tuning: "DADGAD"},
		}

		data, err := ExportItemsToCSV(items)
		if err != nil {
			t.Fatalf("ExportItemsToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Title,Notes,Duration,Description,Order,Tuning") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "Blackbird") || !strings.Contains(output, "DADGAD") {
			t.Errorf("CSV missing item data, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleDetails())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# morning warmup") {
			t.Errorf("Markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "- [x] Major Scales (10 min)") {
			t.Errorf("Markdown missing completed entry, got: %s", output)
		}
		if !strings.Contains(output, "- [ ] Blackbird (15 min) [DADGAD]") {
			t.Errorf("Markdown missing pending entry with tuning, got: %s", output)
		}
		if !strings.Contains(output, "**Entries**: 3") {
			t.Errorf("Markdown missing entry count")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleDetails())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Routine: morning warmup") {
			t.Errorf("Text missing routine name, got: %s", output)
		}
		if !strings.Contains(output, "1. [*] Major Scales") {
			t.Errorf("Text missing completed entry marker, got: %s", output)
		}
		if !strings.Contains(output, "2. [ ] Blackbird") {
			t.Errorf("Text missing pending entry, got: %s", output)
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(sampleDetails().Routine)
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}
		if !strings.Contains(string(data), "morning warmup") {
			t.Errorf("Metadata JSON missing routine name, got: %s", data)
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(sampleDetails(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.EntriesFile != "5_entries.csv" {
				t.Errorf("Expected entries file '5_entries.csv', got '%s'", result.EntriesFile)
			}
			if result.MetadataFile != "5_metadata.json" {
				t.Errorf("Expected metadata file '5_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.EntriesFile)
			th.AssertFileExists(t, result.MetadataFile)

			csvContent := th.MustReadFile(t, result.EntriesFile)
			if !strings.Contains(csvContent, "Major Scales") {
				t.Errorf("CSV missing entry data")
			}

			metadataContent := th.MustReadFile(t, result.MetadataFile)
			if !strings.Contains(metadataContent, "morning warmup") {
				t.Errorf("Metadata JSON missing expected fields")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			tempDir := t.TempDir()

			result, err := WriteCSVExport(sampleDetails(), filepath.Join(tempDir, "warmup"))
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if !strings.HasSuffix(result.EntriesFile, "warmup_entries.csv") {
				t.Errorf("Expected 'warmup_entries.csv' suffix, got '%s'", result.EntriesFile)
			}
			th.AssertFileExists(t, result.EntriesFile)
			th.AssertFileExists(t, result.MetadataFile)
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		tempDir := t.TempDir()
		outputDir := filepath.Join(tempDir, "routine-5")

		result, err := WriteMarkdownExport(sampleDetails(), outputDir)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		if result.Directory != outputDir {
			t.Errorf("Expected directory %q, got %q", outputDir, result.Directory)
		}
		th.AssertDirExists(t, outputDir)

		mdFile := filepath.Join(outputDir, "README.md")
		th.AssertFileExists(t, mdFile)

		content := th.MustReadFile(t, mdFile)
		if !strings.Contains(content, "# morning warmup") {
			t.Errorf("Markdown file missing routine title")
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		tempDir := t.TempDir()
		txtPath := filepath.Join(tempDir, "warmup.txt")

		written, err := WriteTextExport(sampleDetails(), txtPath)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if written != txtPath {
			t.Errorf("Expected path %q, got %q", txtPath, written)
		}

		content := th.MustReadFile(t, txtPath)
		if !strings.Contains(content, "Routine: morning warmup") {
			t.Errorf("Text file missing routine header")
		}
	})
}
