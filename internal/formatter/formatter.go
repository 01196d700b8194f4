// package formatter provides functions to export practice data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/fretsheet/internal/models"
)

// ExportToCSV converts a RoutineDetails to CSV format with columns: Position, Title, Duration, Tuning, Notes, Completed
func ExportToCSV(details *models.RoutineDetails) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Duration", "Tuning", "Notes", "Completed"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range details.Entries {
		record := []string{
			strconv.Itoa(entry.RoutineItem.Order + 1),
			entryTitle(entry),
			entry.Item.Duration,
			entry.Item.Tuning,
			entry.Item.Notes,
			strconv.FormatBool(entry.RoutineItem.Completed),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportItemsToCSV converts the practice item list to CSV format
func ExportItemsToCSV(items []models.Item) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Notes", "Duration", "Description", "Order", "Tuning"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			strconv.Itoa(item.ID),
			item.Title,
			item.Notes,
			item.Duration,
			item.Description,
			strconv.Itoa(item.Order),
			item.Tuning,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a RoutineDetails to Markdown format with completion checkboxes
func ExportToMarkdown(details *models.RoutineDetails) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", details.Routine.Name))

	if details.Routine.Created != "" {
		buf.WriteString(fmt.Sprintf("**Created**: %s\n", details.Routine.Created))
	}
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(details.Entries)))

	buf.WriteString("## Practice Items\n\n")
	for _, entry := range details.Entries {
		box := " "
		if entry.RoutineItem.Completed {
			box = "x"
		}

		line := fmt.Sprintf("- [%s] %s", box, entryTitle(entry))
		if entry.Item.Duration != "" {
			line += fmt.Sprintf(" (%s min)", entry.Item.Duration)
		}
		if entry.Item.Tuning != "" && entry.Item.Tuning != "Standard" {
			line += fmt.Sprintf(" [%s]", entry.Item.Tuning)
		}
		buf.WriteString(line + "\n")

		if entry.Item.Notes != "" {
			buf.WriteString(fmt.Sprintf("  - %s\n", entry.Item.Notes))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a RoutineDetails to plain text format
func ExportToText(details *models.RoutineDetails) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Routine: %s\n", details.Routine.Name))
	if details.Routine.Created != "" {
		buf.WriteString(fmt.Sprintf("Created: %s\n", details.Routine.Created))
	}
	buf.WriteString(fmt.Sprintf("Entries: %d\n\n", len(details.Entries)))

	for i, entry := range details.Entries {
		marker := " "
		if entry.RoutineItem.Completed {
			marker = "*"
		}
		buf.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, marker, entryTitle(entry)))
	}

	return buf.Bytes(), nil
}

// entryTitle resolves the display title for a routine entry, flagging rows
// whose item no longer exists on the Items sheet.
func entryTitle(entry models.RoutineEntry) string {
	if entry.Missing {
		return fmt.Sprintf("(missing item %d)", entry.RoutineItem.ItemID)
	}
	return entry.Item.Title
}

// ToMetadataJSON generates a JSON representation of routine metadata (without entries)
func ToMetadataJSON(routine models.Routine) ([]byte, error) {
	data, err := json.MarshalIndent(routine, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}
	return data, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	EntriesFile  string
	MetadataFile string
}

// WriteCSVExport exports a routine to CSV format with an accompanying metadata JSON file.
//
// Defaults to the routine ID as the base filename & creates {base}_entries.csv and {base}_metadata.json
func WriteCSVExport(details *models.RoutineDetails, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = strconv.Itoa(details.Routine.ID)
	}

	csvData, err := ExportToCSV(details)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	entriesFile := baseFilepath + "_entries.csv"
	if err := os.WriteFile(entriesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(details.Routine)
	if err != nil {
		return nil, err
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		EntriesFile:  entriesFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
}

// WriteMarkdownExport exports a routine to Markdown format in a dedicated directory.
//
// Directory name defaults to the routine ID. Creates {dir}/README.md.
func WriteMarkdownExport(details *models.RoutineDetails, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = strconv.Itoa(details.Routine.ID)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(details)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{mdFile},
	}, nil
}

// WriteTextExport exports a routine to plain text format.
//
// Defaults to {routineID}_entries.txt as the filename.
func WriteTextExport(details *models.RoutineDetails, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%d_entries.txt", details.Routine.ID)
	}

	textData, err := ExportToText(details)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
