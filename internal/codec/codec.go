// Package codec converts worksheet grids to typed records and back.
//
// Each worksheet kind has a fixed column-letter schema. Row 1 is a cosmetic
// header; data starts at row 2. Writes always overwrite the full data range,
// clearing it first so rows removed in memory leave no trailing ghosts.
package codec

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/sheets"
)

// Kind identifies a worksheet schema.
type Kind int

const (
	KindItem Kind = iota
	KindRoutine
	KindRoutineItem
	KindChordChart
)

// Schema describes the fixed column layout of a worksheet kind.
type Schema struct {
	Columns    int
	LastColumn string
	Header     []string
}

var schemas = map[Kind]Schema{
	KindItem: {
		Columns:    8,
		LastColumn: "H",
		Header:     []string{"ID", "Item", "Title", "Notes", "Duration", "Description", "Order", "Tuning"},
	},
	KindRoutine: {
		Columns:    4,
		LastColumn: "D",
		Header:     []string{"ID", "Name", "Created", "Order"},
	},
	KindRoutineItem: {
		Columns:    4,
		LastColumn: "D",
		Header:     []string{"ID", "Item ID", "Order", "Completed"},
	},
	KindChordChart: {
		Columns:    6,
		LastColumn: "F",
		Header:     []string{"ID", "Item ID", "Title", "Chord Data", "Created At", "Order"},
	},
}

// Schema returns the column layout for the kind.
func (k Kind) Schema() Schema {
	return schemas[k]
}

// DataRange is the open-ended range holding all data rows ("A2:H").
func (k Kind) DataRange() string {
	return "A2:" + schemas[k].LastColumn
}

// WriteRange bounds the data range to n rows ("A2:H11" for 10 rows).
func (k Kind) WriteRange(n int) string {
	return fmt.Sprintf("A2:%s%d", schemas[k].LastColumn, n+1)
}

// normalize pads every row to the schema width and drops rows whose cells are
// all blank.
func normalize(k Kind, grid [][]string) [][]string {
	width := schemas[k].Columns
	rows := make([][]string, 0, len(grid))
	for _, raw := range grid {
		row := make([]string, width)
		blank := true
		for i := 0; i < width && i < len(raw); i++ {
			row[i] = raw[i]
			if strings.TrimSpace(raw[i]) != "" {
				blank = false
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows
}

// parseInt coerces a cell to an integer. Spreadsheets sometimes render
// integers as floats ("3.0"), so a failed Atoi falls back to float parsing.
// Blank and unparseable cells coerce to zero.
func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// parseBool maps the stored completion flag: "TRUE" is true, anything else
// (including the legacy single space) is false.
func parseBool(s string) bool {
	return strings.TrimSpace(s) == "TRUE"
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return ""
}

// DecodeItems converts a raw Items grid into records sorted by order.
func DecodeItems(grid [][]string) []models.Item {
	rows := normalize(KindItem, grid)
	items := make([]models.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.Item{
			ID:          parseInt(row[0]),
			ItemRef:     parseInt(row[1]),
			Title:       row[2],
			Notes:       row[3],
			Duration:    row[4],
			Description: row[5],
			Order:       parseInt(row[6]),
			Tuning:      row[7],
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	return items
}

// EncodeItems converts records to grid rows in slice order.
func EncodeItems(items []models.Item) [][]string {
	grid := make([][]string, 0, len(items))
	for _, it := range items {
		grid = append(grid, []string{
			strconv.Itoa(it.ID),
			strconv.Itoa(it.ItemRef),
			it.Title,
			it.Notes,
			it.Duration,
			it.Description,
			strconv.Itoa(it.Order),
			it.Tuning,
		})
	}
	return grid
}

// DecodeRoutines converts a raw routines index grid into records sorted by
// order.
func DecodeRoutines(grid [][]string) []models.Routine {
	rows := normalize(KindRoutine, grid)
	routines := make([]models.Routine, 0, len(rows))
	for _, row := range rows {
		routines = append(routines, models.Routine{
			ID:      parseInt(row[0]),
			Name:    row[1],
			Created: row[2],
			Order:   parseInt(row[3]),
		})
	}
	sort.SliceStable(routines, func(i, j int) bool { return routines[i].Order < routines[j].Order })
	return routines
}

// EncodeRoutines converts index records to grid rows in slice order.
func EncodeRoutines(routines []models.Routine) [][]string {
	grid := make([][]string, 0, len(routines))
	for _, r := range routines {
		grid = append(grid, []string{
			strconv.Itoa(r.ID),
			r.Name,
			r.Created,
			strconv.Itoa(r.Order),
		})
	}
	return grid
}

// DecodeRoutineItems converts a routine worksheet grid into records sorted by
// order.
func DecodeRoutineItems(grid [][]string) []models.RoutineItem {
	rows := normalize(KindRoutineItem, grid)
	entries := make([]models.RoutineItem, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.RoutineItem{
			ID:        parseInt(row[0]),
			ItemID:    parseInt(row[1]),
			Order:     parseInt(row[2]),
			Completed: parseBool(row[3]),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Order < entries[j].Order })
	return entries
}

// EncodeRoutineItems converts routine entries to grid rows in slice order.
func EncodeRoutineItems(entries []models.RoutineItem) [][]string {
	grid := make([][]string, 0, len(entries))
	for _, e := range entries {
		grid = append(grid, []string{
			strconv.Itoa(e.ID),
			strconv.Itoa(e.ItemID),
			strconv.Itoa(e.Order),
			formatBool(e.Completed),
		})
	}
	return grid
}

// DecodeCharts converts a ChordCharts grid into records sorted by order. The
// chord data cell is carried verbatim.
func DecodeCharts(grid [][]string) []models.ChordChart {
	rows := normalize(KindChordChart, grid)
	charts := make([]models.ChordChart, 0, len(rows))
	for _, row := range rows {
		charts = append(charts, models.ChordChart{
			ID:        parseInt(row[0]),
			ItemID:    row[1],
			Title:     row[2],
			ChordData: row[3],
			CreatedAt: row[4],
			Order:     parseInt(row[5]),
		})
	}
	sort.SliceStable(charts, func(i, j int) bool { return charts[i].Order < charts[j].Order })
	return charts
}

// EncodeCharts converts chart records to grid rows in slice order.
func EncodeCharts(charts []models.ChordChart) [][]string {
	grid := make([][]string, 0, len(charts))
	for _, c := range charts {
		grid = append(grid, []string{
			strconv.Itoa(c.ID),
			c.ItemID,
			c.Title,
			c.ChordData,
			c.CreatedAt,
			strconv.Itoa(c.Order),
		})
	}
	return grid
}

// ReadGrid fetches the full data range of a worksheet.
func ReadGrid(ctx context.Context, ws sheets.Worksheet, kind Kind) ([][]string, error) {
	grid, err := ws.Get(ctx, kind.DataRange())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ws.Title(), err)
	}
	return grid, nil
}

// WriteGrid overwrites the full data range of a worksheet. The range is
// cleared first so the write blanks rows past the new row count.
func WriteGrid(ctx context.Context, ws sheets.Worksheet, kind Kind, grid [][]string) error {
	if err := ws.Clear(ctx, kind.DataRange()); err != nil {
		return fmt.Errorf("failed to clear %s: %w", ws.Title(), err)
	}
	if len(grid) == 0 {
		return nil
	}
	if err := ws.Update(ctx, kind.WriteRange(len(grid)), grid); err != nil {
		return fmt.Errorf("failed to write %s: %w", ws.Title(), err)
	}
	return nil
}
