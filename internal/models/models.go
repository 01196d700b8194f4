// package models defines the data model for the practice sheet
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CommonScope is the ChordChart.ItemID value marking a chart as belonging to
// the shared chord library rather than a specific practice item.
const CommonScope = "common"

// Record is implemented by every row-backed entity. Position is the 0-based
// slot within the entity's ordering scope and is kept dense by the
// repositories.
type Record interface {
	RecordID() int // RecordID returns the numeric row identity
	Position() int // Position returns the 0-based order within the scope
}

// Item is one practice item (a song, exercise, or technique) stored on the
// Items worksheet.
type Item struct {
	ID          int
	ItemRef     int
	Title       string
	Notes       string
	Duration    string
	Description string
	Order       int
	Tuning      string
}

func (i Item) RecordID() int { return i.ID }
func (i Item) Position() int { return i.Order }

// Routine is an entry on the routines index worksheet. Each routine also owns
// a dedicated worksheet, named by its ID, holding its RoutineItem rows.
type Routine struct {
	ID      int
	Name    string
	Created string
	Order   int
	Active  bool
}

func (r Routine) RecordID() int { return r.ID }
func (r Routine) Position() int { return r.Order }

// WorksheetTitle returns the title of the worksheet holding this routine's
// entries.
func (r Routine) WorksheetTitle() string {
	return strconv.Itoa(r.ID)
}

// RoutineItem is one entry of a routine, referencing an Item by ID.
type RoutineItem struct {
	ID        int
	ItemID    int
	Order     int
	Completed bool
}

func (ri RoutineItem) RecordID() int { return ri.ID }
func (ri RoutineItem) Position() int { return ri.Order }

// RoutineDetails is a read model joining a routine with its entries and the
// referenced items, assembled from a single batch read.
type RoutineDetails struct {
	Routine Routine
	Entries []RoutineEntry
}

// RoutineEntry pairs a RoutineItem with its resolved Item. Item is zero-valued
// when the referenced item no longer exists.
type RoutineEntry struct {
	RoutineItem RoutineItem
	Item        Item
	Missing     bool
}

// ChordChart is a chord diagram stored on the ChordCharts worksheet. ItemID is
// either a single item ID, a comma-separated list of item IDs, or
// [CommonScope] for library chords. Order is dense per ItemID scope.
//
// ChordData holds the raw JSON cell value so that charts round-trip
// unchanged even when the payload carries fields this version does not know
// about. Use [ChordChart.Data] and [ChordChart.SetData] for typed access.
type ChordChart struct {
	ID        int
	ItemID    string
	Title     string
	ChordData string
	CreatedAt string
	Order     int
}

// Data decodes the chart's diagram payload.
func (c ChordChart) Data() (ChordData, error) {
	var d ChordData
	if strings.TrimSpace(c.ChordData) == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(c.ChordData), &d); err != nil {
		return ChordData{}, fmt.Errorf("invalid chord data for chart %d: %w", c.ID, err)
	}
	return d, nil
}

// SetData serializes a diagram payload into the chart.
func (c *ChordChart) SetData(d ChordData) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode chord data: %w", err)
	}
	c.ChordData = string(raw)
	return nil
}

func (c ChordChart) RecordID() int { return c.ID }
func (c ChordChart) Position() int { return c.Order }

// IsCommon reports whether the chart belongs to the shared chord library.
func (c ChordChart) IsCommon() bool {
	return strings.EqualFold(strings.TrimSpace(c.ItemID), CommonScope)
}

// ItemIDs returns the numeric item IDs the chart is attached to. Common
// charts and unparseable segments yield no IDs.
func (c ChordChart) ItemIDs() []int {
	var ids []int
	for _, part := range strings.Split(c.ItemID, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// AppliesTo reports whether the chart is attached to the given item.
func (c ChordChart) AppliesTo(itemID int) bool {
	for _, id := range c.ItemIDs() {
		if id == itemID {
			return true
		}
	}
	return false
}

// ScopeKey returns the ordering scope of the chart: "common" for library
// chords, otherwise the raw ItemID cell value.
func (c ChordChart) ScopeKey() string {
	if c.IsCommon() {
		return CommonScope
	}
	return strings.TrimSpace(c.ItemID)
}

// ChordData is the diagram payload serialized as JSON into a single cell. The
// shape matches what the rendering front end consumes; the storage layer
// treats it as opaque beyond round-tripping.
type ChordData struct {
	Title              string  `json:"title,omitempty"`
	Tuning             string  `json:"tuning,omitempty"`
	Capo               int     `json:"capo,omitempty"`
	StartingFret       int     `json:"startingFret,omitempty"`
	NumFrets           int     `json:"numFrets,omitempty"`
	NumStrings         int     `json:"numStrings,omitempty"`
	Fingers            [][]any `json:"fingers,omitempty"`
	Barres             []Barre `json:"barres,omitempty"`
	OpenStrings        []int   `json:"openStrings,omitempty"`
	MutedStrings       []int   `json:"mutedStrings,omitempty"`
	SectionID          string  `json:"sectionId,omitempty"`
	SectionLabel       string  `json:"sectionLabel,omitempty"`
	SectionRepeatCount int     `json:"sectionRepeatCount,omitempty"`
}

// Barre is a barre spanning strings at a fret.
type Barre struct {
	FromString int `json:"fromString"`
	ToString   int `json:"toString"`
	Fret       int `json:"fret"`
}

// BatchDeleteResult reports the outcome of a batch chart deletion. Every
// requested ID lands in exactly one bucket.
type BatchDeleteResult struct {
	Deleted  []int `json:"deleted"`
	NotFound []int `json:"not_found"`
	Failed   []int `json:"failed"`
}
