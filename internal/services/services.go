// package services defines interface Recognizer for chord sheet analysis
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/shared"
)

// MaxFileSize is the largest upload accepted for analysis.
const MaxFileSize = 10 * 1024 * 1024

// Recognizer defines the interface for services that turn chord sheet
// scans (images, PDFs) into structured chord data.
type Recognizer interface {
	// AnalyzeChordSheet submits the given files for analysis and returns
	// the extracted sections and chords.
	AnalyzeChordSheet(ctx context.Context, files []File) (*Analysis, error)

	// Name returns the name of the recognition backend.
	Name() string
}

// File is an upload destined for analysis.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// IsPDF reports whether the file should be sent as a document block
// rather than an image block.
func (f File) IsPDF() bool {
	return f.MediaType == "application/pdf"
}

// NewFile builds a File from a filename and its contents, deriving the
// media type from the extension. Only PNG, JPEG, and PDF uploads are
// accepted.
func NewFile(name string, data []byte) (File, error) {
	if len(data) == 0 {
		return File{}, fmt.Errorf("%w: %s is empty", shared.ErrInvalidInput, name)
	}
	if len(data) > MaxFileSize {
		return File{}, fmt.Errorf("%w: %s exceeds %d bytes", shared.ErrInvalidInput, name, MaxFileSize)
	}

	var mediaType string
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		mediaType = "image/png"
	case ".jpg", ".jpeg":
		mediaType = "image/jpeg"
	case ".pdf":
		mediaType = "application/pdf"
	default:
		return File{}, fmt.Errorf("%w: unsupported file type %s", shared.ErrInvalidInput, name)
	}

	return File{Name: name, MediaType: mediaType, Data: data}, nil
}

// Analysis is the structured result of a chord sheet analysis.
type Analysis struct {
	Tuning   string    `json:"tuning"`
	Capo     int       `json:"capo"`
	Sections []Section `json:"sections"`
}

// Section groups the chords under one song section label (Verse, Chorus).
type Section struct {
	Label       string  `json:"label"`
	RepeatCount int     `json:"repeatCount"`
	Chords      []Chord `json:"chords"`
}

// Chord is a single recognized chord. Frets are listed low E to high E;
// 0 is an open string and -1 a muted one.
type Chord struct {
	Name         string `json:"name"`
	Frets        []int  `json:"frets"`
	StartingFret int    `json:"startingFret"`
}

// ChartData converts the analysis into renderable chord diagrams. Fret
// patterns are re-indexed to diagram string numbering (string 1 = high E)
// with finger numbers assigned in ascending string order. Each section
// gets a generated ID so its chords stay grouped.
func (a *Analysis) ChartData() []models.ChordData {
	tuning := a.Tuning
	if tuning == "" {
		tuning = "EADGBE"
	}

	var charts []models.ChordData
	for _, section := range a.Sections {
		sectionID := shared.GenerateID()
		for _, chord := range section.Chords {
			data := DiagramFromFrets(chord.Name, chord.Frets)
			data.Tuning = tuning
			data.Capo = a.Capo
			data.SectionID = sectionID
			data.SectionLabel = section.Label
			if chord.StartingFret > 0 {
				data.StartingFret = chord.StartingFret
			}
			if section.RepeatCount > 0 {
				data.SectionRepeatCount = section.RepeatCount
			}
			charts = append(charts, data)
		}
	}
	return charts
}

// DiagramFromFrets builds a renderable diagram from a fret pattern
// listed low E to high E. Diagrams number strings the other way, from
// high E (1) to low E (6); finger numbers are assigned in ascending
// string order.
func DiagramFromFrets(name string, frets []int) models.ChordData {
	data := models.ChordData{
		Title:      name,
		Tuning:     "EADGBE",
		NumFrets:   5,
		NumStrings: 6,
	}
	if len(frets) > 0 {
		data.NumStrings = len(frets)
	}

	finger := 1
	for i, fret := range frets {
		str := data.NumStrings - i
		switch {
		case fret == 0:
			data.OpenStrings = append(data.OpenStrings, str)
		case fret < 0:
			data.MutedStrings = append(data.MutedStrings, str)
		default:
			data.Fingers = append(data.Fingers, []any{str, fret, fmt.Sprintf("%d", finger)})
			finger++
		}
	}
	data.StartingFret = startingFret(frets)
	return data
}

// startingFret picks the lowest fretted position, defaulting to 1.
func startingFret(frets []int) int {
	lowest := 0
	for _, f := range frets {
		if f > 0 && (lowest == 0 || f < lowest) {
			lowest = f
		}
	}
	if lowest == 0 {
		return 1
	}
	return lowest
}
