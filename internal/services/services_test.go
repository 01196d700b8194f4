package services

import (
	"errors"
	"reflect"
	"testing"

	"github.com/desertthunder/fretsheet/internal/shared"
)

func TestNewFile(t *testing.T) {
	tc := []struct {
		name      string
		filename  string
		data      []byte
		mediaType string
		wantErr   bool
	}{
		{"png upload", "sheet.png", []byte{1}, "image/png", false},
		{"jpg upload", "scan.JPG", []byte{1}, "image/jpeg", false},
		{"jpeg upload", "scan.jpeg", []byte{1}, "image/jpeg", false},
		{"pdf upload", "songbook.pdf", []byte{1}, "application/pdf", false},
		{"unsupported type", "notes.txt", []byte{1}, "", true},
		{"empty file", "sheet.png", nil, "", true},
		{"oversized file", "huge.png", make([]byte, MaxFileSize+1), "", true},
	}

	for _, c := range tc {
		t.Run(c.name, func(t *testing.T) {
			f, err := NewFile(c.filename, c.data)
			if c.wantErr {
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.MediaType != c.mediaType {
				t.Errorf("expected media type %q, got %q", c.mediaType, f.MediaType)
			}
		})
	}
}

func TestChartData(t *testing.T) {
	t.Run("converts fret patterns to diagram coordinates", func(t *testing.T) {
		analysis := &Analysis{
			Tuning: "EADGBE",
			Capo:   2,
			Sections: []Section{
				{Label: "Verse", RepeatCount: 2, Chords: []Chord{
					{Name: "D", Frets: []int{-1, -1, 0, 2, 3, 2}},
				}},
			},
		}

		charts := analysis.ChartData()
		if len(charts) != 1 {
			t.Fatalf("expected 1 chart, got %d", len(charts))
		}

		d := charts[0]
		if d.Title != "D" || d.Tuning != "EADGBE" || d.Capo != 2 {
			t.Errorf("unexpected chart header: %+v", d)
		}
		if !reflect.DeepEqual(d.MutedStrings, []int{6, 5}) {
			t.Errorf("unexpected muted strings: %v", d.MutedStrings)
		}
		if !reflect.DeepEqual(d.OpenStrings, []int{4}) {
			t.Errorf("unexpected open strings: %v", d.OpenStrings)
		}
		want := [][]any{{3, 2, "1"}, {2, 3, "2"}, {1, 2, "3"}}
		if !reflect.DeepEqual(d.Fingers, want) {
			t.Errorf("expected fingers %v, got %v", want, d.Fingers)
		}
		if d.SectionLabel != "Verse" || d.SectionRepeatCount != 2 {
			t.Errorf("section metadata lost: %+v", d)
		}
		if d.StartingFret != 2 {
			t.Errorf("expected starting fret 2, got %d", d.StartingFret)
		}
	})

	t.Run("chords in one section share an ID", func(t *testing.T) {
		analysis := &Analysis{
			Sections: []Section{
				{Label: "Verse", Chords: []Chord{{Name: "Em"}, {Name: "G"}}},
				{Label: "Chorus", Chords: []Chord{{Name: "C"}}},
			},
		}

		charts := analysis.ChartData()
		if len(charts) != 3 {
			t.Fatalf("expected 3 charts, got %d", len(charts))
		}
		if charts[0].SectionID == "" || charts[0].SectionID != charts[1].SectionID {
			t.Errorf("verse chords should share a section ID: %q vs %q", charts[0].SectionID, charts[1].SectionID)
		}
		if charts[2].SectionID == charts[0].SectionID {
			t.Error("sections must get distinct IDs")
		}
	})

	t.Run("defaults tuning and starting fret", func(t *testing.T) {
		analysis := &Analysis{
			Sections: []Section{{Label: "Chords", Chords: []Chord{
				{Name: "Em", Frets: []int{0, 2, 2, 0, 0, 0}},
			}}},
		}

		d := analysis.ChartData()[0]
		if d.Tuning != "EADGBE" {
			t.Errorf("expected default tuning, got %q", d.Tuning)
		}
		if d.StartingFret != 2 {
			t.Errorf("expected starting fret 2, got %d", d.StartingFret)
		}
	})

	t.Run("open chord with no fretted notes", func(t *testing.T) {
		if got := startingFret([]int{0, 0, 0, 0, 0, 0}); got != 1 {
			t.Errorf("expected starting fret 1, got %d", got)
		}
	})
}

func TestParseAnalysis(t *testing.T) {
	t.Run("tolerates unlabeled fences", func(t *testing.T) {
		reply := "```\n" + `{"sections":[{"label":"Chords","chords":[{"name":"Am"}]}]}` + "\n```"
		analysis, err := parseAnalysis(reply)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if analysis.Sections[0].Chords[0].Name != "Am" {
			t.Errorf("unexpected analysis: %+v", analysis)
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		_, err := parseAnalysis(`{"sections": [}`)
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})
}
