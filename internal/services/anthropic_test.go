package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/desertthunder/fretsheet/internal/shared"
)

type fakeMessages struct {
	reply string
	err   error
	calls int
}

func (f *fakeMessages) New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{{Type: "text", Text: f.reply}},
	}, nil
}

func newTestService(messages *fakeMessages) *AnthropicService {
	return &AnthropicService{messages: messages, model: "claude-sonnet-4-5", maxTokens: 4096}
}

func TestNewAnthropicService(t *testing.T) {
	t.Run("requires an API key", func(t *testing.T) {
		_, err := NewAnthropicService(shared.RecognizerConfig{})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("defaults max tokens", func(t *testing.T) {
		svc, err := NewAnthropicService(shared.RecognizerConfig{APIKey: "key", Model: "claude-sonnet-4-5"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if svc.maxTokens != 4096 {
			t.Errorf("expected default max tokens, got %d", svc.maxTokens)
		}
	})
}

func TestAnalyzeChordSheet(t *testing.T) {
	ctx := context.Background()
	png := File{Name: "sheet.png", MediaType: "image/png", Data: []byte{0x89, 0x50}}

	t.Run("parses a fenced response", func(t *testing.T) {
		messages := &fakeMessages{reply: "Here is the analysis:\n```json\n" +
			`{"tuning":"EADGBE","capo":2,"sections":[{"label":"Verse","chords":[{"name":"Em","frets":[0,2,2,0,0,0]}]}]}` +
			"\n```\n"}
		svc := newTestService(messages)

		analysis, err := svc.AnalyzeChordSheet(ctx, []File{png})
		if err != nil {
			t.Fatalf("analysis failed: %v", err)
		}
		if analysis.Capo != 2 || len(analysis.Sections) != 1 {
			t.Errorf("unexpected analysis: %+v", analysis)
		}
		if analysis.Sections[0].Chords[0].Name != "Em" {
			t.Errorf("unexpected chord: %+v", analysis.Sections[0].Chords[0])
		}
		if messages.calls != 1 {
			t.Errorf("expected a single API call, got %d", messages.calls)
		}
	})

	t.Run("parses a bare JSON response", func(t *testing.T) {
		messages := &fakeMessages{reply: `{"sections":[{"label":"Chorus","chords":[{"name":"G","frets":[3,2,0,0,0,3]}]}]}`}
		svc := newTestService(messages)

		analysis, err := svc.AnalyzeChordSheet(ctx, []File{png})
		if err != nil {
			t.Fatalf("analysis failed: %v", err)
		}
		if analysis.Sections[0].Label != "Chorus" {
			t.Errorf("unexpected section: %+v", analysis.Sections[0])
		}
	})

	t.Run("rejects an empty file list", func(t *testing.T) {
		svc := newTestService(&fakeMessages{})

		if _, err := svc.AnalyzeChordSheet(ctx, nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("classifies rate limiting", func(t *testing.T) {
		svc := newTestService(&fakeMessages{err: &anthropic.Error{StatusCode: 429}})

		_, err := svc.AnalyzeChordSheet(ctx, []File{png})
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
	})

	t.Run("classifies server failures", func(t *testing.T) {
		svc := newTestService(&fakeMessages{err: &anthropic.Error{StatusCode: 500}})

		_, err := svc.AnalyzeChordSheet(ctx, []File{png})
		if !errors.Is(err, shared.ErrRecognition) {
			t.Errorf("expected ErrRecognition, got %v", err)
		}
	})

	t.Run("classifies prose replies as malformed", func(t *testing.T) {
		svc := newTestService(&fakeMessages{reply: "I could not find any chord diagrams in this file."})

		_, err := svc.AnalyzeChordSheet(ctx, []File{png})
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("classifies empty section lists as malformed", func(t *testing.T) {
		svc := newTestService(&fakeMessages{reply: `{"tuning":"EADGBE","sections":[]}`})

		_, err := svc.AnalyzeChordSheet(ctx, []File{png})
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})
}
