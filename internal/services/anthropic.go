package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/desertthunder/fretsheet/internal/shared"
)

// analysisPrompt asks for structured chord extraction. The model is told
// to read marker positions from the diagrams rather than rely on what the
// named chords usually look like, since scans may use alternate tunings.
const analysisPrompt = `Analyze the attached guitar chord sheet.

Extract every chord diagram exactly as drawn. Read marker positions from
the diagram itself; do not substitute the standard fingering for a chord
name. Count fret spaces from the nut down, strings left (low E, string 6)
to right (high E, string 1). An O above the nut is an open string, an X a
muted one. Numbers inside markers are finger labels, not fret positions.

Preserve the sheet's section structure (Intro, Verse, Chorus) and the
order of chords within each section.

Respond with only a JSON object in this shape:

{
  "tuning": "EADGBE",
  "capo": 0,
  "sections": [
    {
      "label": "Verse",
      "repeatCount": 2,
      "chords": [
        {"name": "Em", "frets": [0, 2, 2, 0, 0, 0], "startingFret": 1}
      ]
    }
  ]
}

Frets are listed low E to high E; 0 means open and -1 means muted.`

// messageCreator is the slice of the Anthropic client used here,
// extracted so tests can substitute a canned backend.
type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicService implements [Recognizer] over the Anthropic Messages
// API, sending uploads as image or document blocks alongside the
// extraction prompt.
type AnthropicService struct {
	messages  messageCreator
	model     string
	maxTokens int
}

// NewAnthropicService creates a new AnthropicService from the recognizer
// configuration.
func NewAnthropicService(cfg shared.RecognizerConfig) (*AnthropicService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: recognizer API key not configured", shared.ErrMissingCredentials)
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	svc := &AnthropicService{
		messages:  &client.Messages,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
	if svc.maxTokens <= 0 {
		svc.maxTokens = 4096
	}
	return svc, nil
}

// Name returns the name of the recognition backend.
func (s *AnthropicService) Name() string {
	return "Anthropic"
}

// AnalyzeChordSheet submits the files with the extraction prompt and
// parses the structured response.
func (s *AnthropicService) AnalyzeChordSheet(ctx context.Context, files []File) (*Analysis, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to analyze", shared.ErrInvalidInput)
	}

	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(analysisPrompt)}
	for _, f := range files {
		encoded := base64.StdEncoding.EncodeToString(f.Data)
		if f.IsPDF() {
			blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: encoded}))
		} else {
			blocks = append(blocks, anthropic.NewImageBlockBase64(f.MediaType, encoded))
		}
	}

	message, err := s.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: int64(s.maxTokens),
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	})
	if err != nil {
		return nil, classifyAPIError(err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return parseAnalysis(text.String())
}

// classifyAPIError separates rate limiting and overload from other API
// failures so callers can retry the transient ones.
func classifyAPIError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 429, 529:
			return fmt.Errorf("%w: %v", shared.ErrRateLimited, err)
		}
	}
	return fmt.Errorf("%w: %v", shared.ErrRecognition, err)
}

// parseAnalysis extracts the JSON object from the model's reply. The
// object may arrive bare or wrapped in a markdown code fence.
func parseAnalysis(text string) (*Analysis, error) {
	payload := text
	if _, fenced, ok := strings.Cut(payload, "```json"); ok {
		payload, _, _ = strings.Cut(fenced, "```")
	} else if _, fenced, ok := strings.Cut(payload, "```"); ok {
		payload, _, _ = strings.Cut(fenced, "```")
	}

	start := strings.Index(payload, "{")
	end := strings.LastIndex(payload, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in response", shared.ErrMalformedResponse)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(payload[start:end+1]), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}
	if len(analysis.Sections) == 0 {
		return nil, fmt.Errorf("%w: no sections recognized", shared.ErrMalformedResponse)
	}
	return &analysis, nil
}
