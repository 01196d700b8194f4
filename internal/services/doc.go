// Package services defines the [Recognizer] interface for chord sheet
// analysis and implements it over the Anthropic Messages API.
//
// # Recognizer Interface
//
// A recognizer accepts uploaded scans (PNG, JPEG, PDF) and returns a
// structured [Analysis]: sections in sheet order, each holding chords
// with fret patterns read directly from the diagrams.
//
// # Anthropic Implementation
//
// [AnthropicService] sends the uploads as image or document content
// blocks together with an extraction prompt and expects a single JSON
// object back, tolerating a markdown code fence around it.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrRateLimited] : API returned 429 or 529, safe to retry
//   - [shared.ErrRecognition] : any other API failure
//   - [shared.ErrMalformedResponse] : reply held no parseable analysis
//   - [shared.ErrInvalidInput] : unsupported or oversized upload
//
// # Chart Conversion
//
// [Analysis.ChartData] converts fret patterns into diagram coordinates:
// patterns arrive low E to high E while diagrams number strings from
// high E (1) to low E (6). Open (0) and muted (-1) positions become the
// diagram's open and muted string lists.
package services
