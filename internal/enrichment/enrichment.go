// Package enrichment wraps the external AI provider that turns raw memory
// content into transcriptions and structured metadata. The provider is a black
// box: callers see only the Adapter contract and a generic failure.
package enrichment

import "context"

// Analysis is the structured metadata derived from a memory's text.
type Analysis struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	Themes          []string `json:"themes"`
	PeopleMentioned []string `json:"people_mentioned"`
	PeriodMentioned *string  `json:"period_mentioned,omitempty"`
}

// Context carries optional hints about where the memory came from.
type Context struct {
	QuestionText string
	CategoryName string
}

// Adapter is the AI enrichment boundary: transcription, analysis and image OCR.
type Adapter interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
	Analyze(ctx context.Context, content string, hints Context) (*Analysis, error)
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)
}
