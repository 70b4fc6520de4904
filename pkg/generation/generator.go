// Package generation turns a free-text prompt into a structured workflow
// guide using the configured LLM provider. Each provider implements the same
// Generator interface and returns a normalized, validated result.
package generation

import (
	"context"

	"github.com/masarflow/masar/pkg/models"
)

// Options tune a single generation run.
type Options struct {
	// UseSearch lets providers that support grounding (Gemini) consult web
	// search while generating. Other providers ignore it.
	UseSearch bool

	// IncludeMedia allows media steps in the output. When false the prompt
	// forbids them and media resolution is skipped.
	IncludeMedia bool
}

// DefaultOptions match the behavior users get without tuning anything.
func DefaultOptions() Options {
	return Options{UseSearch: true, IncludeMedia: true}
}

// Request is one generation run.
type Request struct {
	Prompt   string
	Language models.Language
	Options  Options
}

// Result is the normalized outcome of a generation run. Step and checklist
// ids are already assigned; media steps still carry keyword content until
// resolved against an image provider.
type Result struct {
	Title       string
	Description string
	Steps       []*models.Step
}

// Generator produces a workflow guide from a prompt using one LLM provider.
type Generator interface {
	Provider() models.AIProvider
	Generate(ctx context.Context, req Request) (*Result, error)
}
