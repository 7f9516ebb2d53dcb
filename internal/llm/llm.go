// Package llm wraps text-generation providers behind a narrow interface so
// the matching engine can be tested with a stubbed generator.
package llm

import (
	"context"
)

// Provider is the minimal surface the matcher needs from a model backend.
// Implementations wrap specific providers (Ollama, OpenAI-compatible APIs)
// and must honor context cancellation on Complete.
type Provider interface {
	// Name identifies the provider for logs and status output.
	Name() string

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Complete sends a single prompt and returns the raw response text.
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (*Completion, error)
}

// CompletionOptions represents options for a completion request.
type CompletionOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"maxTokens,omitempty"`
}

// Completion represents a model response.
type Completion struct {
	Text       string `json:"text"`
	Model      string `json:"model"`
	UsedTokens int    `json:"usedTokens,omitempty"`
}
