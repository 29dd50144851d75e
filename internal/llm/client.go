// Package llm wraps the language-model backends behind a single resilient
// client used by every AI-driven stage of the discovery pipeline.
package llm

import (
	"context"
	"time"
)

// Request describes a single generation call.
type Request struct {
	Prompt   string
	JSONMode bool          // request application/json output
	Timeout  time.Duration // per-call deadline; zero means the caller's ctx rules
}

// Usage carries token accounting reported by the backend.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the backend's answer. Text may still be wrapped in markdown
// code fences; use CleanJSONResponse before unmarshalling.
type Response struct {
	Text     string
	Provider string
	Model    string
	Usage    Usage
}

// Client defines the interface for LLM providers.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
