package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config holds configuration for building a resilient LLM client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	RateLimit   int // requests per minute
	Temperature float64
	MaxTokens   int
}

// NewClient builds a provider client from configuration and wraps it in the
// resilience layer. Every caller in the pipeline goes through this wrapper.
func NewClient(ctx context.Context, cfg Config) (*Resilient, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "", "gemini", "google":
		client, err = newGeminiClient(ctx, cfg)
	case "openai":
		client, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return NewResilient(client, cfg), nil
}
