package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// geminiClient implements Client using the Google GenAI SDK.
type geminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

// newGeminiClient creates a new Gemini API client.
func newGeminiClient(ctx context.Context, cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	temperature := float32(cfg.Temperature)
	if temperature == 0 {
		temperature = 0.2
	}

	return &geminiClient{
		client:      client,
		model:       model,
		temperature: temperature,
	}, nil
}

// Generate sends a single generation request to Gemini.
func (c *geminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if req.JSONMode {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
	if err != nil {
		return Response{}, fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return Response{}, fmt.Errorf("no completion returned")
	}

	out := Response{
		Text:     text,
		Provider: "google",
		Model:    c.model,
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}
