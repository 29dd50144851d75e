// Package intent turns free-text user requests into validated search intent:
// a query, optional filter criteria text, and a result budget.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"prodscout/internal/llm"
	"prodscout/internal/model"
)

const (
	// MaxInputRunes bounds raw natural-language input.
	MaxInputRunes = 2000

	// DefaultMaxProducts is used when the model omits a budget.
	DefaultMaxProducts = 5

	// maxProductsCap is the server-side ceiling; model-provided budgets are
	// clamped here rather than trusted.
	maxProductsCap = 20

	parseTimeout = 30 * time.Second
)

// ParseError reports model output that could not be interpreted. The raw
// text is carried for diagnostics.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	raw := e.Raw
	if len(raw) > 200 {
		raw = raw[:200] + "..."
	}
	return fmt.Sprintf("%s (raw output: %q)", e.Reason, raw)
}

// Parsed is the extracted search intent.
type Parsed struct {
	Query       string
	FilterText  string
	MaxProducts int
}

// Parser extracts search intent from natural-language input.
type Parser struct {
	client llm.Client
}

// NewParser creates a natural-language intent parser.
func NewParser(client llm.Client) *Parser {
	return &Parser{client: client}
}

// ParseUserInput extracts (query, filter text, budget) from the user's raw
// request, grounded with the project snapshot. Garbled model output is a
// *ParseError; transport failures propagate as-is.
func (p *Parser) ParseUserInput(ctx context.Context, input string, project *model.Project) (Parsed, error) {
	prompt := fmt.Sprintf(`You extract product-search intent from a user request.

Project context:
%s
User request:
%q

Extract:
- "query": the product search phrase (required, in the request's language)
- "filter_criteria": the filtering requirements as free text, or null if none
- "max_products": how many products the user asked for, or null if unstated

Respond with JSON only:
{"query": "...", "filter_criteria": "..." or null, "max_products": number or null}`,
		project.PromptContext(), input)

	resp, err := p.client.Generate(ctx, llm.Request{
		Prompt:   prompt,
		JSONMode: true,
		Timeout:  parseTimeout,
	})
	if err != nil {
		return Parsed{}, fmt.Errorf("intent extraction call failed: %w", err)
	}

	var out struct {
		Query          string `json:"query"`
		FilterCriteria string `json:"filter_criteria"`
		MaxProducts    *int   `json:"max_products"`
	}
	cleaned := llm.CleanJSONResponse(resp.Text)
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return Parsed{}, &ParseError{Raw: resp.Text, Reason: "intent output is not valid JSON"}
	}

	if strings.TrimSpace(out.Query) == "" {
		return Parsed{}, &ParseError{Raw: resp.Text, Reason: "intent output has no query"}
	}

	maxProducts := DefaultMaxProducts
	if out.MaxProducts != nil {
		maxProducts = *out.MaxProducts
		if maxProducts < 1 {
			maxProducts = 1
		} else if maxProducts > maxProductsCap {
			maxProducts = maxProductsCap
		}
	}

	parsed := Parsed{
		Query:       strings.TrimSpace(out.Query),
		FilterText:  strings.TrimSpace(out.FilterCriteria),
		MaxProducts: maxProducts,
	}

	slog.Debug("parsed user intent",
		"query", parsed.Query,
		"filter_text", parsed.FilterText,
		"max_products", parsed.MaxProducts)

	return parsed, nil
}
