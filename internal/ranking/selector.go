// Package ranking asks a language model to pick the most relevant products
// from a filtered candidate set. The model only ever sees and returns product
// URLs; every selection is validated against the input set before it is
// trusted.
package ranking

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

const rankTimeout = 45 * time.Second

// Selector ranks candidate products with a model call.
type Selector struct {
	client llm.Client
	logger *slog.Logger
}

// NewSelector creates a ranking selector.
func NewSelector(client llm.Client, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{client: client, logger: logger}
}

// RankAndSelect returns at most limit products chosen for relevance to the
// query. If the candidate set already fits the limit it is returned
// unchanged. Any model failure or invalid selection degrades to truncation,
// never to an error.
func (s *Selector) RankAndSelect(ctx context.Context, products []model.Product, query string, criteria *model.FilterCriteria, limit int) []model.Product {
	if limit <= 0 || len(products) <= limit {
		return products
	}

	selected, err := s.rank(ctx, products, query, criteria, limit)
	if err != nil {
		s.logger.Warn("ranking failed, falling back to truncation",
			"error", err,
			"candidates", len(products),
			"limit", limit)
		return products[:limit]
	}
	return selected
}

type rankResponse struct {
	SelectedURLs []string `json:"selected_urls"`
}

func (s *Selector) rank(ctx context.Context, products []model.Product, query string, criteria *model.FilterCriteria, limit int) ([]model.Product, error) {
	prompt, err := buildRankPrompt(products, query, criteria, limit)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Generate(ctx, llm.Request{
		Prompt:   prompt,
		JSONMode: true,
		Timeout:  rankTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ranking call failed: %w", err)
	}

	var parsed rankResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONResponse(resp.Text)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse ranking response: %w", err)
	}

	selected := resolveSelection(products, parsed.SelectedURLs, limit)
	if len(selected) == 0 {
		return nil, fmt.Errorf("model selected no known products out of %d candidates", len(products))
	}

	s.logger.Info("ranking selected products",
		"candidates", len(products),
		"selected", len(selected),
		"limit", limit)
	return selected, nil
}

// resolveSelection maps the model's URL picks back onto input products,
// dropping unknown URLs and duplicates, capped at limit. Order follows the
// model's ranking.
func resolveSelection(products []model.Product, urls []string, limit int) []model.Product {
	byURL := make(map[string]model.Product, len(products))
	for _, p := range products {
		byURL[p.URL] = p
	}

	seen := make(map[string]bool, len(urls))
	var selected []model.Product
	for _, u := range urls {
		if len(selected) >= limit {
			break
		}
		u = strings.TrimSpace(u)
		if seen[u] {
			continue
		}
		seen[u] = true
		if p, ok := byURL[u]; ok {
			selected = append(selected, p)
		}
	}
	return selected
}

func buildRankPrompt(products []model.Product, query string, criteria *model.FilterCriteria, limit int) (string, error) {
	type candidate struct {
		URL         string   `json:"url"`
		Name        string   `json:"name"`
		Price       float64  `json:"price"`
		Platform    string   `json:"platform"`
		Rating      *float64 `json:"rating,omitempty"`
		ReviewCount *int     `json:"review_count,omitempty"`
		SalesCount  *int     `json:"sales_count,omitempty"`
	}

	candidates := make([]candidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, candidate{
			URL:         p.URL,
			Name:        p.Name,
			Price:       p.Price,
			Platform:    string(p.Platform),
			Rating:      p.Rating,
			ReviewCount: p.ReviewCount,
			SalesCount:  p.SalesCount,
		})
	}

	candidateJSON, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("failed to encode candidates: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a product research assistant for Vietnamese e-commerce.\n")
	fmt.Fprintf(&b, "Select the %d products most relevant to the search query %q.\n", limit, query)
	b.WriteString("Prefer products with strong ratings, review counts, and sales when relevance is equal.\n\n")

	if !criteria.Empty() {
		criteriaJSON, err := json.Marshal(criteria)
		if err != nil {
			return "", fmt.Errorf("failed to encode criteria: %w", err)
		}
		b.WriteString("The buyer's stated criteria (already applied, for context only):\n")
		b.Write(criteriaJSON)
		b.WriteString("\n\n")
	}

	b.WriteString("Candidate products:\n")
	b.Write(candidateJSON)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Respond with JSON only, in this exact shape, using URLs copied verbatim from the candidates, best first, at most %d entries:\n", limit)
	b.WriteString(`{"selected_urls": ["<url>", "<url>"]}`)

	return b.String(), nil
}
