// Package search proposes marketplace search links for a product query.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"prodscout/internal/llm"
	"prodscout/internal/model"
)

const searchTimeout = 45 * time.Second

// ErrNoRecommendations is returned when the model yields no usable product
// recommendations for a query.
var ErrNoRecommendations = errors.New("no product recommendations")

// Agent asks the model for product recommendations and resolves them to
// per-platform catalog search URLs. Links for disabled platforms are never
// emitted.
type Agent struct {
	client llm.Client
}

// NewAgent creates a search agent.
func NewAgent(client llm.Client) *Agent {
	return &Agent{client: client}
}

// SearchLinks returns a deduplicated set of search URLs for the query on the
// given platforms, at most one per recommended product per platform. An empty
// recommendation set is an error; the caller decides how terminal that is.
func (a *Agent) SearchLinks(ctx context.Context, project *model.Project, query string, platforms []model.Platform, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}

	enabled := enabledOnly(platforms)
	if len(enabled) == 0 {
		enabled = model.DefaultPlatforms
	}

	names := make([]string, len(enabled))
	for i, p := range enabled {
		names[i] = string(p)
	}

	prompt := fmt.Sprintf(`You recommend sample products to research for an e-commerce project.

Project context:
%s
Search query: %q
Platforms: %s

Suggest up to %d distinct product names matching the query, phrased the way
a shopper would search for them on Vietnamese marketplaces.

Respond with JSON only:
{"products": [{"name": "..."}]}`,
		project.PromptContext(), query, strings.Join(names, ", "), limit)

	resp, err := a.client.Generate(ctx, llm.Request{
		Prompt:   prompt,
		JSONMode: true,
		Timeout:  searchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("product search call failed: %w", err)
	}

	var out struct {
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
	}
	cleaned := llm.CleanJSONResponse(resp.Text)
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("product search output is not valid JSON: %w", err)
	}

	seen := make(map[string]bool)
	var links []string
	for _, p := range out.Products {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		for _, platform := range enabled {
			link := SearchURL(platform, name)
			if link == "" || seen[link] {
				continue
			}
			seen[link] = true
			links = append(links, link)
		}
	}

	if len(links) == 0 {
		return nil, fmt.Errorf("%w for query %q", ErrNoRecommendations, query)
	}

	slog.Info("resolved search links", "query", query, "links", len(links))
	return links, nil
}

// SearchURL builds the catalog search URL for a query on a platform.
// Disabled platforms yield no URL.
func SearchURL(platform model.Platform, query string) string {
	if !platform.Enabled() {
		return ""
	}
	q := url.QueryEscape(query)
	switch platform {
	case model.PlatformLazada:
		return "https://www.lazada.vn/catalog/?q=" + q
	case model.PlatformTiki:
		return "https://tiki.vn/search?q=" + q
	case model.PlatformShopee:
		return "https://shopee.vn/search?keyword=" + q
	default:
		return ""
	}
}

func enabledOnly(platforms []model.Platform) []model.Platform {
	var out []model.Platform
	for _, p := range platforms {
		if p.Enabled() {
			out = append(out, p)
		}
	}
	return out
}
