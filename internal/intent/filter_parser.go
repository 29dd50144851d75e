package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"prodscout/internal/llm"
	"prodscout/internal/model"
)

const filterParseTimeout = 30 * time.Second

// FilterParser converts free-text filter criteria into a structured
// predicate set.
type FilterParser struct {
	client llm.Client
}

// NewFilterParser creates a filter-intent parser.
func NewFilterParser(client llm.Client) *FilterParser {
	return &FilterParser{client: client}
}

// Parse extracts FilterCriteria from the filter text. Unparsable output is a
// *ParseError carrying the raw model text.
func (p *FilterParser) Parse(ctx context.Context, filterText string) (*model.FilterCriteria, error) {
	prompt := fmt.Sprintf(`You extract structured product filter criteria from free text.

Filter text:
%q

Extract only the dimensions the text actually mentions. Price values are
plain numbers in the listing currency (e.g. 500000 for "500k VND").
Platforms must be drawn from: lazada, tiki, shopee.

Respond with JSON only, omitting absent fields:
{
  "min_price": number, "max_price": number,
  "min_rating": number, "max_rating": number,
  "min_review_count": int, "max_review_count": int,
  "min_sales_count": int, "min_trust_score": number,
  "is_mall": bool, "is_verified_seller": bool,
  "platforms": ["lazada", ...],
  "required_keywords": [...], "excluded_keywords": [...],
  "required_brands": [...], "excluded_brands": [...],
  "seller_locations": [...], "trust_badge_types": [...]
}`, filterText)

	resp, err := p.client.Generate(ctx, llm.Request{
		Prompt:   prompt,
		JSONMode: true,
		Timeout:  filterParseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("filter extraction call failed: %w", err)
	}

	var raw struct {
		model.FilterCriteria
		Platforms []string `json:"platforms"`
	}
	cleaned := llm.CleanJSONResponse(resp.Text)
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, &ParseError{Raw: resp.Text, Reason: "filter criteria output is not valid JSON"}
	}

	criteria := raw.FilterCriteria
	criteria.Platforms = nil
	for _, name := range raw.Platforms {
		p := model.ParsePlatform(name)
		if p == model.PlatformUnknown {
			slog.Warn("dropping unrecognized platform from criteria", "platform", name)
			continue
		}
		criteria.Platforms = append(criteria.Platforms, p)
	}

	if criteria.Empty() {
		return nil, &ParseError{Raw: resp.Text, Reason: "no filter dimension could be extracted"}
	}

	return &criteria, nil
}
