package discovery

import (
	"context"

	"prodscout/internal/crawl"
	"prodscout/internal/intent"
	"prodscout/internal/model"
)

// The orchestrator's collaborators, defined here so tests can substitute
// each stage independently.

// IntentParser extracts search intent from free-text user input.
type IntentParser interface {
	ParseUserInput(ctx context.Context, input string, project *model.Project) (intent.Parsed, error)
}

// CriteriaParser turns free-text filter requirements into structured
// criteria.
type CriteriaParser interface {
	Parse(ctx context.Context, filterText string) (*model.FilterCriteria, error)
}

// CriteriaValidator checks extracted criteria against the user's original
// wording.
type CriteriaValidator interface {
	Validate(ctx context.Context, userText string, criteria *model.FilterCriteria) (bool, string)
}

// SearchAgent proposes marketplace search URLs for a query.
type SearchAgent interface {
	SearchLinks(ctx context.Context, project *model.Project, query string, platforms []model.Platform, limit int) ([]string, error)
}

// Crawler fans out over search URLs under a shared product budget.
type Crawler interface {
	Crawl(ctx context.Context, urls []string, budget *crawl.Budget) ([]model.Product, error)
}

// Ranker narrows a candidate set to the most relevant limit products.
type Ranker interface {
	RankAndSelect(ctx context.Context, products []model.Product, query string, criteria *model.FilterCriteria, limit int) []model.Product
}
