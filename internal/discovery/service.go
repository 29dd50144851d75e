// Package discovery orchestrates the product discovery pipeline: free-text
// request to validated intent, marketplace crawling under a hard budget,
// filtering, model-assisted ranking, and deduplicated import. Every run ends
// in exactly one result envelope; stage failures are classified, never
// re-thrown.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"prodscout/internal/common"
	"prodscout/internal/crawl"
	"prodscout/internal/filter"
	"prodscout/internal/intent"
	"prodscout/internal/model"
	"prodscout/internal/search"
	"prodscout/internal/service"
)

// Service runs the discovery pipeline.
type Service struct {
	intentParser IntentParser
	criteria     CriteriaParser
	validator    CriteriaValidator
	searcher     SearchAgent
	crawler      Crawler
	ranker       Ranker
	storage      service.Storage
	logger       *slog.Logger
}

// NewService wires the pipeline stages together.
func NewService(
	intentParser IntentParser,
	criteria CriteriaParser,
	validator CriteriaValidator,
	searcher SearchAgent,
	crawler Crawler,
	ranker Ranker,
	storage service.Storage,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		intentParser: intentParser,
		criteria:     criteria,
		validator:    validator,
		searcher:     searcher,
		crawler:      crawler,
		ranker:       ranker,
		storage:      storage,
		logger:       logger,
	}
}

// RunFromNaturalLanguage executes the full pipeline from a free-text request.
func (s *Service) RunFromNaturalLanguage(ctx context.Context, projectID, input string) *Result {
	if strings.TrimSpace(input) == "" {
		return errorResult(ErrorInvalidInput, "input must not be empty")
	}
	if utf8.RuneCountInString(input) > intent.MaxInputRunes {
		return errorResult(ErrorInputTooLong,
			fmt.Sprintf("input too long (maximum %d characters)", intent.MaxInputRunes))
	}

	project, result := s.loadProject(ctx, projectID)
	if result != nil {
		return result
	}
	if !project.Complete() {
		return errorResult(ErrorProjectIncomplete,
			"project has no target product; set target_product_name before running discovery")
	}

	parsed, err := s.intentParser.ParseUserInput(ctx, input, project)
	if err != nil {
		var parseErr *intent.ParseError
		if errors.As(err, &parseErr) {
			return errorResult(ErrorParsingFailed,
				fmt.Sprintf("could not understand the request: %s", parseErr.Reason))
		}
		return s.executionError("parse input", err)
	}

	s.logger.Info("parsed discovery request",
		"project_id", projectID,
		"query", parsed.Query,
		"max_products", parsed.MaxProducts)

	return s.run(ctx, project, parsed)
}

// Run executes the pipeline from structured intent, skipping natural-language
// extraction.
func (s *Service) Run(ctx context.Context, projectID, query, filterText string, maxProducts int) *Result {
	if strings.TrimSpace(query) == "" {
		return errorResult(ErrorInvalidInput, "query must not be empty")
	}
	if maxProducts < 1 || maxProducts > crawl.MaxCrawlProducts {
		return errorResult(ErrorInvalidInput,
			fmt.Sprintf("max products must be between 1 and %d", crawl.MaxCrawlProducts))
	}

	project, result := s.loadProject(ctx, projectID)
	if result != nil {
		return result
	}
	if !project.Complete() {
		return errorResult(ErrorProjectIncomplete,
			"project has no target product; set target_product_name before running discovery")
	}

	return s.run(ctx, project, intent.Parsed{
		Query:       strings.TrimSpace(query),
		FilterText:  strings.TrimSpace(filterText),
		MaxProducts: maxProducts,
	})
}

func (s *Service) loadProject(ctx context.Context, projectID string) (*model.Project, *Result) {
	project, err := s.storage.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errorResult(ErrorProjectNotFound, "project not found")
		}
		return nil, s.executionError("load project", err)
	}
	return project, nil
}

func (s *Service) run(ctx context.Context, project *model.Project, parsed intent.Parsed) *Result {
	criteria, result := s.resolveCriteria(ctx, parsed.FilterText)
	if result != nil {
		return result
	}

	links, err := s.searcher.SearchLinks(ctx, project, parsed.Query, criteria.EnabledPlatforms(), parsed.MaxProducts*2)
	if err != nil {
		if errors.Is(err, search.ErrNoRecommendations) {
			return errorResult(ErrorNoProductsFound, "the search stage found no products for this query")
		}
		return s.executionError("search", err)
	}

	budget := crawl.NewBudget(crawl.MaxCrawlProducts)
	crawled, err := s.crawler.Crawl(ctx, links, budget)
	if err != nil {
		return s.executionError("crawl", err)
	}
	if len(crawled) == 0 {
		r := errorResult(ErrorCrawlFailed,
			"no products could be crawled from the search links; the platforms may be blocking requests or the links may be stale, try again later")
		return r
	}
	found := len(crawled)

	filtered := filter.Apply(crawled, criteria)
	if len(filtered) == 0 {
		s.logger.Warn("filter criteria too strict",
			"found", found,
			"matched", 0)
		r := errorResult(ErrorNoProductsAfterFilter,
			"no products matched the filter criteria; try again with less strict criteria")
		r.ProductsFound = found
		return r
	}
	filteredCount := len(filtered)

	selected := filtered
	if len(selected) > parsed.MaxProducts {
		selected = s.ranker.RankAndSelect(ctx, selected, parsed.Query, criteria, parsed.MaxProducts)
	}

	importResult, err := s.storage.ImportProducts(ctx, project.ID, selected)
	if err != nil {
		r := errorResult(ErrorImportFailed,
			fmt.Sprintf("failed to import products: %v", err))
		r.ProductsFound = found
		r.ProductsFiltered = filteredCount
		return r
	}
	if importResult.Imported() == 0 {
		r := errorResult(ErrorImportFailed,
			"no products could be imported; all candidates were duplicates or failed to persist")
		r.ProductsFound = found
		r.ProductsFiltered = filteredCount
		return r
	}

	message := fmt.Sprintf("imported %d products", importResult.Imported())
	if importResult.Skipped() > 0 {
		message += fmt.Sprintf(" (%d skipped as duplicates or errors)", importResult.Skipped())
	}

	s.logger.Info("discovery completed",
		"project_id", project.ID,
		"found", found,
		"filtered", filteredCount,
		"imported", importResult.Imported(),
		"skipped", importResult.Skipped())

	return &Result{
		Status:             "success",
		Message:            message,
		FilterCriteria:     criteria,
		ProductsFound:      found,
		ProductsFiltered:   filteredCount,
		ProductsImported:   importResult.Imported(),
		ImportedProductIDs: importResult.ImportedIDs,
	}
}

// resolveCriteria parses and validates free-text filter requirements. A nil
// criteria with nil result means no filtering was requested.
func (s *Service) resolveCriteria(ctx context.Context, filterText string) (*model.FilterCriteria, *Result) {
	if filterText == "" {
		return nil, nil
	}

	criteria, err := s.criteria.Parse(ctx, filterText)
	if err != nil {
		var parseErr *intent.ParseError
		if errors.As(err, &parseErr) {
			return nil, errorResult(ErrorIntentParsingFailed,
				fmt.Sprintf("could not understand the filter criteria: %s", parseErr.Reason))
		}
		return nil, s.executionError("parse filter criteria", err)
	}

	if result := checkPlatforms(criteria); result != nil {
		return nil, result
	}

	valid, reason := s.validator.Validate(ctx, filterText, criteria)
	if !valid {
		if reason == "" {
			reason = "the extracted criteria do not match your request"
		}
		r := errorResult(ErrorCriteriaValidationFailed, reason)
		r.ExtractedCriteria = criteria
		return nil, r
	}

	return criteria, nil
}

// checkPlatforms rejects a criteria set that names any disabled platform,
// suggesting the enabled ones it also named, or the defaults when none
// remain.
func checkPlatforms(criteria *model.FilterCriteria) *Result {
	if len(criteria.Platforms) == 0 {
		return nil
	}

	var disabled []model.Platform
	for _, p := range criteria.Platforms {
		if !p.Enabled() {
			disabled = append(disabled, p)
		}
	}
	if len(disabled) == 0 {
		return nil
	}

	suggested := criteria.EnabledPlatforms()
	if len(suggested) == 0 {
		suggested = model.DefaultPlatforms
	}

	names := make([]string, len(disabled))
	for i, p := range disabled {
		names[i] = string(p)
	}

	r := errorResult(ErrorUnsupportedPlatform,
		fmt.Sprintf("crawling is not available for: %s; try one of the suggested platforms instead", strings.Join(names, ", ")))
	r.SuggestedPlatforms = suggested
	r.ExtractedCriteria = criteria
	return r
}

func (s *Service) executionError(stage string, err error) *Result {
	s.logger.Error("discovery stage failed",
		"stage", stage,
		"error", err)
	return errorResult(ErrorExecutionError,
		fmt.Sprintf("discovery failed during %s: %v", stage, err))
}
