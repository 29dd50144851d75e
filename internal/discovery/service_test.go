package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodscout/internal/common"
	"prodscout/internal/crawl"
	"prodscout/internal/intent"
	"prodscout/internal/model"
	"prodscout/internal/search"
	"prodscout/internal/service"
)

type mockIntentParser struct {
	parsed intent.Parsed
	err    error
}

func (m *mockIntentParser) ParseUserInput(_ context.Context, _ string, _ *model.Project) (intent.Parsed, error) {
	return m.parsed, m.err
}

type mockCriteriaParser struct {
	criteria *model.FilterCriteria
	err      error
	calls    int
}

func (m *mockCriteriaParser) Parse(_ context.Context, _ string) (*model.FilterCriteria, error) {
	m.calls++
	return m.criteria, m.err
}

type mockValidator struct {
	valid  bool
	reason string
}

func (m *mockValidator) Validate(_ context.Context, _ string, _ *model.FilterCriteria) (bool, string) {
	return m.valid, m.reason
}

type mockSearchAgent struct {
	links []string
	err   error
	limit int
}

func (m *mockSearchAgent) SearchLinks(_ context.Context, _ *model.Project, _ string, _ []model.Platform, limit int) ([]string, error) {
	m.limit = limit
	return m.links, m.err
}

type mockCrawler struct {
	products []model.Product
	err      error
	capacity int
}

func (m *mockCrawler) Crawl(_ context.Context, _ []string, budget *crawl.Budget) ([]model.Product, error) {
	m.capacity = budget.Capacity()
	return m.products, m.err
}

type mockRanker struct {
	calls int
}

func (m *mockRanker) RankAndSelect(_ context.Context, products []model.Product, _ string, _ *model.FilterCriteria, limit int) []model.Product {
	m.calls++
	if len(products) > limit {
		return products[:limit]
	}
	return products
}

type mockStorage struct {
	project      *model.Project
	projectErr   error
	importResult service.ImportResult
	importErr    error
	imported     []model.Product
}

func (m *mockStorage) SaveProject(context.Context, *model.Project) error { return nil }

func (m *mockStorage) GetProject(context.Context, string) (*model.Project, error) {
	if m.projectErr != nil {
		return nil, m.projectErr
	}
	return m.project, nil
}

func (m *mockStorage) ListProjects(context.Context) ([]model.Project, error) { return nil, nil }

func (m *mockStorage) ImportProducts(_ context.Context, _ string, products []model.Product) (service.ImportResult, error) {
	m.imported = products
	if m.importErr != nil {
		return service.ImportResult{}, m.importErr
	}
	return m.importResult, nil
}

func (m *mockStorage) ListProducts(context.Context, string) ([]model.Product, error) { return nil, nil }
func (m *mockStorage) GetProduct(context.Context, string) (*model.Product, error)    { return nil, nil }
func (m *mockStorage) SaveTasks(context.Context, string, []model.MarketingTask) error {
	return nil
}
func (m *mockStorage) ListTasks(context.Context, string) ([]model.MarketingTask, error) {
	return nil, nil
}
func (m *mockStorage) Migrate(context.Context) error { return nil }
func (m *mockStorage) Close() error                  { return nil }

type pipeline struct {
	intentParser *mockIntentParser
	criteria     *mockCriteriaParser
	validator    *mockValidator
	searcher     *mockSearchAgent
	crawler      *mockCrawler
	ranker       *mockRanker
	storage      *mockStorage
}

func crawledProducts(n int) []model.Product {
	products := make([]model.Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, model.Product{
			Name:     fmt.Sprintf("Product %d", i),
			URL:      fmt.Sprintf("https://tiki.vn/product-p%d.html", i),
			Price:    float64(10000 * (i + 1)),
			Platform: model.PlatformTiki,
		})
	}
	return products
}

func importedIDs(n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, fmt.Sprintf("id-%d", i))
	}
	return ids
}

// healthyPipeline wires mocks for a run that crawls 6 products and imports
// all of them.
func healthyPipeline() *pipeline {
	products := crawledProducts(6)
	return &pipeline{
		intentParser: &mockIntentParser{parsed: intent.Parsed{Query: "cà phê hòa tan", MaxProducts: 10}},
		criteria:     &mockCriteriaParser{criteria: &model.FilterCriteria{}},
		validator:    &mockValidator{valid: true},
		searcher: &mockSearchAgent{links: []string{
			"https://tiki.vn/search?q=c%C3%A0+ph%C3%AA",
			"https://www.lazada.vn/catalog/?q=c%C3%A0+ph%C3%AA",
		}},
		crawler: &mockCrawler{products: products},
		ranker:  &mockRanker{},
		storage: &mockStorage{
			project:      &model.Project{ID: "proj-1", Name: "Coffee", TargetProductName: "cà phê hòa tan"},
			importResult: service.ImportResult{ImportedIDs: importedIDs(len(products))},
		},
	}
}

func (p *pipeline) service() *Service {
	return NewService(p.intentParser, p.criteria, p.validator, p.searcher, p.crawler, p.ranker, p.storage, nil)
}

func TestRunFromNaturalLanguageSuccess(t *testing.T) {
	p := healthyPipeline()

	result := p.service().RunFromNaturalLanguage(context.Background(), "proj-1", "tìm cà phê hòa tan bán chạy")
	require.True(t, result.Success())
	assert.Equal(t, 6, result.ProductsFound)
	assert.Equal(t, 6, result.ProductsFiltered)
	assert.Equal(t, 6, result.ProductsImported)
	assert.Len(t, result.ImportedProductIDs, 6)
	assert.Contains(t, result.Message, "imported 6 products")
	assert.Empty(t, result.ErrorType)
}

func TestRunFromNaturalLanguageEmptyInput(t *testing.T) {
	p := healthyPipeline()

	result := p.service().RunFromNaturalLanguage(context.Background(), "proj-1", "   ")
	assert.False(t, result.Success())
	assert.Equal(t, ErrorInvalidInput, result.ErrorType)
}

func TestRunFromNaturalLanguageInputTooLong(t *testing.T) {
	p := healthyPipeline()
	input := strings.Repeat("à", intent.MaxInputRunes+1)

	result := p.service().RunFromNaturalLanguage(context.Background(), "proj-1", input)
	assert.Equal(t, ErrorInputTooLong, result.ErrorType)
}

func TestRunFromNaturalLanguageProjectNotFound(t *testing.T) {
	p := healthyPipeline()
	p.storage.projectErr = fmt.Errorf("project %q: %w", "proj-1", common.ErrNotFound)

	result := p.service().RunFromNaturalLanguage(context.Background(), "proj-1", "tìm cà phê")
	assert.Equal(t, ErrorProjectNotFound, result.ErrorType)
}

func TestRunFromNaturalLanguageProjectLoadFails(t *testing.T) {
	p := healthyPipeline()
	p.storage.projectErr = errors.New("database is locked")

	result := p.service().RunFromNaturalLanguage(context.Background(), "proj-1", "tìm cà phê")
	assert.Equal(t, ErrorExecutionError, result.ErrorType)
}

func TestRunFromNaturalLanguageProjectIncomplete(t *testing.T) {
	p := healthyPipeline()
	p.storage.project = &model.Project{ID: "proj-1", Name: "Empty"}

	result := p.service().RunFromNaturalLanguage(context.Background(), "proj-1", "tìm cà phê")
	assert.Equal(t, ErrorProjectIncomplete, result.ErrorType)
}

func TestRunFromNaturalLanguageParseFailureClassification(t *testing.T) {
	t.Run("garbled input is parsing_failed", func(t *testing.T) {
		p := healthyPipeline()
		p.intentParser.err = &intent.ParseError{Raw: "???", Reason: "response was not valid JSON"}

		result := p.service().RunFromNaturalLanguage(context.Background(), "proj-1", "asdf qwerty")
		assert.Equal(t, ErrorParsingFailed, result.ErrorType)
		assert.Contains(t, result.Message, "response was not valid JSON")
	})

	t.Run("transport failure is execution_error", func(t *testing.T) {
		p := healthyPipeline()
		p.intentParser.err = errors.New("connection refused")

		result := p.service().RunFromNaturalLanguage(context.Background(), "proj-1", "tìm cà phê")
		assert.Equal(t, ErrorExecutionError, result.ErrorType)
	})
}

func TestRunEmptyQuery(t *testing.T) {
	p := healthyPipeline()

	result := p.service().Run(context.Background(), "proj-1", "  ", "", 5)
	assert.Equal(t, ErrorInvalidInput, result.ErrorType)
}

func TestRunRejectsOutOfRangeMaxProducts(t *testing.T) {
	for _, maxProducts := range []int{0, -5, crawl.MaxCrawlProducts + 1, 100} {
		p := healthyPipeline()

		result := p.service().Run(context.Background(), "proj-1", "cà phê", "", maxProducts)
		require.False(t, result.Success())
		assert.Equal(t, ErrorInvalidInput, result.ErrorType)
		assert.Contains(t, result.Message, "max products")
	}
}

func TestRunAcceptsBoundaryMaxProducts(t *testing.T) {
	for _, maxProducts := range []int{1, crawl.MaxCrawlProducts} {
		p := healthyPipeline()

		result := p.service().Run(context.Background(), "proj-1", "cà phê", "", maxProducts)
		require.True(t, result.Success())
		assert.Equal(t, maxProducts*2, p.searcher.limit)
	}
}

func TestRunSkipsCriteriaStageWithoutFilterText(t *testing.T) {
	p := healthyPipeline()

	result := p.service().Run(context.Background(), "proj-1", "cà phê", "", 10)
	require.True(t, result.Success())
	assert.Zero(t, p.criteria.calls)
	assert.Nil(t, result.FilterCriteria)
}

func TestRunCriteriaParseFailureClassification(t *testing.T) {
	t.Run("parse error is intent_parsing_failed", func(t *testing.T) {
		p := healthyPipeline()
		p.criteria.err = &intent.ParseError{Raw: "{}", Reason: "no criteria could be extracted"}

		result := p.service().Run(context.Background(), "proj-1", "cà phê", "rating cao", 10)
		assert.Equal(t, ErrorIntentParsingFailed, result.ErrorType)
	})

	t.Run("transport failure is execution_error", func(t *testing.T) {
		p := healthyPipeline()
		p.criteria.err = errors.New("connection reset")

		result := p.service().Run(context.Background(), "proj-1", "cà phê", "rating cao", 10)
		assert.Equal(t, ErrorExecutionError, result.ErrorType)
	})
}

func TestRunRejectsDisabledPlatform(t *testing.T) {
	p := healthyPipeline()
	p.criteria.criteria = &model.FilterCriteria{
		Platforms: []model.Platform{model.PlatformShopee, model.PlatformTiki},
	}

	result := p.service().Run(context.Background(), "proj-1", "cà phê", "chỉ shopee và tiki", 10)
	assert.Equal(t, ErrorUnsupportedPlatform, result.ErrorType)
	assert.Contains(t, result.Message, "shopee")
	// The enabled platform the user also asked for is suggested back.
	assert.Equal(t, []model.Platform{model.PlatformTiki}, result.SuggestedPlatforms)
	assert.NotNil(t, result.ExtractedCriteria)
}

func TestRunSuggestsDefaultsWhenOnlyDisabledPlatformsRequested(t *testing.T) {
	p := healthyPipeline()
	p.criteria.criteria = &model.FilterCriteria{
		Platforms: []model.Platform{model.PlatformShopee},
	}

	result := p.service().Run(context.Background(), "proj-1", "cà phê", "chỉ shopee", 10)
	assert.Equal(t, ErrorUnsupportedPlatform, result.ErrorType)
	assert.Equal(t, model.DefaultPlatforms, result.SuggestedPlatforms)
	assert.NotEmpty(t, result.SuggestedPlatforms)
}

func TestRunCriteriaValidationFailed(t *testing.T) {
	p := healthyPipeline()
	minRating := 4.5
	p.criteria.criteria = &model.FilterCriteria{MinRating: &minRating}
	p.validator.valid = false
	p.validator.reason = "the extracted minimum rating does not match the request"

	result := p.service().Run(context.Background(), "proj-1", "cà phê", "rating trên 4", 10)
	assert.Equal(t, ErrorCriteriaValidationFailed, result.ErrorType)
	assert.Contains(t, result.Message, "minimum rating")
	assert.NotNil(t, result.ExtractedCriteria)
}

func TestRunSearchFailureClassification(t *testing.T) {
	t.Run("no recommendations is no_products_found", func(t *testing.T) {
		p := healthyPipeline()
		p.searcher.links = nil
		p.searcher.err = fmt.Errorf("%w for query %q", search.ErrNoRecommendations, "cà phê")

		result := p.service().Run(context.Background(), "proj-1", "cà phê", "", 10)
		assert.Equal(t, ErrorNoProductsFound, result.ErrorType)
	})

	t.Run("transport failure is execution_error", func(t *testing.T) {
		p := healthyPipeline()
		p.searcher.err = errors.New("model unavailable")

		result := p.service().Run(context.Background(), "proj-1", "cà phê", "", 10)
		assert.Equal(t, ErrorExecutionError, result.ErrorType)
	})
}

func TestRunCrawlFailures(t *testing.T) {
	t.Run("crawler error is execution_error", func(t *testing.T) {
		p := healthyPipeline()
		p.crawler.products = nil
		p.crawler.err = errors.New("all scrapers failed")

		result := p.service().Run(context.Background(), "proj-1", "cà phê", "", 10)
		assert.Equal(t, ErrorExecutionError, result.ErrorType)
	})

	t.Run("zero crawled products is crawl_failed", func(t *testing.T) {
		p := healthyPipeline()
		p.crawler.products = nil

		result := p.service().Run(context.Background(), "proj-1", "cà phê", "", 10)
		assert.Equal(t, ErrorCrawlFailed, result.ErrorType)
	})
}

func TestRunCrawlBudgetIsAlwaysTheHardCap(t *testing.T) {
	p := healthyPipeline()

	result := p.service().Run(context.Background(), "proj-1", "cà phê", "", 3)
	require.True(t, result.Success())
	assert.Equal(t, crawl.MaxCrawlProducts, p.crawler.capacity)
}

func TestRunAllProductsFilteredOut(t *testing.T) {
	p := healthyPipeline()
	minRating := 4.9
	p.criteria.criteria = &model.FilterCriteria{MinRating: &minRating}

	// None of the crawled products carries a rating, so the minimum fails all.
	result := p.service().Run(context.Background(), "proj-1", "cà phê", "rating trên 4.9", 10)
	assert.Equal(t, ErrorNoProductsAfterFilter, result.ErrorType)
	assert.Equal(t, 6, result.ProductsFound)
	assert.Zero(t, result.ProductsImported)
}

func TestRunRanksOnlyWhenOverLimit(t *testing.T) {
	t.Run("under limit skips ranking", func(t *testing.T) {
		p := healthyPipeline()

		result := p.service().Run(context.Background(), "proj-1", "cà phê", "", 10)
		require.True(t, result.Success())
		assert.Zero(t, p.ranker.calls)
	})

	t.Run("over limit ranks down to the limit", func(t *testing.T) {
		p := healthyPipeline()
		p.crawler.products = crawledProducts(15)
		p.storage.importResult = service.ImportResult{ImportedIDs: importedIDs(5)}

		result := p.service().Run(context.Background(), "proj-1", "cà phê", "", 5)
		require.True(t, result.Success())
		assert.Equal(t, 1, p.ranker.calls)
		assert.Len(t, p.storage.imported, 5)
		assert.Equal(t, 15, result.ProductsFound)
		assert.Equal(t, 15, result.ProductsFiltered)
		assert.Equal(t, 5, result.ProductsImported)
	})
}

func TestRunImportFailures(t *testing.T) {
	t.Run("storage error", func(t *testing.T) {
		p := healthyPipeline()
		p.storage.importErr = errors.New("disk full")

		result := p.service().Run(context.Background(), "proj-1", "cà phê", "", 10)
		assert.Equal(t, ErrorImportFailed, result.ErrorType)
		assert.Equal(t, 6, result.ProductsFound)
		assert.Equal(t, 6, result.ProductsFiltered)
	})

	t.Run("everything deduplicated", func(t *testing.T) {
		p := healthyPipeline()
		p.storage.importResult = service.ImportResult{SkippedDuplicates: 6}

		result := p.service().Run(context.Background(), "proj-1", "cà phê", "", 10)
		assert.Equal(t, ErrorImportFailed, result.ErrorType)
	})
}

func TestRunReportsPartialImport(t *testing.T) {
	p := healthyPipeline()
	p.storage.importResult = service.ImportResult{
		ImportedIDs:       importedIDs(4),
		SkippedDuplicates: 2,
	}

	result := p.service().Run(context.Background(), "proj-1", "cà phê", "", 10)
	require.True(t, result.Success())
	assert.Equal(t, 4, result.ProductsImported)
	assert.Contains(t, result.Message, "imported 4 products")
	assert.Contains(t, result.Message, "2 skipped")
}
