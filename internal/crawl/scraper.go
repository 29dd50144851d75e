// Package crawl fans product crawling out across marketplace scrapers under
// a shared hard result budget.
package crawl

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"prodscout/internal/model"
)

// Scraper is the capability contract every marketplace implementation
// satisfies. Field-normalization heuristics live inside each scraper; the
// dispatcher treats them as opaque.
type Scraper interface {
	Platform() model.Platform
	CrawlSearchResults(ctx context.Context, searchURL string, limit int) ([]model.CrawledItem, error)
	CrawlProductDetails(ctx context.Context, productURL string, reviewLimit int) (model.ProductDetail, error)
}

// Registry resolves a source URL to the scraper for its platform.
type Registry struct {
	scrapers map[model.Platform]Scraper
}

// NewRegistry builds a registry from the given scrapers.
func NewRegistry(scrapers ...Scraper) *Registry {
	r := &Registry{scrapers: make(map[model.Platform]Scraper)}
	for _, s := range scrapers {
		r.scrapers[s.Platform()] = s
	}
	return r
}

// DefaultRegistry wires up every known marketplace scraper. renderer may be
// nil; the Lazada scraper then skips its browser-rendered fallback.
func DefaultRegistry(httpClient *http.Client, renderer Renderer) *Registry {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return NewRegistry(
		NewLazadaScraper(httpClient, renderer),
		NewTikiScraper(httpClient),
		NewShopeeScraper(httpClient),
	)
}

// Resolve picks the scraper for a source URL by pattern matching its host.
// Unknown and administratively disabled platforms are errors; the dispatcher
// logs and skips them.
func (r *Registry) Resolve(rawURL string) (Scraper, error) {
	platform := model.DetectPlatform(rawURL)
	if platform == model.PlatformUnknown {
		return nil, fmt.Errorf("no scraper matches URL %q", rawURL)
	}
	if !platform.Enabled() {
		return nil, fmt.Errorf("platform %s is disabled", platform)
	}
	scraper, ok := r.scrapers[platform]
	if !ok {
		return nil, fmt.Errorf("no scraper registered for platform %s", platform)
	}
	return scraper, nil
}
