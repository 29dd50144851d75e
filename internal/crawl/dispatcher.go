package crawl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"prodscout/internal/model"
)

// MaxCrawlProducts is the hard ceiling on candidates fetched in one
// discovery run, across all sources.
const MaxCrawlProducts = 20

// DispatcherConfig holds tuning knobs for the crawl fan-out.
type DispatcherConfig struct {
	// Timeout bounds each scraper call.
	Timeout time.Duration
	// Concurrency limits how many sources are crawled at once.
	Concurrency int
}

// DefaultDispatcherConfig returns the default crawl configuration.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Timeout:     90 * time.Second,
		Concurrency: 4,
	}
}

// Dispatcher crawls a set of source URLs in parallel under a shared budget.
// A failing source is logged and skipped; it never aborts collection from
// the remaining sources.
type Dispatcher struct {
	registry    *Registry
	timeout     time.Duration
	concurrency int
}

// NewDispatcher creates a dispatcher over the given scraper registry.
func NewDispatcher(registry *Registry, cfg DispatcherConfig) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultDispatcherConfig().Timeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultDispatcherConfig().Concurrency
	}
	return &Dispatcher{
		registry:    registry,
		timeout:     cfg.Timeout,
		concurrency: cfg.Concurrency,
	}
}

// Crawl fetches candidates from every URL, normalized and bounded by the
// budget. Each source gets a quota of max(1, capacity/len(urls)), further
// capped by whatever remains globally. Returns whatever was collected plus
// the caller's context error, if any.
func (d *Dispatcher) Crawl(ctx context.Context, urls []string, budget *Budget) ([]model.Product, error) {
	urls = dedupe(urls)
	if len(urls) == 0 || budget.Remaining() == 0 {
		return nil, ctx.Err()
	}

	perURL := budget.Capacity() / len(urls)
	if perURL < 1 {
		perURL = 1
	}

	var mu sync.Mutex
	var products []model.Product

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, sourceURL := range urls {
		g.Go(func() error {
			grant := budget.Take(perURL)
			if grant == 0 {
				return nil
			}

			scraper, err := d.registry.Resolve(sourceURL)
			if err != nil {
				budget.Refund(grant)
				slog.Warn("skipping crawl source", "url", sourceURL, "error", err)
				return nil
			}

			callCtx, cancel := context.WithTimeout(gctx, d.timeout)
			defer cancel()

			items, err := scraper.CrawlSearchResults(callCtx, sourceURL, grant)
			if err != nil {
				budget.Refund(grant)
				slog.Warn("crawl source failed, skipping",
					"url", sourceURL,
					"platform", scraper.Platform(),
					"error", err)
				return nil
			}

			// A misbehaving scraper must not blow the budget.
			if len(items) > grant {
				items = items[:grant]
			}
			if len(items) < grant {
				budget.Refund(grant - len(items))
			}

			normalized := make([]model.Product, 0, len(items))
			for _, item := range items {
				normalized = append(normalized, Normalize(item, sourceURL))
			}

			mu.Lock()
			products = append(products, normalized...)
			mu.Unlock()

			slog.Debug("crawled source",
				"url", sourceURL,
				"platform", scraper.Platform(),
				"items", len(items))
			return nil
		})
	}

	// Workers swallow per-source errors, so Wait only surfaces ctx
	// cancellation.
	err := g.Wait()
	return products, err
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	var out []string
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
