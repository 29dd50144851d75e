package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"prodscout/internal/model"
)

// LazadaScraper crawls lazada.vn. The catalog exposes an ajax JSON endpoint,
// but it frequently serves a bot-check page instead; the scraper then falls
// back to parsing listing HTML, rendered through a headless browser when one
// is available.
type LazadaScraper struct {
	httpClient *http.Client
	renderer   Renderer
	baseURL    string
}

// NewLazadaScraper creates a Lazada scraper. renderer may be nil.
func NewLazadaScraper(httpClient *http.Client, renderer Renderer) *LazadaScraper {
	return &LazadaScraper{
		httpClient: httpClient,
		renderer:   renderer,
		baseURL:    "https://www.lazada.vn",
	}
}

// Platform identifies the marketplace this scraper serves.
func (s *LazadaScraper) Platform() model.Platform {
	return model.PlatformLazada
}

type lazadaItem struct {
	Name            string     `json:"name"`
	Price           flexString `json:"price"`
	SellVolume      flexString `json:"sellVolume"`
	Review          flexString `json:"review"`
	RatingScore     flexString `json:"ratingScore"`
	Thumb           string     `json:"thumb"`
	ProductURL      string     `json:"productUrl"`
	ItemURL         string     `json:"itemUrl"`
	ProductURLAlias string     `json:"productUrlAlias"`
}

type lazadaSearchPayload struct {
	Mods struct {
		ListItems []lazadaItem `json:"listItems"`
	} `json:"mods"`
	ListItems []lazadaItem `json:"listItems"`
	Items     []lazadaItem `json:"items"`
}

// CrawlSearchResults fetches up to limit listings for the query behind a
// Lazada search URL.
func (s *LazadaScraper) CrawlSearchResults(ctx context.Context, searchURL string, limit int) ([]model.CrawledItem, error) {
	query := extractLazadaQuery(searchURL)
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("no query in search URL %q", searchURL)
	}

	apiURL := fmt.Sprintf("%s/catalog/?_keyori=ss&ajax=true&from=input&q=%s", s.baseURL, url.QueryEscape(query))
	body, err := s.get(ctx, apiURL)
	if err != nil {
		return nil, err
	}

	var payload lazadaSearchPayload
	if jsonErr := json.Unmarshal(body, &payload); jsonErr == nil {
		if items := s.convertPayload(payload, limit); len(items) > 0 {
			return items, nil
		}
	}

	// Not JSON or empty: treat the body as listing HTML.
	if items := s.parseListingHTML(string(body), limit); len(items) > 0 {
		return items, nil
	}

	if s.renderer != nil {
		pageURL := fmt.Sprintf("%s/catalog/?q=%s", s.baseURL, url.QueryEscape(query))
		html, renderErr := s.renderer.RenderHTML(ctx, pageURL)
		if renderErr != nil {
			return nil, fmt.Errorf("rendered fallback failed: %w", renderErr)
		}
		if items := s.parseListingHTML(html, limit); len(items) > 0 {
			return items, nil
		}
	}

	return nil, fmt.Errorf("lazada returned no parsable listings for query %q", query)
}

func (s *LazadaScraper) convertPayload(payload lazadaSearchPayload, limit int) []model.CrawledItem {
	raw := payload.Mods.ListItems
	if len(raw) == 0 {
		raw = payload.ListItems
	}
	if len(raw) == 0 {
		raw = payload.Items
	}

	var items []model.CrawledItem
	for _, p := range raw {
		if len(items) >= limit {
			break
		}

		link := p.ProductURL
		if link == "" {
			link = p.ItemURL
		}
		if link == "" {
			link = p.ProductURLAlias
		}
		link = s.absoluteURL(link)

		sold := p.SellVolume.String()
		if sold == "" {
			sold = p.Review.String()
		}

		item := model.CrawledItem{
			Name:     p.Name,
			Price:    p.Price.String(),
			Sold:     sold,
			Image:    p.Thumb,
			Link:     link,
			Platform: model.PlatformLazada,
		}
		if rating, err := strconv.ParseFloat(p.RatingScore.String(), 64); err == nil {
			item.Rating = &rating
		}
		if review, err := strconv.Atoi(p.Review.String()); err == nil {
			item.ReviewCount = &review
		}
		items = append(items, item)
	}
	return items
}

// parseListingHTML extracts products from a catalog page.
func (s *LazadaScraper) parseListingHTML(html string, limit int) []model.CrawledItem {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var items []model.CrawledItem
	doc.Find(`div[data-qa-locator="product-item"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(items) >= limit {
			return false
		}

		link, _ := sel.Find("a[href]").First().Attr("href")
		link = s.absoluteURL(link)

		name, _ := sel.Find("a[title]").First().Attr("title")
		name = strings.TrimSpace(name)

		price := strings.TrimSpace(sel.Find(`span[class*="ooOxS"]`).First().Text())

		img, _ := sel.Find("img[src]").First().Attr("src")
		img = s.absoluteURL(img)

		if name == "" || link == "" {
			return true
		}
		items = append(items, model.CrawledItem{
			Name:     name,
			Price:    price,
			Image:    img,
			Link:     link,
			Platform: model.PlatformLazada,
		})
		return true
	})
	return items
}

var lazadaItemIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`-i(\d+)\.html`),
	regexp.MustCompile(`-i(\d+)-s`),
	regexp.MustCompile(`itemId=(\d+)`),
	regexp.MustCompile(`pdp-i(\d+)\.html`),
}

func extractLazadaItemID(rawURL string) string {
	for _, p := range lazadaItemIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// CrawlProductDetails fetches a product page and extracts its description
// metadata. Lazada serves reviews from a JS-gated endpoint, so the review
// list stays empty unless a renderer is configured.
func (s *LazadaScraper) CrawlProductDetails(ctx context.Context, productURL string, _ int) (model.ProductDetail, error) {
	detail := model.ProductDetail{URL: productURL}

	if extractLazadaItemID(productURL) == "" {
		return detail, fmt.Errorf("could not extract item id from %q", productURL)
	}

	var html string
	if s.renderer != nil {
		rendered, err := s.renderer.RenderHTML(ctx, productURL)
		if err != nil {
			return detail, fmt.Errorf("failed to render product page: %w", err)
		}
		html = rendered
	} else {
		body, err := s.get(ctx, productURL)
		if err != nil {
			return detail, err
		}
		html = string(body)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return detail, fmt.Errorf("failed to parse product page: %w", err)
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		detail.Description = strings.TrimSpace(desc)
	}
	if detail.Description == "" {
		if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
			detail.Description = strings.TrimSpace(desc)
		}
	}

	return detail, nil
}

func (s *LazadaScraper) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	req.Header.Set("Referer", s.baseURL+"/")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lazada returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// absoluteURL fixes the protocol-relative and path-relative links Lazada
// serves.
func (s *LazadaScraper) absoluteURL(link string) string {
	switch {
	case link == "":
		return ""
	case strings.HasPrefix(link, "//"):
		return "https:" + link
	case strings.HasPrefix(link, "/"):
		return s.baseURL + link
	case !strings.HasPrefix(link, "http"):
		return "https://" + link
	}
	return link
}

// extractLazadaQuery pulls the search query out of a Lazada URL: the q
// parameter on catalog URLs, the slug on tag URLs, otherwise the raw input.
func extractLazadaQuery(searchURL string) string {
	parsed, err := url.Parse(searchURL)
	if err != nil {
		return searchURL
	}

	if q := parsed.Query().Get("q"); q != "" {
		return q
	}

	if idx := strings.Index(parsed.Path, "/tag/"); idx >= 0 {
		tag := strings.Trim(parsed.Path[idx+len("/tag/"):], "/")
		if tag != "" {
			if unescaped, err := url.PathUnescape(tag); err == nil {
				tag = unescaped
			}
			return strings.ReplaceAll(tag, "-", " ")
		}
	}

	return searchURL
}
