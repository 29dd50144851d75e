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

	"prodscout/internal/model"
)

// TikiScraper crawls tiki.vn through its public listing API, which serves
// clean JSON without a browser.
type TikiScraper struct {
	httpClient *http.Client
	baseURL    string
	apiURL     string
}

func NewTikiScraper(httpClient *http.Client) *TikiScraper {
	return &TikiScraper{
		httpClient: httpClient,
		baseURL:    "https://tiki.vn",
		apiURL:     "https://tiki.vn/api/v2",
	}
}

func (s *TikiScraper) Platform() model.Platform {
	return model.PlatformTiki
}

type tikiProduct struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	ThumbnailURL string  `json:"thumbnail_url"`
	URLPath      string  `json:"url_path"`
	RatingAvg    float64 `json:"rating_average"`
	ReviewCount  int     `json:"review_count"`
	QuantitySold struct {
		Value int `json:"value"`
	} `json:"quantity_sold"`
}

type tikiSearchResponse struct {
	Data []tikiProduct `json:"data"`
}

// CrawlSearchResults queries the Tiki product listing API for up to limit
// items.
func (s *TikiScraper) CrawlSearchResults(ctx context.Context, searchURL string, limit int) ([]model.CrawledItem, error) {
	query := searchURL
	if parsed, err := url.Parse(searchURL); err == nil {
		if q := parsed.Query().Get("q"); q != "" {
			query = q
		}
	}

	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
		"page":  {"1"},
	}

	body, err := s.get(ctx, s.apiURL+"/products?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var payload tikiSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var items []model.CrawledItem
	for _, p := range payload.Data {
		if len(items) >= limit {
			break
		}
		if p.Name == "" {
			continue
		}

		link := p.URLPath
		if link != "" {
			link = s.baseURL + "/" + link
		} else {
			link = fmt.Sprintf("%s/p%d.html", s.baseURL, p.ID)
		}

		item := model.CrawledItem{
			Name:     p.Name,
			Price:    strconv.FormatFloat(p.Price, 'f', -1, 64),
			Sold:     strconv.Itoa(p.QuantitySold.Value),
			Image:    p.ThumbnailURL,
			Link:     link,
			Platform: model.PlatformTiki,
		}
		if p.RatingAvg > 0 {
			rating := p.RatingAvg
			item.Rating = &rating
		}
		if p.ReviewCount > 0 {
			count := p.ReviewCount
			item.ReviewCount = &count
		}
		items = append(items, item)
	}

	return items, nil
}

var tikiProductIDPattern = regexp.MustCompile(`-p(\d+)\.html`)

func extractTikiProductID(rawURL string) string {
	if m := tikiProductIDPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}

type tikiDetailResponse struct {
	Description string `json:"description"`
	Categories  struct {
		Name string `json:"name"`
	} `json:"categories"`
	ReviewCount int `json:"review_count"`
}

type tikiReviewsResponse struct {
	Data []struct {
		Content    string  `json:"content"`
		Rating     float64 `json:"rating"`
		ThankCount int     `json:"thank_count"`
		CreatedBy  struct {
			Name string `json:"name"`
		} `json:"created_by"`
		Timeline struct {
			ReviewCreatedDate string `json:"review_created_date"`
		} `json:"timeline"`
		Images []struct {
			FullPath string `json:"full_path"`
		} `json:"images"`
	} `json:"data"`
}

// CrawlProductDetails fetches the product record and its reviews from the
// Tiki APIs.
func (s *TikiScraper) CrawlProductDetails(ctx context.Context, productURL string, reviewLimit int) (model.ProductDetail, error) {
	detail := model.ProductDetail{URL: productURL}

	productID := extractTikiProductID(productURL)
	if productID == "" {
		return detail, fmt.Errorf("could not extract product id from %q", productURL)
	}

	if body, err := s.get(ctx, s.apiURL+"/products/"+productID); err == nil {
		var payload tikiDetailResponse
		if err := json.Unmarshal(body, &payload); err == nil {
			detail.Description = payload.Description
			detail.Category = payload.Categories.Name
			detail.TotalRating = payload.ReviewCount
		}
	}

	params := url.Values{
		"product_id": {productID},
		"limit":      {strconv.Itoa(reviewLimit)},
		"page":       {"1"},
		"sort":       {"score|desc"},
	}
	body, err := s.get(ctx, s.apiURL+"/reviews?"+params.Encode())
	if err != nil {
		return detail, err
	}

	var payload tikiReviewsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return detail, fmt.Errorf("failed to decode reviews response: %w", err)
	}

	for _, r := range payload.Data {
		if len(detail.Reviews) >= reviewLimit {
			break
		}

		author := r.CreatedBy.Name
		if author == "" {
			author = "Anonymous"
		}

		images := make([]string, 0, len(r.Images))
		for _, img := range r.Images {
			if img.FullPath != "" {
				images = append(images, img.FullPath)
			}
		}

		detail.Reviews = append(detail.Reviews, model.Review{
			Author:       author,
			Content:      r.Content,
			Time:         r.Timeline.ReviewCreatedDate,
			Images:       images,
			Rating:       r.Rating,
			HelpfulCount: r.ThankCount,
		})
	}

	return detail, nil
}

func (s *TikiScraper) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tiki returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
