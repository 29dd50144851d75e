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

const shopeeImageHost = "https://down-ws-vn.img.susercontent.com"

// ShopeeScraper crawls shopee.vn through its public search and ratings
// endpoints. The platform is currently disabled at the model layer, but the
// scraper stays wired so a config flip re-enables it.
type ShopeeScraper struct {
	httpClient *http.Client
	baseURL    string
}

func NewShopeeScraper(httpClient *http.Client) *ShopeeScraper {
	return &ShopeeScraper{
		httpClient: httpClient,
		baseURL:    "https://shopee.vn",
	}
}

func (s *ShopeeScraper) Platform() model.Platform {
	return model.PlatformShopee
}

type shopeeSearchResponse struct {
	Items []struct {
		ItemBasic struct {
			ItemID         int64  `json:"itemid"`
			ShopID         int64  `json:"shopid"`
			Name           string `json:"name"`
			Image          string `json:"image"`
			Price          int64  `json:"price"`
			Sold           int    `json:"sold"`
			HistoricalSold int    `json:"historical_sold"`
			ItemRating     struct {
				RatingStar float64 `json:"rating_star"`
			} `json:"item_rating"`
		} `json:"item_basic"`
	} `json:"items"`
}

var shopeeSlugPattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// CrawlSearchResults queries the Shopee search API. Prices arrive in micro
// units and are divided by 100000 into dong.
func (s *ShopeeScraper) CrawlSearchResults(ctx context.Context, searchURL string, limit int) ([]model.CrawledItem, error) {
	query := searchURL
	if parsed, err := url.Parse(searchURL); err == nil {
		if kw := parsed.Query().Get("keyword"); kw != "" {
			query = kw
		}
	}

	params := url.Values{
		"by":        {"relevancy"},
		"keyword":   {query},
		"limit":     {strconv.Itoa(limit)},
		"newest":    {"0"},
		"order":     {"desc"},
		"page_type": {"search"},
		"scenario":  {"PAGE_GLOBAL_SEARCH"},
		"version":   {"2"},
	}

	body, err := s.get(ctx, s.baseURL+"/api/v4/search/search_items?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var payload shopeeSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var items []model.CrawledItem
	for _, wrapper := range payload.Items {
		if len(items) >= limit {
			break
		}
		basic := wrapper.ItemBasic
		if basic.Name == "" {
			continue
		}

		slug := shopeeSlugPattern.ReplaceAllString(basic.Name, "-")
		if slug == "" {
			slug = "product"
		}
		link := fmt.Sprintf("%s/%s-i.%d.%d", s.baseURL, slug, basic.ShopID, basic.ItemID)

		var image string
		if basic.Image != "" {
			image = shopeeImageHost + "/" + basic.Image
		}

		sold := basic.Sold
		if sold == 0 {
			sold = basic.HistoricalSold
		}

		item := model.CrawledItem{
			Name:     basic.Name,
			Price:    strconv.FormatFloat(float64(basic.Price)/100000.0, 'f', -1, 64),
			Sold:     strconv.Itoa(sold),
			Image:    image,
			Link:     link,
			Platform: model.PlatformShopee,
		}
		if basic.ItemRating.RatingStar > 0 {
			rating := basic.ItemRating.RatingStar
			item.Rating = &rating
		}
		items = append(items, item)
	}

	return items, nil
}

var shopeeIDPattern = regexp.MustCompile(`i\.(\d+)\.(\d+)`)

func extractShopeeIDs(rawURL string) (shopID, itemID string) {
	if m := shopeeIDPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1], m[2]
	}
	return "", ""
}

type shopeeRatingsResponse struct {
	Data struct {
		Ratings []struct {
			AuthorUsername string   `json:"author_username"`
			Anonymous      bool     `json:"anonymous"`
			Comment        string   `json:"comment"`
			RatingStar     float64  `json:"rating_star"`
			CTime          int64    `json:"ctime"`
			Images         []string `json:"images"`
			LikeCount      int      `json:"like_count"`
		} `json:"ratings"`
	} `json:"data"`
}

// CrawlProductDetails pages through the ratings endpoint until reviewLimit
// reviews are collected or the feed runs dry.
func (s *ShopeeScraper) CrawlProductDetails(ctx context.Context, productURL string, reviewLimit int) (model.ProductDetail, error) {
	detail := model.ProductDetail{URL: productURL}

	shopID, itemID := extractShopeeIDs(productURL)
	if shopID == "" || itemID == "" {
		return detail, fmt.Errorf("could not extract shop/item ids from %q", productURL)
	}

	const pageSize = 20
	offset := 0
	for len(detail.Reviews) < reviewLimit {
		params := url.Values{
			"itemid": {itemID},
			"shopid": {shopID},
			"filter": {"0"},
			"flag":   {"1"},
			"limit":  {strconv.Itoa(pageSize)},
			"offset": {strconv.Itoa(offset)},
			"type":   {"0"},
		}

		body, err := s.get(ctx, s.baseURL+"/api/v2/item/get_ratings?"+params.Encode())
		if err != nil {
			if len(detail.Reviews) > 0 {
				break
			}
			return detail, err
		}

		var payload shopeeRatingsResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			break
		}
		if len(payload.Data.Ratings) == 0 {
			break
		}

		for _, r := range payload.Data.Ratings {
			if len(detail.Reviews) >= reviewLimit {
				break
			}

			author := r.AuthorUsername
			if author == "" && r.Anonymous {
				author = "******"
			}
			if author == "" {
				author = "Anonymous"
			}

			images := make([]string, 0, len(r.Images))
			for _, img := range r.Images {
				images = append(images, shopeeImageHost+"/"+img)
			}

			detail.Reviews = append(detail.Reviews, model.Review{
				Author:       author,
				Content:      r.Comment,
				Time:         strconv.FormatInt(r.CTime, 10),
				Images:       images,
				Rating:       r.RatingStar,
				HelpfulCount: r.LikeCount,
			})
		}

		offset += len(payload.Data.Ratings)
	}

	detail.TotalRating = len(detail.Reviews)
	return detail, nil
}

func (s *ShopeeScraper) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	req.Header.Set("Referer", s.baseURL+"/")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopee returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
