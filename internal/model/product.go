package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// CrawledItem is raw scraper output. Third-party listings are heterogeneous,
// so the loosely typed fields (price and sold count as strings) are kept as
// delivered and normalized later.
type CrawledItem struct {
	Name        string
	Price       string
	Sold        string
	Image       string
	Link        string
	Platform    Platform
	Rating      *float64
	ReviewCount *int
}

// Product is a normalized candidate: the unit the filter engine, ranking
// selector, and importer operate on.
type Product struct {
	ImportedAt       time.Time
	ID               string
	ProjectID        string
	Name             string
	URL              string
	Brand            string
	SellerLocation   string
	TrustBadge       string
	Platform         Platform
	Keywords         []string
	Images           []string
	Price            float64
	TrustScore       *float64
	Rating           *float64
	ReviewCount      *int
	SalesCount       *int
	IsMall           bool
	IsVerifiedSeller bool
}

// Review is a single customer review fetched by a detail crawl.
type Review struct {
	Author       string   `json:"author"`
	Content      string   `json:"content"`
	Time         string   `json:"time,omitempty"`
	Images       []string `json:"images,omitempty"`
	Rating       float64  `json:"rating"`
	HelpfulCount int      `json:"helpful_count"`
}

// ProductDetail is the result of crawling a single product page.
type ProductDetail struct {
	URL         string   `json:"url"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Reviews     []Review `json:"reviews"`
	TotalRating int      `json:"total_rating"`
}

// vietnameseStopWords are dropped during keyword extraction.
var vietnameseStopWords = map[string]bool{
	"và": true, "của": true, "cho": true, "với": true, "từ": true,
	"đến": true, "có": true, "là": true, "một": true, "các": true,
	"the": true, "a": true, "an": true,
}

// ExtractKeywords derives up to 10 lowercase keywords from a product name,
// skipping Vietnamese and English stop words and very short tokens.
func ExtractKeywords(name string) []string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		if utf8.RuneCountInString(w) <= 2 || vietnameseStopWords[w] {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == 10 {
			break
		}
	}
	return keywords
}
