package crawl

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"prodscout/internal/model"
)

// Normalize converts raw scraper output into the canonical candidate shape
// the filter engine and ranking selector operate on.
func Normalize(item model.CrawledItem, sourceURL string) model.Product {
	platform := item.Platform
	if platform == model.PlatformUnknown || platform == "" {
		platform = model.DetectPlatform(sourceURL)
	}

	link := item.Link
	if link == "" {
		link = sourceURL
	}

	product := model.Product{
		Platform:    platform,
		Name:        item.Name,
		URL:         link,
		Price:       ParsePrice(item.Price),
		Rating:      item.Rating,
		ReviewCount: item.ReviewCount,
		SalesCount:  ParseSoldCount(item.Sold),
		Keywords:    model.ExtractKeywords(item.Name),
	}
	if item.Image != "" {
		product.Images = []string{item.Image}
	}
	return product
}

// ParsePrice turns a marketplace price string into a non-negative finite
// number. Vietnamese listings separate thousands with dots ("1.290.000đ"),
// so dots are only treated as decimal points when the shape rules that out.
// Unparsable prices normalize to 0, never an error.
func ParsePrice(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	for _, junk := range []string{",", "₫", "đ", "VND", "vnd"} {
		s = strings.ReplaceAll(s, junk, "")
	}
	s = strings.TrimSpace(s)

	if strings.Contains(s, ".") {
		parts := strings.Split(s, ".")
		switch {
		case len(parts) == 2 && len(parts[1]) == 3 && len(parts[0]) >= 1:
			// One dot with a three-digit tail is a thousands separator.
			s = parts[0] + parts[1]
		case len(parts) > 2:
			s = strings.Join(parts, "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ParseSoldCount parses sold-count shorthand like "1.2k" or "3,456" into an
// integer. Unparsable input yields nil.
func ParseSoldCount(raw string) *int {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	if strings.Contains(s, "k") {
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, "k", ""), 64)
		if err == nil {
			n := int(v * 1000)
			return &n
		}
	}

	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	return nil
}

// flexString tolerates JSON fields that marketplaces serve as either a
// string or a number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	// Unparsable shapes (objects, arrays) degrade to empty, not errors.
	*f = ""
	return nil
}

func (f flexString) String() string {
	return string(f)
}
