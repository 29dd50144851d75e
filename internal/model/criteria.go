package model

// FilterCriteria is the structured predicate set extracted from free-text
// filter intent. Every dimension is optional; a nil field means the dimension
// is absent and always satisfied. Matching is an AND over present dimensions.
type FilterCriteria struct {
	MinPrice       *float64 `json:"min_price,omitempty"`
	MaxPrice       *float64 `json:"max_price,omitempty"`
	MinRating      *float64 `json:"min_rating,omitempty"`
	MaxRating      *float64 `json:"max_rating,omitempty"`
	MinReviewCount *int     `json:"min_review_count,omitempty"`
	MaxReviewCount *int     `json:"max_review_count,omitempty"`
	MinSalesCount  *int     `json:"min_sales_count,omitempty"`
	MinTrustScore  *float64 `json:"min_trust_score,omitempty"`

	IsMall           *bool `json:"is_mall,omitempty"`
	IsVerifiedSeller *bool `json:"is_verified_seller,omitempty"`

	Platforms        []Platform `json:"platforms,omitempty"`
	RequiredKeywords []string   `json:"required_keywords,omitempty"`
	ExcludedKeywords []string   `json:"excluded_keywords,omitempty"`
	RequiredBrands   []string   `json:"required_brands,omitempty"`
	ExcludedBrands   []string   `json:"excluded_brands,omitempty"`
	SellerLocations  []string   `json:"seller_locations,omitempty"`
	TrustBadgeTypes  []string   `json:"trust_badge_types,omitempty"`
}

// Empty reports whether no dimension is set at all.
func (c *FilterCriteria) Empty() bool {
	if c == nil {
		return true
	}
	return c.MinPrice == nil && c.MaxPrice == nil &&
		c.MinRating == nil && c.MaxRating == nil &&
		c.MinReviewCount == nil && c.MaxReviewCount == nil &&
		c.MinSalesCount == nil && c.MinTrustScore == nil &&
		c.IsMall == nil && c.IsVerifiedSeller == nil &&
		len(c.Platforms) == 0 &&
		len(c.RequiredKeywords) == 0 && len(c.ExcludedKeywords) == 0 &&
		len(c.RequiredBrands) == 0 && len(c.ExcludedBrands) == 0 &&
		len(c.SellerLocations) == 0 && len(c.TrustBadgeTypes) == 0
}

// EnabledPlatforms returns the requested platforms that are not
// administratively disabled.
func (c *FilterCriteria) EnabledPlatforms() []Platform {
	if c == nil {
		return nil
	}
	var out []Platform
	for _, p := range c.Platforms {
		if p.Enabled() {
			out = append(out, p)
		}
	}
	return out
}
