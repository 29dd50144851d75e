// Package filter applies structured criteria to normalized products. Matching
// is a pure predicate with no I/O, so it runs before the ranking model sees
// anything.
package filter

import (
	"strings"

	"prodscout/internal/model"
)

// Apply returns the products that satisfy every set dimension of the
// criteria. A nil or empty criteria passes everything through.
func Apply(products []model.Product, criteria *model.FilterCriteria) []model.Product {
	if criteria.Empty() {
		return products
	}

	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, criteria) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Matches reports whether a product satisfies all set dimensions. Missing
// product data fails minimum thresholds but passes maximum ones: a product
// with no rating cannot prove it meets a floor, and cannot exceed a ceiling.
func Matches(p model.Product, c *model.FilterCriteria) bool {
	if c == nil {
		return true
	}

	if c.MinRating != nil {
		if p.Rating == nil || *p.Rating < *c.MinRating {
			return false
		}
	}
	if c.MaxRating != nil {
		if p.Rating != nil && *p.Rating > *c.MaxRating {
			return false
		}
	}

	if c.MinReviewCount != nil {
		if p.ReviewCount == nil || *p.ReviewCount < *c.MinReviewCount {
			return false
		}
	}
	if c.MaxReviewCount != nil {
		if p.ReviewCount != nil && *p.ReviewCount > *c.MaxReviewCount {
			return false
		}
	}

	if c.MinPrice != nil && p.Price < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && p.Price > *c.MaxPrice {
		return false
	}

	if len(c.Platforms) > 0 && !containsPlatform(c.Platforms, p.Platform) {
		return false
	}

	if c.IsMall != nil && p.IsMall != *c.IsMall {
		return false
	}
	if c.IsVerifiedSeller != nil && p.IsVerifiedSeller != *c.IsVerifiedSeller {
		return false
	}

	if len(c.RequiredKeywords) > 0 {
		name := strings.ToLower(p.Name)
		for _, kw := range c.RequiredKeywords {
			if !strings.Contains(name, strings.ToLower(kw)) {
				return false
			}
		}
	}
	if len(c.ExcludedKeywords) > 0 {
		name := strings.ToLower(p.Name)
		for _, kw := range c.ExcludedKeywords {
			if strings.Contains(name, strings.ToLower(kw)) {
				return false
			}
		}
	}

	if c.MinSalesCount != nil {
		if p.SalesCount == nil || *p.SalesCount < *c.MinSalesCount {
			return false
		}
	}

	if c.MinTrustScore != nil {
		if p.TrustScore == nil || *p.TrustScore < *c.MinTrustScore {
			return false
		}
	}

	if len(c.TrustBadgeTypes) > 0 {
		if p.TrustBadge == "" || !containsString(c.TrustBadgeTypes, p.TrustBadge) {
			return false
		}
	}

	if len(c.RequiredBrands) > 0 {
		if p.Brand == "" || !containsString(c.RequiredBrands, p.Brand) {
			return false
		}
	}
	if len(c.ExcludedBrands) > 0 {
		if p.Brand != "" && containsString(c.ExcludedBrands, p.Brand) {
			return false
		}
	}

	if len(c.SellerLocations) > 0 {
		if p.SellerLocation == "" || !containsString(c.SellerLocations, p.SellerLocation) {
			return false
		}
	}

	return true
}

func containsPlatform(haystack []model.Platform, needle model.Platform) bool {
	for _, p := range haystack {
		if p == needle {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
