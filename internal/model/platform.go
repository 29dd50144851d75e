package model

import "strings"

// Platform identifies the marketplace a product was discovered on.
type Platform string

// The closed set of platforms the crawler understands.
const (
	PlatformLazada  Platform = "lazada"
	PlatformTiki    Platform = "tiki"
	PlatformShopee  Platform = "shopee"
	PlatformUnknown Platform = "unknown"
)

// AllPlatforms lists every platform in the enum, including disabled ones.
var AllPlatforms = []Platform{PlatformLazada, PlatformTiki, PlatformShopee}

// DisabledPlatforms are administratively switched off: the scraper exists but
// requests restricted to them are rejected with a suggested substitute.
var DisabledPlatforms = map[Platform]bool{
	PlatformShopee: true,
}

// DefaultPlatforms is the substitute set suggested when a request leaves no
// enabled platform.
var DefaultPlatforms = []Platform{PlatformLazada, PlatformTiki}

// ParsePlatform maps a free-form platform name to the enum.
func ParsePlatform(s string) Platform {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lazada":
		return PlatformLazada
	case "tiki":
		return PlatformTiki
	case "shopee":
		return PlatformShopee
	default:
		return PlatformUnknown
	}
}

// DetectPlatform guesses the platform from a product or search URL.
func DetectPlatform(rawURL string) Platform {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, "shopee"):
		return PlatformShopee
	case strings.Contains(lower, "lazada"):
		return PlatformLazada
	case strings.Contains(lower, "tiki"):
		return PlatformTiki
	}
	return PlatformUnknown
}

// Enabled reports whether the platform can currently be crawled.
func (p Platform) Enabled() bool {
	return p != PlatformUnknown && !DisabledPlatforms[p]
}
