package crawl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodscout/internal/model"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{name: "plain integer", raw: "250000", want: 250000},
		{name: "dong sign", raw: "250000₫", want: 250000},
		{name: "d suffix", raw: "250000đ", want: 250000},
		{name: "VND suffix", raw: "250000 VND", want: 250000},
		{name: "comma separators", raw: "1,290,000", want: 1290000},
		{name: "single dot three-digit tail is thousands", raw: "1.290", want: 1290},
		{name: "multiple dots are thousands", raw: "1.290.000đ", want: 1290000},
		{name: "decimal survives", raw: "4.5", want: 4.5},
		{name: "two-digit tail is decimal", raw: "99.99", want: 99.99},
		{name: "empty", raw: "", want: 0},
		{name: "garbage", raw: "liên hệ", want: 0},
		{name: "negative normalizes to zero", raw: "-500", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParsePrice(tt.raw), 0.001)
		})
	}
}

func TestParseSoldCount(t *testing.T) {
	tests := []struct {
		want *int
		name string
		raw  string
	}{
		{name: "plain", raw: "345", want: intPtr(345)},
		{name: "k shorthand", raw: "1.2k", want: intPtr(1200)},
		{name: "whole k", raw: "5k", want: intPtr(5000)},
		{name: "comma separated", raw: "3,456", want: intPtr(3456)},
		{name: "spaces", raw: " 12 ", want: intPtr(12)},
		{name: "empty", raw: "", want: nil},
		{name: "garbage", raw: "đã bán", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSoldCount(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestNormalize(t *testing.T) {
	rating := 4.7
	item := model.CrawledItem{
		Name:     "Cà phê hòa tan G7 3in1",
		Price:    "1.290.000đ",
		Sold:     "1.2k",
		Image:    "https://img.example/1.jpg",
		Link:     "https://www.lazada.vn/products/g7-i123.html",
		Platform: model.PlatformLazada,
		Rating:   &rating,
	}

	p := Normalize(item, "https://www.lazada.vn/catalog/?q=g7")

	assert.Equal(t, model.PlatformLazada, p.Platform)
	assert.Equal(t, "Cà phê hòa tan G7 3in1", p.Name)
	assert.Equal(t, "https://www.lazada.vn/products/g7-i123.html", p.URL)
	assert.InDelta(t, 1290000, p.Price, 0.001)
	require.NotNil(t, p.SalesCount)
	assert.Equal(t, 1200, *p.SalesCount)
	require.NotNil(t, p.Rating)
	assert.InDelta(t, 4.7, *p.Rating, 0.001)
	assert.Equal(t, []string{"https://img.example/1.jpg"}, p.Images)
	assert.NotEmpty(t, p.Keywords)
}

func TestNormalizeFallbacks(t *testing.T) {
	item := model.CrawledItem{Name: "Tai nghe bluetooth"}

	p := Normalize(item, "https://tiki.vn/search?q=tai+nghe")

	// Platform and link fall back to the source URL.
	assert.Equal(t, model.PlatformTiki, p.Platform)
	assert.Equal(t, "https://tiki.vn/search?q=tai+nghe", p.URL)
	assert.Zero(t, p.Price)
	assert.Nil(t, p.SalesCount)
}

func TestFlexStringUnmarshal(t *testing.T) {
	var payload struct {
		Price flexString `json:"price"`
		Sold  flexString `json:"sold"`
		Junk  flexString `json:"junk"`
	}

	input := `{"price": "1.290.000", "sold": 1200, "junk": {"nested": true}}`
	require.NoError(t, json.Unmarshal([]byte(input), &payload))

	assert.Equal(t, "1.290.000", payload.Price.String())
	assert.Equal(t, "1200", payload.Sold.String())
	assert.Equal(t, "", payload.Junk.String())
}

func intPtr(n int) *int { return &n }
