package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodscout/internal/model"
)

func TestFilterParserExtractsCriteria(t *testing.T) {
	client := &mockClient{responses: []string{
		`{"min_rating": 4.5, "max_price": 500000, "platforms": ["lazada", "tiki"]}`,
	}}

	criteria, err := NewFilterParser(client).Parse(context.Background(), "rating trên 4.5, giá dưới 500000, trên lazada và tiki")

	require.NoError(t, err)
	require.NotNil(t, criteria.MinRating)
	assert.InDelta(t, 4.5, *criteria.MinRating, 0.001)
	require.NotNil(t, criteria.MaxPrice)
	assert.InDelta(t, 500000, *criteria.MaxPrice, 0.001)
	assert.Equal(t, []model.Platform{model.PlatformLazada, model.PlatformTiki}, criteria.Platforms)
}

func TestFilterParserDropsUnknownPlatforms(t *testing.T) {
	client := &mockClient{responses: []string{
		`{"min_rating": 4.0, "platforms": ["lazada", "amazon"]}`,
	}}

	criteria, err := NewFilterParser(client).Parse(context.Background(), "rating 4+ trên lazada hoặc amazon")

	require.NoError(t, err)
	assert.Equal(t, []model.Platform{model.PlatformLazada}, criteria.Platforms)
}

func TestFilterParserEmptyCriteriaIsParseError(t *testing.T) {
	client := &mockClient{responses: []string{`{}`}}

	_, err := NewFilterParser(client).Parse(context.Background(), "something vague")

	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestFilterParserKeepsDisabledPlatform(t *testing.T) {
	// The parser reports what the user asked for; platform availability is
	// the orchestrator's call.
	client := &mockClient{responses: []string{`{"platforms": ["shopee"]}`}}

	criteria, err := NewFilterParser(client).Parse(context.Background(), "chỉ trên shopee")

	require.NoError(t, err)
	assert.Equal(t, []model.Platform{model.PlatformShopee}, criteria.Platforms)
}

func TestValidatorAcceptsPositiveVerdict(t *testing.T) {
	client := &mockClient{responses: []string{`{"is_valid": true}`}}
	minRating := 4.5

	valid, reason := NewValidator(client).Validate(context.Background(),
		"rating trên 4.5", &model.FilterCriteria{MinRating: &minRating})

	assert.True(t, valid)
	assert.Empty(t, reason)
}

func TestValidatorRejectsWithReason(t *testing.T) {
	client := &mockClient{responses: []string{
		`{"is_valid": false, "reason": "the criteria is missing the price bound"}`,
	}}
	minRating := 4.5

	valid, reason := NewValidator(client).Validate(context.Background(),
		"rating trên 4.5 và giá dưới 500k", &model.FilterCriteria{MinRating: &minRating})

	assert.False(t, valid)
	assert.Equal(t, "the criteria is missing the price bound", reason)
}

func TestValidatorTransportFailureIsInvalid(t *testing.T) {
	client := &mockClient{err: errors.New("connection refused")}

	valid, reason := NewValidator(client).Validate(context.Background(),
		"rating trên 4.5", &model.FilterCriteria{})

	assert.False(t, valid)
	assert.NotEmpty(t, reason)
}

func TestValidatorGarbledVerdictIsInvalid(t *testing.T) {
	client := &mockClient{responses: []string{`looks fine to me`}}

	valid, _ := NewValidator(client).Validate(context.Background(),
		"rating trên 4.5", &model.FilterCriteria{})

	assert.False(t, valid)
}
