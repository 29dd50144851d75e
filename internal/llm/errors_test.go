package llm

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "wrapped deadline", err: fmt.Errorf("call failed: %w", context.DeadlineExceeded), want: true},
		{name: "genai 429", err: genai.APIError{Code: 429, Message: "quota"}, want: true},
		{name: "genai 503", err: genai.APIError{Code: 503, Message: "unavailable"}, want: true},
		{name: "genai 400", err: genai.APIError{Code: 400, Message: "bad request"}, want: false},
		{name: "genai 401", err: genai.APIError{Code: 401, Message: "unauthorized"}, want: false},
		{name: "status 500", err: &APIStatusError{StatusCode: 500, Body: "boom"}, want: true},
		{name: "status 502", err: &APIStatusError{StatusCode: 502, Body: "bad gateway"}, want: true},
		{name: "status 404", err: &APIStatusError{StatusCode: 404, Body: "not found"}, want: false},
		{name: "wrapped status 429", err: fmt.Errorf("request: %w", &APIStatusError{StatusCode: 429}), want: true},
		{name: "connection refused", err: syscall.ECONNREFUSED, want: true},
		{name: "connection reset", err: syscall.ECONNRESET, want: true},
		{name: "host unreachable", err: syscall.EHOSTUNREACH, want: true},
		{name: "opaque rate limit text", err: errors.New("provider said: Rate Limit exceeded"), want: true},
		{name: "opaque overloaded text", err: errors.New("model is overloaded"), want: true},
		{name: "opaque unavailable text", err: errors.New("service temporarily unavailable"), want: true},
		{name: "plain error", err: errors.New("invalid API key"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestRetryableStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		assert.True(t, RetryableStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 501} {
		assert.False(t, RetryableStatus(code), "status %d", code)
	}
}
