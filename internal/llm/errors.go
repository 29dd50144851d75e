package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"google.golang.org/genai"
)

// APIStatusError is returned by HTTP-based providers when the backend
// answers with a non-success status.
type APIStatusError struct {
	Body       string
	StatusCode int
}

func (e *APIStatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// RetryableStatus reports whether an HTTP status indicates a transient
// condition worth retrying.
func RetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// IsRetryable classifies a model-call error as transient or fatal.
//
// Structured signals are checked first: typed API errors carrying a status
// code, and network-level syscall errors. Substring matching is kept only as
// a last-resort heuristic for opaque third-party error strings; it is
// best-effort by nature.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return RetryableStatus(apiErr.Code)
	}

	var statusErr *APIStatusError
	if errors.As(err, &statusErr) {
		return RetryableStatus(statusErr.StatusCode)
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Opaque errors: text matching as a fallback only.
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"rate limit",
		"overloaded",
		"unavailable",
		"no route to host",
		"connection refused",
		"connection reset",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
