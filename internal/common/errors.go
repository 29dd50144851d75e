// Package common provides shared utilities used across the application.
package common

import "errors"

// Common application errors.
var (
	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Model backend errors.
	ErrRateLimit  = errors.New("rate limit exceeded")
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}
