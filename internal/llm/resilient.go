package llm

import (
	"context"
	"log/slog"
	"time"

	"prodscout/internal/common"
	"prodscout/internal/service"
)

// Resilient wraps a provider client with retry, backoff, and rate limiting.
// It is stateless across calls beyond its configuration and limiter tokens.
type Resilient struct {
	client      Client
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// NewResilient wraps the given client with the resilience layer.
func NewResilient(client Client, cfg Config) *Resilient {
	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = 2 * time.Second
	}

	return &Resilient{
		client:      client,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

// Generate issues the request, retrying transient failures with exponential
// backoff. Fatal errors propagate immediately; exhausting every attempt
// surfaces the last error.
func (r *Resilient) Generate(ctx context.Context, req Request) (Response, error) {
	if err := r.rateLimiter.wait(ctx); err != nil {
		return Response{}, err
	}

	var resp Response
	err := common.WithRetry(ctx, func() error {
		callCtx := ctx
		if req.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, req.Timeout)
			defer cancel()
		}

		out, genErr := r.client.Generate(callCtx, req)
		if genErr != nil {
			retryable := IsRetryable(genErr)
			if !retryable {
				slog.Debug("model call failed with non-retryable error", "error", genErr)
			}
			return &common.RetryableError{Err: genErr, Retryable: retryable}
		}
		resp = out
		return nil
	}, r.retryOpts)

	return resp, err
}

// Close releases the rate limiter.
func (r *Resilient) Close() error {
	if r.rateLimiter != nil {
		r.rateLimiter.Close()
	}
	return nil
}
