// Package providers contains one adapter per upstream provider family. Each
// adapter knows its base address, authentication scheme and response shape,
// and normalizes provider payloads into stable provider-agnostic structs.
package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"resty.dev/v3"
)

// Provider family identifiers
const (
	ProviderMarketData = "marketdata"
	ProviderOnchain    = "onchain"
	ProviderDeFi       = "defi"
	ProviderSentiment  = "sentiment"
)

// ProviderError represents a non-success upstream response
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

// TimeoutError indicates an upstream call exceeded its timeout budget
type TimeoutError struct {
	Provider string
	Budget   time.Duration
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s call exceeded %s timeout budget", e.Provider, e.Budget)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// newHTTPClient creates the outbound HTTP client shared by the REST-style
// adapters. Retries are disabled: the gateway contract is a single attempt
// bounded by the per-call timeout budget.
func newHTTPClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
}

// newThrottle builds the outbound courtesy limiter for one provider so a
// hot batch cannot hammer a single upstream
func newThrottle(ratePerSecond float64) *rate.Limiter {
	if ratePerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(ratePerSecond), 1)
}

// classify converts a transport-level or context error into the adapter
// error taxonomy. Deadline expiry becomes a TimeoutError for that call only.
func classify(provider string, budget time.Duration, ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Provider: provider, Budget: budget}
	}
	return &ProviderError{Provider: provider, Message: err.Error()}
}
