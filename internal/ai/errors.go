package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
)

// ProviderError is the base error for all provider-side failures.
// Every error that crosses the orchestrator boundary is one of the
// concrete kinds below; Classify normalizes anything else.
type ProviderError struct {
	Provider string
	Op       string
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %s: %s: %s: %v", e.Provider, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %s: %s: %s", e.Provider, e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// RateLimitError indicates the provider rejected the call for quota reasons.
// RetryAfter, when non-zero, is the provider-suggested wait.
type RateLimitError struct {
	ProviderError
	RetryAfter time.Duration
}

// NetworkError indicates a transport-level failure (DNS, refused connection, reset)
type NetworkError struct {
	ProviderError
}

// TimeoutError indicates the call was abandoned after exceeding its deadline
type TimeoutError struct {
	ProviderError
	Timeout time.Duration
}

// InvalidResponseError indicates the provider replied but the reply could not
// be parsed or validated. Raw preserves the offending payload for diagnostics.
type InvalidResponseError struct {
	ProviderError
	Raw string
}

// CostLimitError indicates the estimated cost of a request exceeds the configured limit
type CostLimitError struct {
	ProviderError
	EstimatedCost float64
	Limit         float64
}

// InvalidProviderError indicates a provider failed registration validation
type InvalidProviderError struct {
	Name   string
	Reason string
}

func (e *InvalidProviderError) Error() string {
	return fmt.Sprintf("invalid provider %q: %s", e.Name, e.Reason)
}

// ProviderNotFoundError indicates a lookup for an unregistered provider name
type ProviderNotFoundError struct {
	Name string
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("provider %q is not registered", e.Name)
}

// newProviderError builds the shared base for the concrete kinds
func newProviderError(provider, op, message string, cause error) ProviderError {
	return ProviderError{Provider: provider, Op: op, Message: message, Cause: cause}
}

// Classify normalizes an arbitrary error into one of the taxonomy kinds.
// Errors already carrying a kind pass through unchanged. Unknown errors are
// classified by net.Error / googleapi status inspection first, then by
// message pattern, falling back to a generic *ProviderError.
func Classify(provider, op string, err error) error {
	if err == nil {
		return nil
	}

	// Already one of ours
	var (
		rateErr    *RateLimitError
		netErr     *NetworkError
		timeoutErr *TimeoutError
		respErr    *InvalidResponseError
		costErr    *CostLimitError
		provErr    *ProviderError
	)
	switch {
	case errors.As(err, &rateErr), errors.As(err, &netErr), errors.As(err, &timeoutErr),
		errors.As(err, &respErr), errors.As(err, &costErr), errors.As(err, &provErr):
		return err
	}

	// Context deadline means the call was raced against a timer and lost
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{ProviderError: newProviderError(provider, op, "operation deadline exceeded", err)}
	}

	// Transport-level inspection
	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return &TimeoutError{ProviderError: newProviderError(provider, op, "network timeout", err)}
		}
		return &NetworkError{ProviderError: newProviderError(provider, op, "network failure", err)}
	}

	// Google API status codes
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			rl := &RateLimitError{ProviderError: newProviderError(provider, op, "rate limited by API", err)}
			if ra := apiErr.Header.Get("Retry-After"); ra != "" {
				if d, perr := time.ParseDuration(ra + "s"); perr == nil {
					rl.RetryAfter = d
				}
			}
			return rl
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return &NetworkError{ProviderError: newProviderError(provider, op, "upstream unavailable", err)}
		}
	}

	// Message-pattern fallback
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"):
		return &RateLimitError{ProviderError: newProviderError(provider, op, "rate limited", err)}
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return &TimeoutError{ProviderError: newProviderError(provider, op, "operation timed out", err)}
	case strings.Contains(msg, "network"), strings.Contains(msg, "connection refused"):
		return &NetworkError{ProviderError: newProviderError(provider, op, "network failure", err)}
	}

	pe := newProviderError(provider, op, "operation failed", err)
	return &pe
}

// ErrorKind returns a stable label for statistics bucketing
func ErrorKind(err error) string {
	var (
		rateErr    *RateLimitError
		netErr     *NetworkError
		timeoutErr *TimeoutError
		respErr    *InvalidResponseError
		costErr    *CostLimitError
	)
	switch {
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &respErr):
		return "invalid_response"
	case errors.As(err, &costErr):
		return "cost_limit"
	default:
		return "provider"
	}
}
