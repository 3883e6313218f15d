package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
)

type fakeNetError struct {
	timeout bool
}

func (e *fakeNetError) Error() string   { return "dial tcp: broken pipe" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

func TestClassifyNil(t *testing.T) {
	if Classify("gemini", "review", nil) != nil {
		t.Error("nil error must classify to nil")
	}
}

func TestClassifyPassthrough(t *testing.T) {
	original := &RateLimitError{
		ProviderError: newProviderError("gemini", "review", "quota", nil),
		RetryAfter:    5 * time.Second,
	}
	classified := Classify("other", "modify", original)
	if classified != error(original) {
		t.Error("already-classified errors must pass through unchanged")
	}

	// Wrapped taxonomy errors also pass through
	wrapped := fmt.Errorf("call failed: %w", original)
	if Classify("other", "modify", wrapped) != error(wrapped) {
		t.Error("wrapped taxonomy errors must pass through unchanged")
	}
}

func TestClassifyDeadlineExceeded(t *testing.T) {
	err := Classify("gemini", "review", context.DeadlineExceeded)
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *TimeoutError, got %T", err)
	}
	if timeoutErr.Provider != "gemini" || timeoutErr.Op != "review" {
		t.Errorf("provider/op not recorded: %+v", timeoutErr.ProviderError)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("cause chain must be preserved")
	}
}

func TestClassifyNetError(t *testing.T) {
	err := Classify("gemini", "review", &fakeNetError{timeout: false})
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Errorf("expected *NetworkError, got %T", err)
	}

	err = Classify("gemini", "review", &fakeNetError{timeout: true})
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Errorf("expected *TimeoutError for timing-out net.Error, got %T", err)
	}
}

func TestClassifyGoogleAPIStatusCodes(t *testing.T) {
	t.Run("429 with Retry-After", func(t *testing.T) {
		apiErr := &googleapi.Error{
			Code:   http.StatusTooManyRequests,
			Header: http.Header{"Retry-After": []string{"7"}},
		}
		err := Classify("gemini", "review", apiErr)
		var rateErr *RateLimitError
		if !errors.As(err, &rateErr) {
			t.Fatalf("expected *RateLimitError, got %T", err)
		}
		if rateErr.RetryAfter != 7*time.Second {
			t.Errorf("RetryAfter = %v, want 7s", rateErr.RetryAfter)
		}
	})

	t.Run("429 without Retry-After", func(t *testing.T) {
		apiErr := &googleapi.Error{Code: http.StatusTooManyRequests}
		err := Classify("gemini", "review", apiErr)
		var rateErr *RateLimitError
		if !errors.As(err, &rateErr) {
			t.Fatalf("expected *RateLimitError, got %T", err)
		}
		if rateErr.RetryAfter != 0 {
			t.Errorf("RetryAfter = %v, want 0", rateErr.RetryAfter)
		}
	})

	for _, code := range []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout} {
		t.Run(fmt.Sprintf("status %d", code), func(t *testing.T) {
			err := Classify("gemini", "review", &googleapi.Error{Code: code})
			var netErr *NetworkError
			if !errors.As(err, &netErr) {
				t.Errorf("expected *NetworkError, got %T", err)
			}
		})
	}
}

func TestClassifyMessagePatterns(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limit phrase", errors.New("Rate Limit exceeded"), "rate_limit"},
		{"timeout phrase", errors.New("request timed out waiting for response"), "timeout"},
		{"connection refused", errors.New("connection refused"), "network"},
		{"network phrase", errors.New("network unreachable"), "network"},
		{"unknown", errors.New("something unexpected"), "provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := Classify("gemini", "review", tt.err)
			if got := ErrorKind(classified); got != tt.want {
				t.Errorf("ErrorKind = %q, want %q", got, tt.want)
			}
			if !errors.Is(classified, tt.err) {
				t.Error("original error must remain in the cause chain")
			}
		})
	}
}

func TestErrorKindLabels(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&RateLimitError{ProviderError: newProviderError("p", "op", "m", nil)}, "rate_limit"},
		{&NetworkError{ProviderError: newProviderError("p", "op", "m", nil)}, "network"},
		{&TimeoutError{ProviderError: newProviderError("p", "op", "m", nil)}, "timeout"},
		{&InvalidResponseError{ProviderError: newProviderError("p", "op", "m", nil)}, "invalid_response"},
		{&CostLimitError{ProviderError: newProviderError("p", "op", "m", nil)}, "cost_limit"},
		{errors.New("anything else"), "provider"},
	}

	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%T) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestProviderErrorFormatting(t *testing.T) {
	cause := errors.New("boom")
	err := &ProviderError{Provider: "gemini", Op: "review", Message: "operation failed", Cause: cause}
	if got := err.Error(); got != "provider gemini: review: operation failed: boom" {
		t.Errorf("unexpected message: %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap must expose the cause")
	}

	bare := &ProviderError{Provider: "gemini", Op: "review", Message: "operation failed"}
	if got := bare.Error(); got != "provider gemini: review: operation failed" {
		t.Errorf("unexpected message without cause: %q", got)
	}
}
