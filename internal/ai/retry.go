package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	resumefitErrors "resumefit/internal/errors"
)

// RetryPolicy configures the fallback manager's retry behavior.
// Each transient error kind is gated by its own flag; invalid responses are
// not retried unless explicitly enabled.
type RetryPolicy struct {
	MaxRetries             int
	RetryDelayBase         time.Duration
	MaxRetryDelay          time.Duration
	RetryOnRateLimit       bool
	RetryOnNetworkError    bool
	RetryOnTimeout         bool
	RetryOnInvalidResponse bool
}

// DefaultRetryPolicy returns the standard policy: transient kinds retried,
// invalid responses not.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:          3,
		RetryDelayBase:      time.Second,
		MaxRetryDelay:       30 * time.Second,
		RetryOnRateLimit:    true,
		RetryOnNetworkError: true,
		RetryOnTimeout:      true,
	}
}

// Statistics holds the fallback manager's counters. Instance-scoped; multiple
// enhancement runs sharing one manager accumulate shared counters by design.
type Statistics struct {
	TotalErrors          int64            `json:"totalErrors"`
	ErrorsByType         map[string]int64 `json:"errorsByType"`
	TotalRetries         int64            `json:"totalRetries"`
	SuccessfulRecoveries int64            `json:"successfulRecoveries"`
	LastError            string           `json:"lastError,omitempty"`
}

// FallbackManager wraps provider calls with error classification, backoff,
// and statistics. It also exposes the cross-provider fallback extension point.
type FallbackManager struct {
	policy   RetryPolicy
	registry *Registry
	logger   *resumefitErrors.Logger

	mu    sync.Mutex
	stats Statistics
}

// NewFallbackManager creates a fallback manager with the given policy.
// The registry may be nil when cross-provider fallback is not wanted.
func NewFallbackManager(policy RetryPolicy, registry *Registry, logger *resumefitErrors.Logger) *FallbackManager {
	if policy.RetryDelayBase <= 0 {
		policy.RetryDelayBase = time.Second
	}
	if policy.MaxRetryDelay <= 0 {
		policy.MaxRetryDelay = 30 * time.Second
	}
	return &FallbackManager{
		policy:   policy,
		registry: registry,
		logger:   logger,
		stats:    Statistics{ErrorsByType: make(map[string]int64)},
	}
}

// ShouldRetry reports whether the classified error is retryable under the policy
func (m *FallbackManager) ShouldRetry(err error) bool {
	var (
		rateErr    *RateLimitError
		netErr     *NetworkError
		timeoutErr *TimeoutError
		respErr    *InvalidResponseError
		costErr    *CostLimitError
	)
	switch {
	case errors.As(err, &rateErr):
		return m.policy.RetryOnRateLimit
	case errors.As(err, &netErr):
		return m.policy.RetryOnNetworkError
	case errors.As(err, &timeoutErr):
		return m.policy.RetryOnTimeout
	case errors.As(err, &respErr):
		return m.policy.RetryOnInvalidResponse
	case errors.As(err, &costErr):
		return false
	default:
		// Generic provider errors are retryable by default
		return true
	}
}

// RetryDelay computes the backoff before retry number attempt (1-based).
// A provider-supplied RetryAfter wins over exponential backoff; both are
// capped at MaxRetryDelay.
func (m *FallbackManager) RetryDelay(attempt int, err error) time.Duration {
	var rateErr *RateLimitError
	if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
		return min(rateErr.RetryAfter, m.policy.MaxRetryDelay)
	}

	if attempt < 1 {
		attempt = 1
	}
	delay := m.policy.RetryDelayBase << (attempt - 1)
	if delay <= 0 || delay > m.policy.MaxRetryDelay {
		// Shift overflow lands here too
		return m.policy.MaxRetryDelay
	}
	return delay
}

// recordError updates counters for one caught error
func (m *FallbackManager) recordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.TotalErrors++
	m.stats.ErrorsByType[ErrorKind(err)]++
	m.stats.LastError = err.Error()
}

func (m *FallbackManager) recordRetry() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.TotalRetries++
}

func (m *FallbackManager) recordRecovery() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.SuccessfulRecoveries++
}

// Statistics returns a copy of the current counters
func (m *FallbackManager) Statistics() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.stats
	out.ErrorsByType = make(map[string]int64, len(m.stats.ErrorsByType))
	for kind, count := range m.stats.ErrorsByType {
		out.ErrorsByType[kind] = count
	}
	return out
}

// ResetStatistics clears all counters
func (m *FallbackManager) ResetStatistics() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = Statistics{ErrorsByType: make(map[string]int64)}
}

// NextProvider returns an alternative registered provider, or nil when the
// current provider is the only one. Extension point for cross-provider
// fallback; not exercised by single-provider deployments.
func (m *FallbackManager) NextProvider(current string) Provider {
	if m.registry == nil {
		return nil
	}
	return m.registry.NextProvider(current)
}

// ExecuteWithRetry runs fn with classification, per-kind retry gating, and
// backoff. At most policy.MaxRetries+1 attempts are made; on exhaustion the
// normalized last error is returned.
func ExecuteWithRetry[T any](
	ctx context.Context,
	m *FallbackManager,
	provider, operation string,
	fn func(context.Context) (T, error),
) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= m.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			m.recordRetry()
			delay := m.RetryDelay(attempt, lastErr)

			if m.logger != nil {
				m.logger.Warn("Retrying AI operation",
					"provider", provider,
					"operation", operation,
					"attempt", attempt,
					"max_retries", m.policy.MaxRetries,
					"delay", delay.String(),
					"error", lastErr.Error())
			}

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, Classify(provider, operation, ctx.Err())
			}
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				m.recordRecovery()
				if m.logger != nil {
					m.logger.Info("AI operation recovered after retry",
						"provider", provider,
						"operation", operation,
						"total_attempts", attempt+1)
				}
			}
			return result, nil
		}

		lastErr = Classify(provider, operation, err)
		m.recordError(lastErr)

		if !m.ShouldRetry(lastErr) {
			if m.logger != nil {
				m.logger.Debug("Error is not retryable, stopping retry attempts",
					"provider", provider,
					"operation", operation,
					"error", lastErr.Error())
			}
			break
		}
	}

	if m.logger != nil {
		m.logger.LogError(lastErr, "AI operation failed after all retry attempts",
			"provider", provider,
			"operation", operation)
	}
	return zero, lastErr
}
