package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// Source is a decorator that retries transient failures with exponential
// backoff and jitter before giving up on a query.
type Source struct {
	inner      model.JobSource
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

var _ model.JobSource = (*Source)(nil)

// NewSource wraps a JobSource with retry logic.
// maxRetries is the number of additional attempts after the first failure (default: 2).
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewSource(inner model.JobSource, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Source {
	return &Source{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Fetch runs the query, retrying on transient errors.
func (s *Source) Fetch(ctx context.Context, q model.Query) ([]model.RawJob, error) {
	jobs, err := s.inner.Fetch(ctx, q)
	if err == nil {
		return jobs, nil
	}

	if !isRetryable(ctx, err) {
		return nil, err
	}

	lastErr := err
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		delay := s.backoffDelay(attempt, lastErr)

		s.logger.Warn("retrying after transient error",
			"search_term", q.SearchTerm,
			"attempt", attempt,
			"max_retries", s.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}

		jobs, err = s.inner.Fetch(ctx, q)
		if err == nil {
			return jobs, nil
		}

		if !isRetryable(ctx, err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (s *Source) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := s.baseDelay << (attempt - 1)

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the error represents a transient failure worth
// retrying within the caller's remaining deadline.
func isRetryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}

	// The caller's context is still live, so this came from the source itself.
	if errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}

	// Network, DNS and client-side timeouts.
	return true
}
