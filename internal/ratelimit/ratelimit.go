package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// Limiter enforces a minimum delay between requests to the same backend.
type Limiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: backend name
	minDelay time.Duration
}

// NewLimiter creates a rate limiter that enforces minDelay between
// consecutive requests to the same backend.
func NewLimiter(minDelay time.Duration) *Limiter {
	return &Limiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to the given backend.
// Returns an error if the context is cancelled while waiting.
func (r *Limiter) Wait(ctx context.Context, backend string) error {
	r.mu.Lock()
	now := time.Now()
	last, ok := r.lastCall[backend]

	if !ok || now.Sub(last) >= r.minDelay {
		r.lastCall[backend] = now
		r.mu.Unlock()
		return nil
	}

	// Reserve the next slot so concurrent callers queue behind each other.
	next := last.Add(r.minDelay)
	r.lastCall[backend] = next
	r.mu.Unlock()

	timer := time.NewTimer(next.Sub(now))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", backend, ctx.Err())
	case <-timer.C:
	}
	return nil
}

// Source is a decorator that enforces backend-level rate limiting before
// delegating to the wrapped JobSource.
type Source struct {
	inner   model.JobSource
	limiter *Limiter
	backend string
}

var _ model.JobSource = (*Source)(nil)

// NewSource wraps a JobSource with rate limiting. All sources targeting the
// same backend should share the same limiter instance.
func NewSource(inner model.JobSource, limiter *Limiter, backend string) *Source {
	return &Source{
		inner:   inner,
		limiter: limiter,
		backend: backend,
	}
}

// Fetch waits for the rate limiter to allow a request, then delegates to the
// wrapped source.
func (s *Source) Fetch(ctx context.Context, q model.Query) ([]model.RawJob, error) {
	if err := s.limiter.Wait(ctx, s.backend); err != nil {
		return nil, err
	}
	return s.inner.Fetch(ctx, q)
}
