package model

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// UnknownRoleError is returned when a role key is not in the catalog.
type UnknownRoleError struct {
	Key string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown role key %q", e.Key)
}

// FetchError reports a failed fetch against a JobSource for one search term.
type FetchError struct {
	SearchTerm string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %q: %v", e.SearchTerm, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the fetch failed because its deadline passed.
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Retryable reports whether a caller could reasonably try the search again.
// Timeouts, 429 and 5xx responses are retryable; other 4xx and cancellation
// are not.
func (e *FetchError) Retryable() bool {
	if e.Timeout() {
		return true
	}
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(e.Err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}
	return true
}
