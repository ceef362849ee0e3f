// Package retry implements the exponential-backoff policy shared by order
// creation, payment verification, and the subscription reader. It is pure
// scheduling: no notifications, no logging — callers surface retry state
// through the onRetry hook.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy is an explicit retry policy: MaxAttempts total attempts, waiting
// BaseDelay * Multiplier^attempt between them. No jitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultPolicy matches the product-wide schedule: 3 attempts with 1s and 2s
// gaps before the final failure is surfaced.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2}
}

// Backoff returns the wait after the given zero-based attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 0; i < attempt; i++ {
		d *= p.Multiplier
	}
	return time.Duration(d)
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error as not worth retrying (signature mismatches,
// authorization failures). Do stops immediately and returns the wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op up to p.MaxAttempts times. Between attempts it sleeps the
// backoff and then calls onRetry with the 1-based retry number, so callers
// can expose a retryCount. Context cancellation aborts the wait.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error, onRetry func(attempt int)) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}
		t := time.NewTimer(p.Backoff(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		if onRetry != nil {
			onRetry(attempt + 1)
		}
	}
	return err
}
