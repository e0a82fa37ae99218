// Package asyncx holds small generic helpers for context-aware retries.
package asyncx

import (
	"context"
	"errors"
	"time"
)

// permanentError marks a failure that must not be retried.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so Retry and RetryWithBackoff stop immediately.
// The original error is returned to the caller unwrapped.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func unwrapPermanent(err error) (error, bool) {
	var p *permanentError
	if errors.As(err, &p) {
		return p.err, true
	}
	return err, false
}

// Retry calls fn up to attempts times, returning as soon as fn succeeds.
// Returns the last error if all attempts fail.
func Retry[T any](ctx context.Context, attempts int, fn func(context.Context) (T, error)) (T, error) {
	return RetryWithBackoff(ctx, attempts, 0, fn)
}

// RetryWithBackoff calls fn up to attempts times with exponential backoff
// starting at initialDelay. The delay doubles after each failed attempt.
// Respects context cancellation between retries.
func RetryWithBackoff[T any](
	ctx context.Context,
	attempts int,
	initialDelay time.Duration,
	fn func(context.Context) (T, error),
) (T, error) {
	var (
		zero  T
		err   error
		val   T
		delay = initialDelay
	)
	if attempts < 1 {
		attempts = 1
	}
	for i := range attempts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		val, err = fn(ctx)
		if err == nil {
			return val, nil
		}
		if cause, stop := unwrapPermanent(err); stop {
			return zero, cause
		}

		if i < attempts-1 && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
				delay *= 2
			}
		}
	}
	return zero, err
}
