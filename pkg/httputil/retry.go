package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient so that [Retry] attempts the
// operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times, doubling delay after each failure.
// Errors not wrapped in [RetryableError] are returned immediately.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// backoffDelay is the initial delay used by RetryWithBackoff.
var backoffDelay = 500 * time.Millisecond

// RetryWithBackoff runs [Retry] with 3 attempts.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, backoffDelay, fn)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
