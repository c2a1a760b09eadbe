// Package retry provides a bounded retry combinator for I/O operations
// against the object and document stores.
package retry

import (
	"context"
	"fmt"
	"time"
)

// DefaultAttempts is one initial try plus two retries.
const DefaultAttempts = 3

// pause between attempts; bounded retries need no backoff schedule.
const pause = 200 * time.Millisecond

// Do runs fn up to attempts times. A retry happens only when isTransient
// reports the error as retryable; a nil isTransient retries every error.
// The last error is returned once attempts are exhausted.
func Do[T any](ctx context.Context, attempts int, isTransient func(error) bool, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		return zero, fmt.Errorf("retry: attempts must be >= 1, got %d", attempts)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if isTransient != nil && !isTransient(err) {
			return zero, err
		}
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(pause):
			}
		}
	}
	return zero, fmt.Errorf("retry: %d attempts exhausted: %w", attempts, lastErr)
}
