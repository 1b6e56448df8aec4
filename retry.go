package l10ncache

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Backoff selects how the connector spaces out connection attempts.
type Backoff string

const (
	// BackoffNone waits attempt milliseconds: a near-zero linear baseline.
	BackoffNone Backoff = "none"
	// BackoffSmart waits attempt × interval with ±10% jitter.
	BackoffSmart Backoff = "smart"
)

// jitterDivisor sets the ±10% spread applied to the retry interval.
const jitterDivisor = 10

// RetryPolicy holds configuration for retry behavior.
type RetryPolicy struct {
	Backoff  Backoff       // Delay algorithm; unknown values behave like BackoffSmart
	Retries  int           // Maximum number of attempts (at least one is always made)
	Interval time.Duration // Base interval between attempts

	// randInt64N returns a uniform value in [0, n). Defaults to math/rand/v2.
	randInt64N func(n int64) int64
}

// DefaultRetryPolicy mirrors the default connection configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Backoff:  BackoffSmart,
		Retries:  3,
		Interval: 20 * time.Millisecond,
	}
}

// Attempts returns the total number of attempts the policy allows.
func (p RetryPolicy) Attempts() int {
	if p.Retries < 1 {
		return 1
	}
	return p.Retries
}

// NextDelay returns how long to wait after the given zero-based attempt fails.
// Attempt 0 always yields 0 so the first retry is immediate.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	if p.Backoff == BackoffNone {
		return time.Duration(attempt) * time.Millisecond
	}

	jitter := p.Interval / jitterDivisor
	lo := p.Interval - jitter
	hi := p.Interval + jitter

	span := int64(hi - lo)
	jittered := lo
	if span > 0 {
		randN := p.randInt64N
		if randN == nil {
			randN = rand.Int64N
		}
		jittered += time.Duration(randN(span + 1))
	}

	return time.Duration(attempt) * jittered
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func(attempt int) (T, error)

// WithRetry runs fn until it succeeds, a non-retryable error occurs, or the
// policy's attempts are exhausted. The last error is returned.
func WithRetry[T any](ctx context.Context, p RetryPolicy, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	attempts := p.Attempts()
	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		delay := p.NextDelay(attempt)

		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < attempts-1 && delay > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}

// IsRetryable reports whether a connection attempt that failed with err
// should be tried again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var configErr *ConfigError
	return !errors.As(err, &configErr)
}
