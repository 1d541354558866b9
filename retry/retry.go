// Package retry provides a generic resilience wrapper around fallible
// operations, plus the classifier that separates retryable failures from
// terminal ones.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Backoff selects how the inter-attempt delay grows.
type Backoff string

const (
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
)

// Policy is pure configuration; it is never mutated at runtime.
type Policy struct {
	// MaxAttempts is the total number of invocations, not the number of
	// retries after the first.
	MaxAttempts int

	// BaseDelay is the unit delay before the second attempt.
	BaseDelay time.Duration

	// Kind selects linear (base*attempt) or exponential (base*2^(attempt-1))
	// growth.
	Kind Backoff
}

// Do executes op up to policy.MaxAttempts times. A terminal error (per
// Retryable) propagates immediately after a single invocation; a retryable
// error is retried after a backoff delay. When attempts are exhausted the
// most recent error propagates unchanged — callers decide whether to treat
// that as a strategy miss.
func Do(ctx context.Context, policy Policy, op func(ctx context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retries", "attempts", attempt)
			}
			return nil
		}
		lastErr = err

		if !Retryable(err) {
			slog.Debug("terminal error, not retrying", "error", err)
			return err
		}
		if attempt == attempts {
			break
		}

		delay := policy.delay(attempt)
		slog.Debug("retryable failure, backing off",
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay,
			"error", err,
		)
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

// delay computes the wait after the given 1-based attempt number.
func (p Policy) delay(attempt int) time.Duration {
	switch p.Kind {
	case BackoffExponential:
		return p.BaseDelay * time.Duration(1<<(attempt-1))
	default:
		return p.BaseDelay * time.Duration(attempt)
	}
}

// sleep waits for d, respecting context cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
