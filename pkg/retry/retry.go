// Package retry wraps a single upstream call with bounded, classified
// retries. Intermediate attempts are visible only in logs; exactly one
// terminal outcome crosses the package boundary.
package retry

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"fable/pkg/fault"
)

// Policy bounds the retry loop. The zero value is unusable; use Default or
// construct from configuration.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func Default() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Do runs op up to p.MaxAttempts times. A non-retryable classification or
// the final attempt ends the loop immediately; otherwise the next attempt
// waits baseDelay * 2^attempt (zero-based, no jitter). The sleep is
// timer-based and aborts as soon as ctx is cancelled, so concurrent calls
// are never blocked by each other's backoff.
//
// When every allowed attempt failed with a retryable fault, the result is a
// RETRY_FAILED classification wrapping the last fault, distinguishable from
// a single non-retryable rejection.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var last *fault.Error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		start := time.Now()
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		last = fault.Classify(err, time.Since(start))
		if !last.Retryable {
			return zero, last
		}
		if attempt == p.MaxAttempts-1 {
			break
		}

		wait := p.BaseDelay << attempt
		log.Warnf("retrying after %s (attempt %d/%d, %s)", wait, attempt+1, p.MaxAttempts, last.Kind)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fault.Classify(ctx.Err(), time.Since(start))
		case <-timer.C:
		}
	}

	return zero, fault.Exhausted(last, p.MaxAttempts)
}
