// Package retry provides the retry policy used for calls to remote services.
//
// A Policy bounds the number of attempts, waits a fixed delay between failed
// attempts and gives every attempt its own timeout. The wait schedule comes from
// a cenkalti/backoff BackOff, so an exponential schedule can be swapped in with
// WithBackOff without touching callers.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NotifyFunc is called after a failed attempt that will be retried.
type NotifyFunc func(err error, attempt int, wait time.Duration)

// Operation is a single attempt. ctx carries the per-attempt timeout.
type Operation func(ctx context.Context, attempt int) error

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int
	// Delay is the fixed wait between attempts.
	Delay time.Duration
	// AttemptTimeout bounds each attempt. Zero means no per-attempt timeout.
	AttemptTimeout time.Duration

	newBackOff func() backoff.BackOff
}

// NewFixed returns a Policy with a constant delay between attempts.
func NewFixed(maxAttempts int, delay, attemptTimeout time.Duration) Policy {
	return Policy{
		MaxAttempts:    maxAttempts,
		Delay:          delay,
		AttemptTimeout: attemptTimeout,
	}
}

// WithBackOff returns a copy of p whose wait schedule is produced by fn.
// MaxAttempts and AttemptTimeout still apply.
func (p Policy) WithBackOff(fn func() backoff.BackOff) Policy {
	p.newBackOff = fn
	return p
}

// Permanent marks err as not worth retrying. Do returns the unwrapped err.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a permanent error, the attempts are
// used up or ctx is done. It returns the number of attempts made and the last
// error seen (nil on success).
func (p Policy) Do(ctx context.Context, op Operation, notify NotifyFunc) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var schedule backoff.BackOff = backoff.NewConstantBackOff(p.Delay)
	if p.newBackOff != nil {
		schedule = p.newBackOff()
	}
	schedule = backoff.WithContext(backoff.WithMaxRetries(schedule, uint64(maxAttempts-1)), ctx)

	attempt := 0
	operation := func() error {
		attempt++

		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if p.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}
		defer cancel()

		return op(attemptCtx, attempt)
	}

	err := backoff.RetryNotify(operation, schedule, func(err error, wait time.Duration) {
		if notify != nil {
			notify(err, attempt, wait)
		}
	})

	return attempt, err
}
