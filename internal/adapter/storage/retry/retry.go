// Package retry bounds storage calls with a timeout and retries idempotent reads
// on transient connection faults.
package retry

import (
	"context"
	"time"
)

// Policy controls per-call timeouts and read retries.
type Policy struct {
	Timeout time.Duration // per attempt; zero disables
	Retries int           // extra attempts for reads
	Backoff time.Duration // multiplied by the attempt number
}

// DefaultBackoff is used when Policy.Backoff is zero.
const DefaultBackoff = 50 * time.Millisecond

// Write runs fn once under the policy timeout. Writes are never retried.
func (p Policy) Write(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := p.bound(ctx)
	defer cancel()
	return fn(ctx)
}

// Read runs fn and retries while transient reports the error as safe to retry.
func (p Policy) Read(ctx context.Context, transient func(error) bool, fn func(ctx context.Context) error) error {
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	for attempt := 0; ; attempt++ {
		attemptCtx, cancel := p.bound(ctx)
		err := fn(attemptCtx)
		cancel()

		if err == nil || attempt >= p.Retries || !transient(err) || ctx.Err() != nil {
			return err
		}

		timer := time.NewTimer(backoff * time.Duration(attempt+1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

func (p Policy) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.Timeout)
}
