package shared

import (
	"context"
	"time"
)

// Retry is a bounded fixed-interval retry policy.
//
// Implemented once and reused anywhere a condition needs polling, instead of
// inlining sleep loops at call sites. The first attempt runs immediately; the
// interval elapses between attempts.
type Retry struct {
	MaxAttempts int
	Interval    time.Duration
}

// StoreVisibilityRetry is the policy for waiting out write/read visibility lag
// in the token store after the OAuth exchange.
var StoreVisibilityRetry = Retry{MaxAttempts: 5, Interval: 100 * time.Millisecond}

// Poll runs fn until it reports done, the attempts are exhausted, or ctx is
// cancelled. It returns whether fn ever reported done; a non-nil error from fn
// stops polling immediately.
func (r Retry) Poll(ctx context.Context, fn func() (bool, error)) (bool, error) {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		done, err := fn()
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(r.Interval):
		}
	}

	return false, nil
}
