// Package retry wraps a single asynchronous operation with bounded
// exponential-backoff retry.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Policy configures one call site. The zero value is not usable; start
// from DefaultPolicy.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      bool
}

// DefaultPolicy is three attempts, one second base delay, no jitter.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second}
}

// permanent is implemented by errors that should never be retried, such
// as logical failures reported by an otherwise healthy service.
type permanent interface {
	Permanent() bool
}

// sleep waits for d or until the context is cancelled. Overridden in tests
// to assert the delay sequence without waiting.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs op up to p.MaxAttempts times, sequentially. After failed attempt
// i (0-indexed) it sleeps BaseDelay*2^i before the next one. The final
// attempt's error is returned unchanged. Errors marked permanent stop the
// loop immediately.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay << (attempt - 1)
			if p.Jitter {
				delay += time.Duration(rand.Int63n(int64(delay)/4 + 1))
			}
			if werr := sleep(ctx, delay); werr != nil {
				return zero, err
			}
		}

		var v T
		v, err = op(ctx)
		if err == nil {
			return v, nil
		}
		var perm permanent
		if errors.As(err, &perm) && perm.Permanent() {
			break
		}
	}
	return zero, err
}
