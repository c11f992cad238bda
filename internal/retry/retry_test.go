package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// captureSleeps replaces the sleep hook for the duration of a test and
// returns the recorded delays.
func captureSleeps(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	orig := sleep
	sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	t.Cleanup(func() { sleep = orig })
	return &delays
}

func TestDoSucceedsOnFinalAttempt(t *testing.T) {
	delays := captureSleeps(t)

	attempts := 0
	err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond}, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *delays)
}

func TestDoReturnsFinalErrorUnchanged(t *testing.T) {
	captureSleeps(t)

	finalErr := errors.New("attempt 4")
	attempts := 0
	err := Do(context.Background(), Policy{MaxAttempts: 4, BaseDelay: time.Millisecond}, func(ctx context.Context) error {
		attempts++
		if attempts == 4 {
			return finalErr
		}
		return errors.New("earlier failure")
	})

	assert.Equal(t, 4, attempts)
	assert.Same(t, finalErr, err)
}

func TestDoDelaysGrowExponentially(t *testing.T) {
	delays := captureSleeps(t)

	_ = Do(context.Background(), Policy{MaxAttempts: 5, BaseDelay: time.Second}, func(ctx context.Context) error {
		return errors.New("always fails")
	})

	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
	}, *delays)
}

func TestDoFirstAttemptSucceedsWithoutSleeping(t *testing.T) {
	delays := captureSleeps(t)

	attempts := 0
	err := Do(context.Background(), DefaultPolicy(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, *delays)
}

type permanentErr struct{ msg string }

func (e *permanentErr) Error() string   { return e.msg }
func (e *permanentErr) Permanent() bool { return true }

func TestDoStopsOnPermanentError(t *testing.T) {
	captureSleeps(t)

	attempts := 0
	err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, func(ctx context.Context) error {
		attempts++
		return &permanentErr{msg: "logical failure"}
	})

	assert.Equal(t, 1, attempts)
	assert.EqualError(t, err, "logical failure")
}

func TestDoValueReturnsValue(t *testing.T) {
	captureSleeps(t)

	attempts := 0
	v, err := DoValue(context.Background(), Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}, func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, attempts)
}

func TestDoStopsWhenContextCancelledDuringWait(t *testing.T) {
	orig := sleep
	sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}
	t.Cleanup(func() { sleep = orig })

	attempts := 0
	err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: time.Second}, func(ctx context.Context) error {
		attempts++
		return errors.New("transient")
	})

	assert.Equal(t, 1, attempts)
	assert.EqualError(t, err, "transient")
}

func TestDoJitterStaysBounded(t *testing.T) {
	delays := captureSleeps(t)

	_ = Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: time.Second, Jitter: true}, func(ctx context.Context) error {
		return errors.New("always fails")
	})

	assert.Len(t, *delays, 2)
	assert.GreaterOrEqual(t, (*delays)[0], 1*time.Second)
	assert.Less(t, (*delays)[0], 1250*time.Millisecond+time.Millisecond)
	assert.GreaterOrEqual(t, (*delays)[1], 2*time.Second)
	assert.Less(t, (*delays)[1], 2500*time.Millisecond+time.Millisecond)
}
