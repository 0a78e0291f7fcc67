package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Config{Attempts: 3, InitialDelay: time.Millisecond}, func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Config{Attempts: 3, InitialDelay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	wantErr := errors.New("still broken")
	calls := 0
	err := Do(context.Background(), Config{Attempts: 3, InitialDelay: time.Millisecond}, func() error {
		calls++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestDoPermanentShortCircuits(t *testing.T) {
	sentinel := errors.New("bad credentials")
	calls := 0
	err := Do(context.Background(), Config{Attempts: 5, InitialDelay: time.Millisecond}, func() error {
		calls++
		return Permanent(sentinel)
	})

	assert.Equal(t, 1, calls)
	// The permanent wrapper must not leak to callers.
	assert.Equal(t, sentinel, err)
	assert.ErrorIs(t, err, sentinel)
}

func TestDoDelayDoubles(t *testing.T) {
	start := time.Now()
	_ = Do(context.Background(), Config{Attempts: 3, InitialDelay: 20 * time.Millisecond}, func() error {
		return errors.New("nope")
	})
	elapsed := time.Since(start)

	// Sleeps of 20ms then 40ms between the three attempts.
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}

func TestDoContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, Config{Attempts: 3, InitialDelay: time.Minute}, func() error {
		calls++
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Config{}, func() error {
		calls++
		return errors.New("fail")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestPermanentNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
