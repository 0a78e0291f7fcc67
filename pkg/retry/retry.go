// Package retry provides a bounded retry loop with exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"
)

// Config controls how many times an operation is attempted and how long
// the first backoff sleep lasts. The delay doubles after every failure.
type Config struct {
	Attempts     int
	InitialDelay time.Duration
}

// DefaultConfig matches the pipeline defaults: 3 attempts, 500ms initial delay.
func DefaultConfig() Config {
	return Config{
		Attempts:     3,
		InitialDelay: 500 * time.Millisecond,
	}
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent wraps err so Do returns it immediately without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn up to cfg.Attempts times, sleeping between attempts with a
// doubling delay. It returns nil on the first success, the unwrapped error
// as soon as fn returns a Permanent error, or the last error once attempts
// are exhausted. Context cancellation aborts the wait and returns ctx.Err().
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		lastErr = err
		if attempt == cfg.Attempts {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return lastErr
}
