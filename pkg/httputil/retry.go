package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. [Retry] only repeats
// operations whose error wraps one.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff configures [Retry].
type Backoff struct {
	Attempts int           // total tries, at least 1
	Delay    time.Duration // wait before the second try; doubles afterwards
	MaxDelay time.Duration // cap on a single wait, 0 for none
}

// DefaultBackoff tries three times, waiting 500ms and then 1s.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 500 * time.Millisecond, MaxDelay: 5 * time.Second}

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. It returns the last error, or ctx.Err() when ctx ends
// during a wait.
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for i := range attempts {
		if err = fn(); err == nil || !isRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
		if b.MaxDelay > 0 && delay > b.MaxDelay {
			delay = b.MaxDelay
		}
	}
	return err
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
