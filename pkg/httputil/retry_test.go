package httputil

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errTransient = stderrors.New("transient")

func TestRetry(t *testing.T) {
	b := Backoff{Attempts: 4, Delay: time.Millisecond}

	calls := 0
	err := Retry(context.Background(), b, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errTransient}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	permanent := stderrors.New("permanent")
	err = Retry(context.Background(), b, func() error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls, "permanent errors are not retried")

	calls = 0
	err = Retry(context.Background(), b, func() error {
		calls++
		return &RetryableError{Err: errTransient}
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 4, calls)
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Retry(context.Background(), Backoff{}, func() error {
		calls++
		return &RetryableError{Err: errTransient}
	})
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, Backoff{Attempts: 5, Delay: time.Hour}, func() error {
		calls++
		cancel()
		return &RetryableError{Err: errTransient}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
