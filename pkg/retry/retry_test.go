package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOpts() []Option {
	return []Option{
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(5 * time.Millisecond),
		WithJitter(0),
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	}, fastOpts()...)

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_RetriesRetryableErrors(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return Retryable(errors.New("transient"))
		}
		return nil
	}, fastOpts()...)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	boom := errors.New("still broken")
	attempts := 0

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Retryable(boom)
	}, fastOpts()...)

	require.Error(t, err)
	assert.Equal(t, boom, err) // unwrapped on the final attempt
	assert.Equal(t, 3, attempts)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	boom := errors.New("bad input")
	attempts := 0

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(boom)
	}, fastOpts()...)

	require.Error(t, err)
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_PlainErrorIsNotRetriedByDefault(t *testing.T) {
	boom := errors.New("not marked retryable")
	attempts := 0

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return boom
	}, fastOpts()...)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_RetryIfOverridesDefault(t *testing.T) {
	boom := errors.New("retry me anyway")
	attempts := 0

	opts := append(fastOpts(), WithRetryIf(func(err error) bool { return true }))
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return boom
	}, opts...)

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ContextCancelStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := Do(ctx, func(ctx context.Context) error {
		attempts++
		cancel()
		return Retryable(errors.New("transient"))
	}, fastOpts()...)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_OnRetryCallback(t *testing.T) {
	var callbacks int
	opts := append(fastOpts(), WithOnRetry(func(attempt int, err error, delay time.Duration) {
		callbacks++
	}))

	_ = Do(context.Background(), func(ctx context.Context) error {
		return Retryable(errors.New("transient"))
	}, opts...)

	// Called before each retry, not before the first attempt or after the last.
	assert.Equal(t, 2, callbacks)
}

func TestDoWithData(t *testing.T) {
	attempts := 0
	value, err := DoWithData(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 2 {
			return 0, Retryable(errors.New("transient"))
		}
		return 42, nil
	}, fastOpts()...)

	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestIsRetryableAndIsPermanent(t *testing.T) {
	base := errors.New("base")

	assert.True(t, IsRetryable(Retryable(base)))
	assert.False(t, IsRetryable(base))
	assert.True(t, IsPermanent(Permanent(base)))
	assert.False(t, IsPermanent(Retryable(base)))

	assert.Nil(t, Retryable(nil))
	assert.Nil(t, Permanent(nil))
}

func TestConflictRetrier_SingleRetry(t *testing.T) {
	attempts := 0
	err := ConflictRetrier().Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Retryable(errors.New("lost race"))
	})

	require.Error(t, err)
	assert.Equal(t, 2, attempts)
}

func TestDatabaseRetrier_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	err := DatabaseRetrier().Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return Retryable(errors.New("connection refused"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}
