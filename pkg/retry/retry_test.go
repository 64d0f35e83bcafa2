package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotReady = errors.New("connection not established")

func isNotReady(err error) bool {
	return errors.Is(err, errNotReady)
}

func TestDoWithResult_RetriesOnlyMatchingErrors(t *testing.T) {
	cfg := ConnectionConfig(3, time.Millisecond, isNotReady)

	attempts := 0
	result, err := DoWithResult(context.Background(), cfg, "acquire", func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errNotReady
		}
		return "conn", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "conn", result)
	assert.Equal(t, 3, attempts)
}

func TestDoWithResult_NonRetryableReturnsImmediately(t *testing.T) {
	cfg := ConnectionConfig(3, time.Millisecond, isNotReady)
	boom := errors.New("syntax error")

	attempts := 0
	_, err := DoWithResult(context.Background(), cfg, "acquire", func() (string, error) {
		attempts++
		return "", boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestDoWithResult_MakesExactlyTheConfiguredAttempts(t *testing.T) {
	cfg := ConnectionConfig(3, time.Millisecond, isNotReady)

	attempts := 0
	_, err := DoWithResult(context.Background(), cfg, "acquire", func() (int, error) {
		attempts++
		return 0, errNotReady
	})

	assert.ErrorIs(t, err, errNotReady)
	assert.Equal(t, 3, attempts)
}

func TestConnectionConfig_SingleAttemptNeverRetries(t *testing.T) {
	for _, attempts := range []int{1, 0, -2} {
		cfg := ConnectionConfig(attempts, time.Millisecond, isNotReady)

		calls := 0
		_, err := DoWithResult(context.Background(), cfg, "acquire", func() (int, error) {
			calls++
			return 0, errNotReady
		})

		assert.ErrorIs(t, err, errNotReady)
		assert.Equal(t, 1, calls, "attempts=%d", attempts)
	}
}

func TestDoWithResult_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := DoWithResult(ctx, ConnectionConfig(3, time.Millisecond, isNotReady), "noop", func() (int, error) {
		called = true
		return 1, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestCalculateDelay_FixedWhenMultiplierIsOne(t *testing.T) {
	cfg := ConnectionConfig(3, 250*time.Millisecond, isNotReady)

	for attempt := 0; attempt < 3; attempt++ {
		assert.Equal(t, 250*time.Millisecond, calculateDelay(attempt, cfg))
	}
}

func TestCalculateDelay_CapsAtMaxDelay(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(0, cfg))
	assert.Equal(t, 400*time.Millisecond, calculateDelay(2, cfg))
	assert.Equal(t, 5*time.Second, calculateDelay(10, cfg))
}
