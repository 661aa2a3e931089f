package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastInvoker() Invoker {
	return Invoker{
		MaxAttempts:  3,
		BaseDelay:    10 * time.Millisecond,
		Multiplier:   2,
		ExtendedBase: 5 * time.Millisecond,
	}
}

func TestDoReturnsAfterEventualSuccess(t *testing.T) {
	in := fastInvoker()
	calls := 0
	start := time.Now()
	err := in.Do(context.Background(), "flaky", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	// Two failed attempts: base×1 + base×2.
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
}

func TestDoWrapsFinalError(t *testing.T) {
	in := fastInvoker()
	sentinel := errors.New("boom")
	calls := 0
	err := in.Do(context.Background(), "observe", func(context.Context) error {
		calls++
		return sentinel
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "observe failed after 3 attempts")
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	in := fastInvoker()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := in.Do(ctx, "observe", func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoExtendedRetriesOnNotReadySignature(t *testing.T) {
	in := fastInvoker()
	calls := 0
	err := in.DoExtended(context.Background(), "warm-up", "driver not ready", func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("observe: driver not ready yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoExtendedFailsFastOnUnrelatedError(t *testing.T) {
	in := fastInvoker()
	calls := 0
	err := in.DoExtended(context.Background(), "warm-up", "driver not ready", func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDoExtendedExhaustsAttempts(t *testing.T) {
	in := fastInvoker()
	calls := 0
	err := in.DoExtended(context.Background(), "warm-up", "driver not ready", func(context.Context) error {
		calls++
		return errors.New("driver not ready")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "warm-up failed after 3 attempts")
}
