// Package retry wraps single outbound calls to the automation backend and
// the planning service with bounded retry and backoff.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Invoker retries one call up to MaxAttempts times, sleeping
// BaseDelay × Multiplier^attempt between failed attempts. ExtendedBase is
// the much longer base used by DoExtended for cold-start warm-up.
type Invoker struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	Multiplier   float64
	ExtendedBase time.Duration
}

// New returns an invoker with the default bounds: three attempts, 500ms base
// delay doubling per attempt, 3s warm-up base.
func New() Invoker {
	return Invoker{
		MaxAttempts:  3,
		BaseDelay:    500 * time.Millisecond,
		Multiplier:   2,
		ExtendedBase: 3 * time.Second,
	}
}

// Do runs fn with exponential backoff between failures. On final failure the
// last error is wrapped with the call name and attempt count, so callers
// never need to inspect invoker internals.
func (in Invoker) Do(ctx context.Context, name string, fn func(context.Context) error) error {
	attempts := in.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt < attempts-1 {
			delay := scaleDelay(in.BaseDelay, in.Multiplier, attempt)
			if err := sleep(ctx, delay); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}

// DoExtended retries fn with a linearly scaled delay, base × (attempt+1),
// for calls known to need a bounded cold-start warm-up. Only failures whose
// message contains notReadySignature are retried; anything else fails fast
// because it is not a warm-up symptom.
func (in Invoker) DoExtended(ctx context.Context, name, notReadySignature string, fn func(context.Context) error) error {
	attempts := in.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !strings.Contains(lastErr.Error(), notReadySignature) {
			return fmt.Errorf("%s: %w", name, lastErr)
		}
		if attempt < attempts-1 {
			delay := in.ExtendedBase * time.Duration(attempt+1)
			if err := sleep(ctx, delay); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}

func scaleDelay(base time.Duration, multiplier float64, attempt int) time.Duration {
	if multiplier <= 0 {
		multiplier = 1
	}
	d := float64(base)
	for i := 0; i < attempt; i++ {
		d *= multiplier
	}
	return time.Duration(d)
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
