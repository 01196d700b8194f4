package sheets

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/fretsheet/internal/shared"
)

func TestIsRateLimited(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sentinel", err: fmt.Errorf("%w: slow down", shared.ErrRateLimited), want: true},
		{name: "quota message", err: errors.New("APIError: Quota exceeded for service"), want: true},
		{name: "rate limit code", err: errors.New("rate_limit_exceeded"), want: true},
		{name: "too many requests", err: errors.New("HTTP 429 Too Many Requests"), want: true},
		{name: "service unavailable", err: errors.New("the service is currently unavailable: Service Unavailable"), want: true},
		{name: "internal error", err: errors.New("Internal error encountered"), want: true},
		{name: "not found", err: fmt.Errorf("%w: item 3", shared.ErrNotFound), want: false},
		{name: "plain failure", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimited(tt.err); got != tt.want {
				t.Errorf("IsRateLimited(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryOnRateLimit(t *testing.T) {
	ctx := context.Background()

	recordSleeps := func(sleeps *[]time.Duration) func(context.Context, time.Duration) error {
		return func(_ context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return nil
		}
	}

	t.Run("Succeeds on final attempt", func(t *testing.T) {
		var sleeps []time.Duration
		calls := 0

		err := retryOnRateLimit(ctx, 3, 2*time.Second, recordSleeps(&sleeps), func() error {
			calls++
			if calls < 3 {
				return fmt.Errorf("%w: quota exceeded", shared.ErrRateLimited)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 attempts, got %d", calls)
		}

		want := []time.Duration{2 * time.Second, 4 * time.Second}
		if len(sleeps) != len(want) {
			t.Fatalf("expected %d sleeps, got %d", len(want), len(sleeps))
		}
		for i, d := range want {
			if sleeps[i] != d {
				t.Errorf("sleep %d = %v, want %v", i, sleeps[i], d)
			}
		}
	})

	t.Run("Exhausted attempts return ErrRateLimited", func(t *testing.T) {
		var sleeps []time.Duration
		calls := 0

		err := retryOnRateLimit(ctx, 3, time.Second, recordSleeps(&sleeps), func() error {
			calls++
			return errors.New("Quota exceeded for write requests")
		})
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 attempts, got %d", calls)
		}
		// No sleep after the final failure.
		if len(sleeps) != 2 {
			t.Errorf("expected 2 sleeps, got %d", len(sleeps))
		}
	})

	t.Run("Non-transient errors fail immediately", func(t *testing.T) {
		var sleeps []time.Duration
		calls := 0
		boom := errors.New("connection refused")

		err := retryOnRateLimit(ctx, 3, time.Second, recordSleeps(&sleeps), func() error {
			calls++
			return boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected original error, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected a single attempt, got %d", calls)
		}
		if len(sleeps) != 0 {
			t.Errorf("expected no sleeps, got %d", len(sleeps))
		}
	})

	t.Run("Canceled context stops retrying", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		calls := 0
		err := RetryOnRateLimit(canceled, 3, time.Millisecond, func() error {
			calls++
			return fmt.Errorf("%w: quota exceeded", shared.ErrRateLimited)
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected one attempt before cancellation, got %d", calls)
		}
	})
}

func TestThrottle(t *testing.T) {
	t.Run("Nil and disabled throttles never block", func(t *testing.T) {
		var nilThrottle *Throttle
		if err := nilThrottle.Wait(context.Background()); err != nil {
			t.Errorf("nil throttle should be a no-op, got %v", err)
		}

		disabled := NewThrottle(0)
		for range 3 {
			if err := disabled.Wait(context.Background()); err != nil {
				t.Errorf("disabled throttle should be a no-op, got %v", err)
			}
		}
	})

	t.Run("Spaces consecutive writes", func(t *testing.T) {
		throttle := NewThrottle(20 * time.Millisecond)
		ctx := context.Background()

		start := time.Now()
		for range 3 {
			if err := throttle.Wait(ctx); err != nil {
				t.Fatalf("wait failed: %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
			t.Errorf("expected at least 40ms across 3 writes, got %v", elapsed)
		}
	})
}
