package sheets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/desertthunder/fretsheet/internal/shared"
	"golang.org/x/time/rate"
)

// rateLimitPatterns are error-text fragments that mark a failure as
// transient. The remote API is not consistent about status codes, so matching
// is by message as well as by sentinel.
var rateLimitPatterns = []string{
	"quota exceeded",
	"rate_limit_exceeded",
	"too many requests",
	"service unavailable",
	"internal error",
	"429",
}

// IsRateLimited reports whether an error represents a transient rate-limit or
// availability failure worth retrying.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, shared.ErrRateLimited) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range rateLimitPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// RetryOnRateLimit runs op up to maxRetries times, sleeping
// baseDelay * 2^attempt between rate-limited failures. Non-transient errors
// return immediately; exhausting all attempts returns the last error wrapped
// in [shared.ErrRateLimited].
func RetryOnRateLimit(ctx context.Context, maxRetries int, baseDelay time.Duration, op func() error) error {
	return retryOnRateLimit(ctx, maxRetries, baseDelay, sleepCtx, op)
}

func retryOnRateLimit(ctx context.Context, maxRetries int, baseDelay time.Duration, sleep func(context.Context, time.Duration) error, op func() error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !IsRateLimited(err) {
			return err
		}
		if attempt < maxRetries-1 {
			if serr := sleep(ctx, baseDelay*(1<<attempt)); serr != nil {
				return serr
			}
		}
	}

	if errors.Is(err, shared.ErrRateLimited) {
		return err
	}
	return errors.Join(shared.ErrRateLimited, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Throttle spaces out batch writes process-wide so bursts of mutations do not
// trip the per-minute write quota. One instance is shared by every client.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle creates a throttle enforcing a minimum interval between writes.
// A non-positive interval disables pacing.
func NewThrottle(minInterval time.Duration) *Throttle {
	if minInterval <= 0 {
		return &Throttle{}
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Wait blocks until the next write slot opens or the context is canceled.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.limiter == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}
