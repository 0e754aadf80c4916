package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces out repeated work such as watch-triggered re-analysis.
// A non-positive interval disables throttling.
type Throttle struct {
	inner *rate.Limiter
}

// NewThrottle allows one run per interval with the given burst.
func NewThrottle(interval time.Duration, burst int) *Throttle {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Throttle{inner: rate.NewLimiter(limit, burst)}
}

// Allow reports whether a run may start now.
func (t *Throttle) Allow() bool {
	return t.inner.Allow()
}

// Wait blocks until a run may start or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.inner.Wait(ctx)
}
