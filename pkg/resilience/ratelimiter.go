package resilience

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles calls to an external service using a token bucket.
type Limiter struct {
	l *rate.Limiter
}

// LimiterOpts configures the token bucket.
type LimiterOpts struct {
	// Rate is the number of calls allowed per second.
	Rate float64
	// Burst is the bucket capacity.
	Burst int
}

// NewLimiter creates a Limiter. A zero Rate means unlimited.
func NewLimiter(opts LimiterOpts) *Limiter {
	if opts.Rate <= 0 {
		return &Limiter{l: rate.NewLimiter(rate.Inf, 1)}
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Limiter{l: rate.NewLimiter(rate.Limit(opts.Rate), opts.Burst)}
}

// Wait blocks until a token is available or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.l.Wait(ctx)
}

// Allow reports whether a call may proceed without waiting.
func (l *Limiter) Allow() bool {
	return l.l.Allow()
}

// CallWait waits for a token then executes f.
func (l *Limiter) CallWait(ctx context.Context, f func(context.Context) error) error {
	if err := l.Wait(ctx); err != nil {
		return err
	}
	return f(ctx)
}
