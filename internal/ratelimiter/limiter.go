package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// PushLimiter is a token bucket capping outbound push sends per second.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type PushLimiter struct {
	limiter *rate.Limiter
}

// New creates a PushLimiter granting ratePerSec sends per second.
// A rate of zero or less disables limiting: a zero-burst bucket would
// reject every Wait and fail whole dispatch batches.
func New(ratePerSec int) *PushLimiter {
	if ratePerSec <= 0 {
		return &PushLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &PushLimiter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

// Wait blocks until a token is available. Called by the dispatcher
// immediately before each transport send. Returns a non-nil error only
// if ctx is cancelled while waiting.
func (l *PushLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
