// Package ratelimit bounds the aggregate outbound request rate of one
// engine instance with token-bucket semantics, built on
// golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Budget configures the token bucket: up to Requests tokens may be spent as
// an initial burst, refilling at Requests per PerInterval.
type Budget struct {
	Requests    int
	PerInterval time.Duration
}

// Limiter is the shared token bucket. All strategies of an engine instance
// draw from the same bucket so the aggregate rate, not the per-strategy
// rate, is what is bounded. golang.org/x/time/rate serializes token
// accounting internally.
type Limiter struct {
	lim *rate.Limiter
}

// New creates a Limiter from the budget. A zero or negative Requests value
// disables limiting (Acquire returns immediately).
func New(b Budget) *Limiter {
	if b.Requests <= 0 || b.PerInterval <= 0 {
		return &Limiter{}
	}
	refill := rate.Every(b.PerInterval / time.Duration(b.Requests))
	return &Limiter{lim: rate.NewLimiter(refill, b.Requests)}
}

// Acquire suspends the caller until a token is available, then consumes it.
// It returns early with the context's error if ctx expires first.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.lim == nil {
		return nil
	}
	return l.lim.Wait(ctx)
}
