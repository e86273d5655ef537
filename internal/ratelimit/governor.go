// Package ratelimit spaces outbound requests so that consecutive calls to
// external catalogs are at least a fixed delay apart.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// DefaultDelay is the minimum spacing between outbound requests.
const DefaultDelay = time.Second

// Clock is the time source used by a Governor.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Governor enforces a minimum delay between consecutive requests. One
// Governor is shared by every adapter taking part in a run.
type Governor struct {
	limiter *rate.Limiter
	clock   Clock
	name    string
}

// Option configures a Governor.
type Option func(*Governor)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(g *Governor) {
		g.clock = c
	}
}

// New creates a Governor allowing one request per delay. A non-positive
// delay disables waiting.
func New(name string, delay time.Duration, opts ...Option) *Governor {
	g := &Governor{
		clock: realClock{},
		name:  name,
	}
	for _, opt := range opts {
		opt(g)
	}

	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	g.limiter = rate.NewLimiter(limit, 1)
	return g
}

// Wait blocks until the next request may be sent. It must be called before
// every outbound request. The first call never waits.
func (g *Governor) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", g.name, err)
	}

	now := g.clock.Now()
	reservation := g.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return fmt.Errorf("rate limit wait for %s: reservation refused", g.name)
	}

	wait := reservation.DelayFrom(now)
	if wait <= 0 {
		return nil
	}

	slog.Debug("Rate governor waiting", "limiter", g.name, "delay", wait)
	if err := g.clock.Sleep(ctx, wait); err != nil {
		reservation.CancelAt(g.clock.Now())
		return fmt.Errorf("rate limit wait for %s: %w", g.name, err)
	}
	return nil
}
