// Package ratelimit implements the per-client sliding-window limiter that
// guards the gateway's HTTP surface.
package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/papercomputeco/sitesmith/pkg/logger"
)

// Window is the fixed sliding-window length.
const Window = time.Hour

// DefaultSweepInterval is how often StartSweeper purges idle clients.
const DefaultSweepInterval = 10 * time.Minute

// Decision is the outcome of one admission check.
type Decision struct {
	Admitted bool

	// RetryAfter is how long the client must wait before a slot frees up.
	// Zero when admitted.
	RetryAfter time.Duration

	// ResetAt is when the oldest request in the window expires.
	ResetAt time.Time

	// Remaining is the number of requests left in the window.
	Remaining int
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds.
func (d Decision) RetryAfterSeconds() int {
	return int(math.Ceil(d.RetryAfter.Seconds()))
}

// WaitMinutes returns the wait in whole minutes, rounded up. A rejected
// decision always reports at least one minute.
func (d Decision) WaitMinutes() int {
	minutes := int(math.Ceil(float64(d.RetryAfterSeconds()) / 60))
	if !d.Admitted && minutes < 1 {
		return 1
	}
	return minutes
}

// Limiter admits or rejects requests per client key.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithLogger sets the logger used by the sweeper.
func WithLogger(log *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = log
	}
}

// New creates a Limiter admitting limit requests per client per Window.
// A limit of 0 or less disables limiting and the store is never touched.
func New(store Store, limit int, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		limit:  limit,
		window: Window,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Enabled reports whether requests are being limited.
func (l *Limiter) Enabled() bool {
	return l.limit > 0
}

// Limit returns the per-window request limit.
func (l *Limiter) Limit() int {
	return l.limit
}

// Admit checks and records one request for clientID. On a store error the
// request is admitted and the error returned so the caller can log it.
func (l *Limiter) Admit(ctx context.Context, clientID string) (Decision, error) {
	if !l.Enabled() {
		return Decision{Admitted: true, Remaining: math.MaxInt}, nil
	}

	now := l.now()
	result, err := l.store.Admit(ctx, clientID, l.limit, l.window, now)
	if err != nil {
		return Decision{Admitted: true}, err
	}

	d := Decision{
		Admitted:  result.Allowed,
		Remaining: max(l.limit-result.Count, 0),
	}
	if !result.Oldest.IsZero() {
		d.ResetAt = result.Oldest.Add(l.window)
	}
	if !d.Admitted {
		d.RetryAfter = max(d.ResetAt.Sub(now), 0)
	}

	return d, nil
}

// Sweep purges every client whose window has fully expired.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	if !l.Enabled() {
		return 0, nil
	}
	return l.store.Sweep(ctx, l.window, l.now())
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	if !l.Enabled() || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := l.Sweep(ctx)
				if err != nil {
					l.logger.Warn("rate limit sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					l.logger.Debug("rate limit sweep", "removed", removed)
				}
			}
		}
	}()
}

// Close releases the underlying store.
func (l *Limiter) Close() error {
	return l.store.Close()
}
