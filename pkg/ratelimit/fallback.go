package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/papercomputeco/sitesmith/pkg/logger"
)

const breakerDuration = 30 * time.Second

// FallbackStore sends checks to a primary store and switches to a local one
// for breakerDuration after the primary fails.
type FallbackStore struct {
	primary  Store
	fallback Store
	logger   *slog.Logger

	mu           sync.Mutex
	breakerUntil time.Time
}

// NewFallbackStore constructs a FallbackStore. A nil logger discards output.
func NewFallbackStore(primary, fallback Store, log *slog.Logger) *FallbackStore {
	if log == nil {
		log = logger.Nop()
	}
	return &FallbackStore{
		primary:  primary,
		fallback: fallback,
		logger:   log,
	}
}

func (s *FallbackStore) Admit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (StoreResult, error) {
	if !s.isBreakerActive(now) {
		result, err := s.primary.Admit(ctx, key, limit, window, now)
		if err == nil {
			return result, nil
		}
		s.tripBreaker(err, now)
	}
	return s.fallback.Admit(ctx, key, limit, window, now)
}

func (s *FallbackStore) Sweep(ctx context.Context, window time.Duration, now time.Time) (int, error) {
	return s.fallback.Sweep(ctx, window, now)
}

func (s *FallbackStore) Close() error {
	return errors.Join(s.primary.Close(), s.fallback.Close())
}

func (s *FallbackStore) isBreakerActive(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.breakerUntil.IsZero() {
		return false
	}
	if now.Before(s.breakerUntil) {
		return true
	}
	s.breakerUntil = time.Time{}
	return false
}

func (s *FallbackStore) tripBreaker(err error, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.breakerUntil.IsZero() && now.Before(s.breakerUntil) {
		return
	}
	s.breakerUntil = now.Add(breakerDuration)
	s.logger.Warn("rate limit store unavailable, falling back to memory", "error", err, "retry_at", s.breakerUntil)
}
