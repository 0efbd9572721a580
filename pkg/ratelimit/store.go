package ratelimit

import (
	"context"
	"time"
)

// StoreResult is the outcome of a single keyed window check.
type StoreResult struct {
	// Allowed reports whether the request was recorded.
	Allowed bool

	// Count is the number of requests in the window after the check.
	Count int

	// Oldest is the earliest timestamp still inside the window. Zero when the
	// window is empty.
	Oldest time.Time
}

// Store keeps the per-client sliding windows. Admit must purge, count, and
// record atomically with respect to other Admit calls for the same key.
type Store interface {
	// Admit purges timestamps at or before now-window, rejects when the
	// remaining count has reached limit, and otherwise records now.
	Admit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (StoreResult, error)

	// Sweep purges expired timestamps for every key and drops empty keys.
	// It returns the number of keys removed.
	Sweep(ctx context.Context, window time.Duration, now time.Time) (int, error)

	Close() error
}
