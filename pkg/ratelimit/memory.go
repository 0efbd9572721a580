package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local sliding-window store.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string][]time.Time),
	}
}

func (s *MemoryStore) Admit(_ context.Context, key string, limit int, window time.Duration, now time.Time) (StoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamps := purge(s.windows[key], now.Add(-window))

	if len(stamps) >= limit {
		s.store(key, stamps)
		return StoreResult{Allowed: false, Count: len(stamps), Oldest: oldest(stamps)}, nil
	}

	stamps = append(stamps, now)
	s.windows[key] = stamps

	return StoreResult{Allowed: true, Count: len(stamps), Oldest: stamps[0]}, nil
}

func (s *MemoryStore) Sweep(_ context.Context, window time.Duration, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	removed := 0
	for key, stamps := range s.windows {
		stamps = purge(stamps, cutoff)
		if len(stamps) == 0 {
			delete(s.windows, key)
			removed++
			continue
		}
		s.windows[key] = stamps
	}

	return removed, nil
}

// Len returns the number of tracked clients.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func (s *MemoryStore) Close() error {
	return nil
}

// store writes stamps back, deleting the key once it is empty. Caller holds mu.
func (s *MemoryStore) store(key string, stamps []time.Time) {
	if len(stamps) == 0 {
		delete(s.windows, key)
		return
	}
	s.windows[key] = stamps
}

// purge drops every timestamp at or before cutoff. Stamps are kept in
// insertion order, so the survivors are a suffix.
func purge(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return stamps
	}
	return append([]time.Time(nil), stamps[i:]...)
}

func oldest(stamps []time.Time) time.Time {
	if len(stamps) == 0 {
		return time.Time{}
	}
	return stamps[0]
}
