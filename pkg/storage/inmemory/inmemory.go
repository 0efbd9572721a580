// Package inmemory provides a process-local conversation store.
package inmemory

import (
	"context"
	"sync"

	"github.com/papercomputeco/sitesmith/pkg/llm"
	"github.com/papercomputeco/sitesmith/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu guards sessions
	mu sync.RWMutex

	// sessions maps a session id to its turns in append order
	sessions map[string][]llm.ChatTurn
}

// NewDriver creates a new in-memory store.
func NewDriver() *Driver {
	return &Driver{
		sessions: make(map[string][]llm.ChatTurn),
	}
}

func (d *Driver) Append(_ context.Context, turn llm.ChatTurn) error {
	if err := storage.ValidateTurn(turn); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.sessions[turn.SessionID] = append(d.sessions[turn.SessionID], turn)
	return nil
}

func (d *Driver) History(_ context.Context, sessionID string, limit int) ([]llm.ChatTurn, error) {
	limit = storage.ClampLimit(limit)

	d.mu.RLock()
	defer d.mu.RUnlock()

	turns := d.sessions[sessionID]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]llm.ChatTurn, len(turns))
	copy(out, turns)
	return out, nil
}

// Sessions returns the number of sessions held.
func (d *Driver) Sessions() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}

func (d *Driver) Close() error {
	return nil
}
