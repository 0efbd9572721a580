// Package storage defines the conversation store used to replay a session's
// history into each new generation request.
package storage

import (
	"context"

	"github.com/papercomputeco/sitesmith/pkg/llm"
)

// MaxHistory is the number of most recent turns replayed per request.
const MaxHistory = 50

// Driver persists chat turns keyed by session id.
type Driver interface {
	// Append stores one turn. Turns for a session are returned by History in
	// the order they were appended.
	Append(ctx context.Context, turn llm.ChatTurn) error

	// History returns the limit most recent turns for sessionID, oldest first.
	// An unknown session yields an empty slice and no error.
	History(ctx context.Context, sessionID string, limit int) ([]llm.ChatTurn, error)

	// Close closes the store and releases any resources.
	Close() error
}
