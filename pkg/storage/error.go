package storage

import (
	"errors"
	"fmt"

	"github.com/papercomputeco/sitesmith/pkg/llm"
)

// ErrEmptySession is returned when a turn has no session id.
var ErrEmptySession = errors.New("turn has no session id")

// InvalidRoleError is returned when a turn's role is neither user nor assistant.
type InvalidRoleError struct {
	Role string
}

func (e InvalidRoleError) Error() string {
	return fmt.Sprintf("invalid turn role: %q", e.Role)
}

// ValidateTurn checks the invariants every driver enforces before writing.
func ValidateTurn(turn llm.ChatTurn) error {
	if turn.SessionID == "" {
		return ErrEmptySession
	}
	if turn.Role != llm.RoleUser && turn.Role != llm.RoleAssistant {
		return InvalidRoleError{Role: turn.Role}
	}
	return nil
}

// ClampLimit bounds a requested history size to (0, MaxHistory].
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxHistory {
		return MaxHistory
	}
	return limit
}
