package llm

import "time"

// ChatTurn is one persisted side of a successful request/response pair.
// Turns are never mutated once written.
type ChatTurn struct {
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Message converts the turn into a canonical message for conversation replay.
func (t ChatTurn) Message() Message {
	return Message{Role: t.Role, Content: t.Content}
}
