// Package llm holds the provider-agnostic types shared by the registry, the
// provider adapters, the conversation store, and the gateway.
package llm

import "strings"

// Message roles understood by every adapter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single canonical chat message.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // plain text
}

// NewTextMessage creates a message with the given role and content.
func NewTextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// Conversation is an ordered list of canonical messages. The gateway prepends
// exactly one system message per request.
type Conversation []Message

// System returns the concatenated content of every system message,
// separated by blank lines.
func (c Conversation) System() string {
	var parts []string
	for _, msg := range c {
		if msg.Role == RoleSystem && msg.Content != "" {
			parts = append(parts, msg.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// WithoutSystem returns the conversation with all system messages removed.
func (c Conversation) WithoutSystem() Conversation {
	out := make(Conversation, 0, len(c))
	for _, msg := range c {
		if msg.Role == RoleSystem {
			continue
		}
		out = append(out, msg)
	}
	return out
}
