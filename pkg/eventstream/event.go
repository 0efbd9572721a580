package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeGenerationCompleted is emitted after a successful generation
	// has been persisted.
	EventTypeGenerationCompleted = "sitesmith.generation.completed"
)

// GenerationEvent is a transport-neutral payload describing one successful
// generation. It never carries prompt or response content.
type GenerationEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	SessionID     string    `json:"session_id,omitempty"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	TokensUsed    int       `json:"tokens_used"`
	Attempted     []string  `json:"attempted"`
	DurationMs    int64     `json:"duration_ms"`
}

// NewGenerationEvent fills the envelope fields of a generation event.
func NewGenerationEvent(sessionID, provider, model string, tokensUsed int, attempted []string, duration time.Duration) *GenerationEvent {
	return &GenerationEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeGenerationCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		SessionID:     sessionID,
		Provider:      provider,
		Model:         model,
		TokensUsed:    tokensUsed,
		Attempted:     attempted,
		DurationMs:    duration.Milliseconds(),
	}
}
