// Package eventstream publishes generation lifecycle events to an external
// stream so downstream consumers (analytics, billing) can follow gateway
// activity without polling the conversation store.
package eventstream

import "context"

// Publisher publishes generation events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, event *GenerationEvent) error
	Close() error
}
