// Package redis provides a Redis-backed conversation store with one list
// per session.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/papercomputeco/sitesmith/pkg/llm"
	"github.com/papercomputeco/sitesmith/pkg/storage"
)

const defaultPrefix = "sitesmith:session:"

// Driver implements storage.Driver using Redis lists.
type Driver struct {
	client redis.UniversalClient
	prefix string

	// ttl refreshes the session key on every append. Zero keeps sessions forever.
	ttl time.Duration
}

// Option configures a Driver.
type Option func(*Driver)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(d *Driver) {
		if prefix != "" {
			d.prefix = prefix
		}
	}
}

// WithTTL expires idle sessions after ttl.
func WithTTL(ttl time.Duration) Option {
	return func(d *Driver) {
		d.ttl = ttl
	}
}

// NewDriver creates a Redis-backed store and verifies the connection.
func NewDriver(ctx context.Context, client redis.UniversalClient, opts ...Option) (*Driver, error) {
	d := &Driver{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return d, nil
}

func (d *Driver) Append(ctx context.Context, turn llm.ChatTurn) error {
	if err := storage.ValidateTurn(turn); err != nil {
		return err
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}

	val, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encoding turn: %w", err)
	}

	key := d.key(turn.SessionID)
	_, err = d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, val)
		if d.ttl > 0 {
			pipe.Expire(ctx, key, d.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}
	return nil
}

func (d *Driver) History(ctx context.Context, sessionID string, limit int) ([]llm.ChatTurn, error) {
	limit = storage.ClampLimit(limit)

	vals, err := d.client.LRange(ctx, d.key(sessionID), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	turns := make([]llm.ChatTurn, 0, len(vals))
	for _, v := range vals {
		var t llm.ChatTurn
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			return nil, fmt.Errorf("decoding turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Close is a no-op. The client belongs to the caller, which may share it
// with other components.
func (d *Driver) Close() error {
	return nil
}

func (d *Driver) key(sessionID string) string {
	return d.prefix + sessionID
}
