// Package sqldriver implements storage.Driver on top of database/sql. The
// sqlite and postgres packages open a *sql.DB and wrap it with this driver.
package sqldriver

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/papercomputeco/sitesmith/pkg/llm"
	"github.com/papercomputeco/sitesmith/pkg/storage"
)

// Dialect holds the statements that differ between SQL backends.
type Dialect struct {
	Name    string
	Schema  []string
	Insert  string
	History string
}

// SQLite is the dialect for mattn/go-sqlite3.
var SQLite = Dialect{
	Name: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS chat_turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS chat_turns_session_idx ON chat_turns (session_id, id)`,
	},
	Insert:  `INSERT INTO chat_turns (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
	History: `SELECT session_id, role, content, created_at FROM chat_turns WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
}

// Postgres is the dialect for jackc/pgx via its stdlib adapter.
var Postgres = Dialect{
	Name: "postgres",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS chat_turns (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS chat_turns_session_idx ON chat_turns (session_id, id)`,
	},
	Insert:  `INSERT INTO chat_turns (session_id, role, content, created_at) VALUES ($1, $2, $3, $4)`,
	History: `SELECT session_id, role, content, created_at FROM chat_turns WHERE session_id = $1 ORDER BY id DESC LIMIT $2`,
}

// Driver implements storage.Driver over a *sql.DB.
type Driver struct {
	DB      *sql.DB
	dialect Dialect
}

// New wraps db and creates the schema if needed.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Driver, error) {
	for _, stmt := range dialect.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create %s schema: %w", dialect.Name, err)
		}
	}

	return &Driver{DB: db, dialect: dialect}, nil
}

func (d *Driver) Append(ctx context.Context, turn llm.ChatTurn) error {
	if err := storage.ValidateTurn(turn); err != nil {
		return err
	}

	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	if _, err := d.DB.ExecContext(ctx, d.dialect.Insert, turn.SessionID, turn.Role, turn.Content, createdAt.UTC()); err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

func (d *Driver) History(ctx context.Context, sessionID string, limit int) ([]llm.ChatTurn, error) {
	rows, err := d.DB.QueryContext(ctx, d.dialect.History, sessionID, storage.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	turns := []llm.ChatTurn{}
	for rows.Next() {
		var t llm.ChatTurn
		if err := rows.Scan(&t.SessionID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	// Rows come newest first.
	slices.Reverse(turns)
	return turns, nil
}

func (d *Driver) Close() error {
	return d.DB.Close()
}
