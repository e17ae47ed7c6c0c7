// Package db provides PostgreSQL storage for punch history snapshots.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// schema creates the snapshot tables. Entries are owned by their snapshot
// and ordered by position.
const schema = `
CREATE TABLE IF NOT EXISTS punch_history_snapshots (
	id           UUID PRIMARY KEY,
	account      TEXT NOT NULL,
	year         INTEGER NOT NULL,
	month        CHAR(2) NOT NULL,
	time_worked  TEXT NOT NULL,
	work_days    INTEGER NOT NULL,
	raw_html     TEXT,
	content_hash TEXT NOT NULL,
	fetched_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS punch_history_snapshots_period_idx
	ON punch_history_snapshots (account, year, month, fetched_at DESC);

CREATE TABLE IF NOT EXISTS punch_entries (
	snapshot_id UUID NOT NULL REFERENCES punch_history_snapshots(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	punch_in    TEXT NOT NULL,
	punch_out   TEXT NOT NULL,
	time_logged TEXT NOT NULL,
	client      TEXT NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);
`

// EnsureSchema creates the snapshot tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
