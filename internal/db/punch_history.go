package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/timeclock/internal/types"
)

// ContentHash returns the hex SHA-256 of a page body.
func ContentHash(rawHTML string) string {
	sum := sha256.Sum256([]byte(rawHTML))
	return hex.EncodeToString(sum[:])
}

// normalizeAccount lowercases the account email so lookups are case-insensitive.
func normalizeAccount(account string) string {
	return strings.ToLower(strings.TrimSpace(account))
}

// SavePunchHistory stores a month of punch history with its entries in one
// transaction. When the latest snapshot for the same account and month has
// the same content hash, that snapshot is returned with Unchanged set.
func (db *DB) SavePunchHistory(ctx context.Context, account string, summary *types.PunchHistorySummary, rawHTML string) (*Snapshot, error) {
	if summary == nil {
		return nil, fmt.Errorf("summary is nil")
	}
	account = normalizeAccount(account)
	hash := ContentHash(rawHTML)

	latest, err := db.GetLatestPunchHistory(ctx, account, summary.Year, summary.Month)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.ContentHash == hash {
		latest.Unchanged = true
		return latest, nil
	}

	snapshot := &Snapshot{
		ID:          uuid.New(),
		Account:     account,
		Summary:     *summary,
		ContentHash: hash,
	}
	if rawHTML != "" {
		snapshot.RawHTML = &rawHTML
	}

	err = pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO punch_history_snapshots (id, account, year, month, time_worked, work_days, raw_html, content_hash)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING fetched_at`,
			snapshot.ID, account, summary.Year, summary.Month, summary.TimeWorked,
			summary.WorkDays, snapshot.RawHTML, hash,
		).Scan(&snapshot.FetchedAt); err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		batch := &pgx.Batch{}
		for i, e := range summary.Entries {
			batch.Queue(
				`INSERT INTO punch_entries (snapshot_id, position, punch_in, punch_out, time_logged, client)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				snapshot.ID, i, e.PunchIn, e.PunchOut, e.TimeLogged, e.Client,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save punch history %s: %w", summary.Period(), err)
	}

	return snapshot, nil
}

// GetLatestPunchHistory retrieves the most recent snapshot for an account and
// month, with its entries. Returns nil, nil when none is stored.
func (db *DB) GetLatestPunchHistory(ctx context.Context, account string, year int, month string) (*Snapshot, error) {
	var s Snapshot
	err := db.pool.QueryRow(ctx,
		`SELECT id, account, year, month, time_worked, work_days, raw_html, content_hash, fetched_at
		 FROM punch_history_snapshots
		 WHERE account = $1 AND year = $2 AND month = $3
		 ORDER BY fetched_at DESC LIMIT 1`,
		normalizeAccount(account), year, month,
	).Scan(&s.ID, &s.Account, &s.Summary.Year, &s.Summary.Month, &s.Summary.TimeWorked,
		&s.Summary.WorkDays, &s.RawHTML, &s.ContentHash, &s.FetchedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get punch history: %w", err)
	}

	entries, err := db.listEntries(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Summary.Entries = entries
	return &s, nil
}

func (db *DB) listEntries(ctx context.Context, snapshotID uuid.UUID) ([]types.PunchEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT punch_in, punch_out, time_logged, client
		 FROM punch_entries WHERE snapshot_id = $1 ORDER BY position`,
		snapshotID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]types.PunchEntry, 0)
	for rows.Next() {
		var e types.PunchEntry
		if err := rows.Scan(&e.PunchIn, &e.PunchOut, &e.TimeLogged, &e.Client); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListSnapshots lists stored snapshots for an account, newest period first.
func (db *DB) ListSnapshots(ctx context.Context, account string, limit int) ([]SnapshotSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.pool.Query(ctx,
		`SELECT s.id, s.year, s.month, s.time_worked, s.work_days,
		        (SELECT COUNT(*) FROM punch_entries e WHERE e.snapshot_id = s.id),
		        s.fetched_at
		 FROM punch_history_snapshots s
		 WHERE s.account = $1
		 ORDER BY s.year DESC, s.month DESC, s.fetched_at DESC
		 LIMIT $2`,
		normalizeAccount(account), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []SnapshotSummary
	for rows.Next() {
		var s SnapshotSummary
		if err := rows.Scan(&s.ID, &s.Year, &s.Month, &s.TimeWorked, &s.WorkDays, &s.Entries, &s.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
