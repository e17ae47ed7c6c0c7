package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/timeclock/internal/types"
)

// Snapshot is a stored punch history month for one account.
type Snapshot struct {
	ID          uuid.UUID                 `json:"id"`
	Account     string                    `json:"account"`
	Summary     types.PunchHistorySummary `json:"summary"`
	RawHTML     *string                   `json:"raw_html,omitempty"`
	ContentHash string                    `json:"content_hash"`
	FetchedAt   time.Time                 `json:"fetched_at"`

	// Unchanged is set by SavePunchHistory when the page matched the latest
	// stored snapshot and nothing new was written.
	Unchanged bool `json:"-"`
}

// SnapshotSummary is a snapshot listing row without its entries.
type SnapshotSummary struct {
	ID         uuid.UUID `json:"id"`
	Year       int       `json:"year"`
	Month      string    `json:"month"`
	TimeWorked string    `json:"time_worked"`
	WorkDays   int       `json:"work_days"`
	Entries    int       `json:"entries"`
	FetchedAt  time.Time `json:"fetched_at"`
}
