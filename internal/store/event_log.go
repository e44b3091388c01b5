package store

import (
	"context"
	"encoding/json"
	"time"
)

// EventRecord is one row of the append-only notification log.
// Once written, records are never modified or deleted.
type EventRecord struct {
	ID        int64           `json:"id"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventLogStore is the append-only audit log of every event this service has
// observed or synthesized. The two existence checks are the system's sole
// deduplication mechanism; there is no separate reminder-state table.
type EventLogStore interface {
	// Append inserts a new log record. taskID carries the referenced task id
	// for keyed dedup lookups; pass nil when the payload references no task.
	// For synthetic kinds (task_due, reminder_sent) a second append for the
	// same (kind, task id) returns ErrDuplicateEvent.
	Append(ctx context.Context, kind string, taskID *int64, payload json.RawMessage) error

	// HasEventForTask reports whether a record of the given kind referencing
	// the given task id has already been logged.
	HasEventForTask(ctx context.Context, kind string, taskID int64) (bool, error)

	// CountByKind returns the number of logged records per event kind.
	CountByKind(ctx context.Context) (map[string]int64, error)

	// List returns records in reverse chronological order, with the total
	// record count for pagination.
	List(ctx context.Context, offset, limit int) ([]EventRecord, int64, error)
}
