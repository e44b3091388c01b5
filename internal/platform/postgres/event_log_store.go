package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avolkova/tasknotify/internal/platform/logger"
	"github.com/avolkova/tasknotify/internal/store"
)

// EventLogStore implements store.EventLogStore using PostgreSQL.
//
// Dedup lookups are keyed on an explicit task_id column rather than textual
// containment over the payload; a partial unique index on (event, task_id)
// for the synthetic kinds makes the check-then-append sequence race-safe:
// two concurrent writers cannot both succeed, the loser gets
// store.ErrDuplicateEvent.
type EventLogStore struct {
	db store.DBTX
}

// NewEventLogStore creates a new EventLogStore.
func NewEventLogStore(db store.DBTX) *EventLogStore {
	return &EventLogStore{db: db}
}

// Ensure EventLogStore implements store.EventLogStore
var _ store.EventLogStore = (*EventLogStore)(nil)

// Append inserts a new record into the append-only log.
func (s *EventLogStore) Append(
	ctx context.Context,
	kind string,
	taskID *int64,
	payload json.RawMessage,
) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO notification_logs (event, task_id, payload)
		VALUES ($1, $2, $3)
	`

	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	_, err := s.db.ExecContext(ctx, query, kind, taskID, []byte(payload))
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateEvent(mapped) {
			// Expected under concurrent reconciliation; the caller decides
			// whether this is noteworthy.
			return mapped
		}
		log.Error("failed to append event log record",
			"event", kind,
			"error", err)
		return fmt.Errorf("failed to append event log record: %w", mapped)
	}

	return nil
}

// HasEventForTask reports whether a record of the given kind referencing the
// given task id exists. This is an indexed exact lookup on (event, task_id).
func (s *EventLogStore) HasEventForTask(
	ctx context.Context,
	kind string,
	taskID int64,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notification_logs
			WHERE event = $1 AND task_id = $2
		)
	`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, kind, taskID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for existing %s event: %w", kind, MapError(err))
	}

	return exists, nil
}

// CountByKind returns the number of logged records per event kind.
func (s *EventLogStore) CountByKind(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT event, COUNT(*)
		FROM notification_logs
		GROUP BY event
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count events by kind: %w", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logger.FromContext(ctx).Warn("failed to close rows", "error", closeErr)
		}
	}()

	counts := make(map[string]int64)
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event count row: %w", err)
		}
		counts[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed while iterating event count rows: %w", err)
	}

	return counts, nil
}

// List returns records in reverse chronological order along with the total
// record count for pagination.
func (s *EventLogStore) List(
	ctx context.Context,
	offset, limit int,
) ([]store.EventRecord, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notification_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count event log records: %w", MapError(err))
	}

	query := `
		SELECT id, event, payload, created_at
		FROM notification_logs
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list event log records: %w", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logger.FromContext(ctx).Warn("failed to close rows", "error", closeErr)
		}
	}()

	var records []store.EventRecord
	for rows.Next() {
		var rec store.EventRecord
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.Event, &payload, &rec.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan event log row: %w", err)
		}
		rec.Payload = json.RawMessage(payload)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed while iterating event log rows: %w", err)
	}

	return records, total, nil
}
