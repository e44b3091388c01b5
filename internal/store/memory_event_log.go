package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// dedupKinds are the synthetic kinds protected by the at-most-once
// constraint, mirroring the partial unique index in the PostgreSQL store.
var dedupKinds = map[string]bool{
	"task_due":      true,
	"reminder_sent": true,
}

// MemoryEventLog is an in-memory EventLogStore with the same dedup semantics
// as the PostgreSQL implementation. It backs tests and local development.
type MemoryEventLog struct {
	mu      sync.Mutex
	records []EventRecord
	taskIDs []*int64
	nextID  int64

	// AppendFn, when set, intercepts Append calls. Tests use it to inject
	// failures.
	AppendFn func(ctx context.Context, kind string, taskID *int64, payload json.RawMessage) error
}

// NewMemoryEventLog creates an empty MemoryEventLog.
func NewMemoryEventLog() *MemoryEventLog {
	return &MemoryEventLog{nextID: 1}
}

// Ensure MemoryEventLog implements EventLogStore
var _ EventLogStore = (*MemoryEventLog)(nil)

// Append inserts a record, enforcing at-most-once for synthetic kinds.
func (m *MemoryEventLog) Append(
	ctx context.Context,
	kind string,
	taskID *int64,
	payload json.RawMessage,
) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, kind, taskID, payload)
	}
	return m.AppendDirect(ctx, kind, taskID, payload)
}

// AppendDirect performs the real append, bypassing AppendFn. Tests that
// intercept Append use it to delegate selected calls back to the store.
func (m *MemoryEventLog) AppendDirect(
	ctx context.Context,
	kind string,
	taskID *int64,
	payload json.RawMessage,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if taskID != nil && dedupKinds[kind] {
		for i, rec := range m.records {
			if rec.Event == kind && m.taskIDs[i] != nil && *m.taskIDs[i] == *taskID {
				return fmt.Errorf("%w: %s for task %d", ErrDuplicateEvent, kind, *taskID)
			}
		}
	}

	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	var idCopy *int64
	if taskID != nil {
		v := *taskID
		idCopy = &v
	}

	m.records = append(m.records, EventRecord{
		ID:        m.nextID,
		Event:     kind,
		Payload:   append(json.RawMessage(nil), payload...),
		CreatedAt: time.Now().UTC(),
	})
	m.taskIDs = append(m.taskIDs, idCopy)
	m.nextID++

	return nil
}

// HasEventForTask reports whether a record of the given kind references the
// given task id.
func (m *MemoryEventLog) HasEventForTask(ctx context.Context, kind string, taskID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, rec := range m.records {
		if rec.Event == kind && m.taskIDs[i] != nil && *m.taskIDs[i] == taskID {
			return true, nil
		}
	}
	return false, nil
}

// CountByKind returns the number of records per event kind.
func (m *MemoryEventLog) CountByKind(ctx context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int64)
	for _, rec := range m.records {
		counts[rec.Event]++
	}
	return counts, nil
}

// List returns records newest first with the total count.
func (m *MemoryEventLog) List(ctx context.Context, offset, limit int) ([]EventRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := int64(len(m.records))

	reversed := make([]EventRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		reversed = append(reversed, m.records[i])
	}

	if offset >= len(reversed) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(reversed) {
		end = len(reversed)
	}
	return reversed[offset:end], total, nil
}

// Records returns a copy of all records in insertion order.
func (m *MemoryEventLog) Records() []EventRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EventRecord(nil), m.records...)
}

// RecordsOfKind returns all records of the given kind in insertion order.
func (m *MemoryEventLog) RecordsOfKind(kind string) []EventRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []EventRecord
	for _, rec := range m.records {
		if rec.Event == kind {
			out = append(out, rec)
		}
	}
	return out
}
