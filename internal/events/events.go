package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avolkova/tasknotify/internal/domain"
)

// Kind identifies the type of a task lifecycle event.
type Kind string

// Known event kinds. Anything else decodes as KindUnknown and is carried
// through unchanged for forward compatibility.
const (
	KindTaskCreated  Kind = "task_created"
	KindTaskUpdated  Kind = "task_updated"
	KindTaskDeleted  Kind = "task_deleted"
	KindTaskDue      Kind = "task_due"
	KindReminderSent Kind = "reminder_sent"
	KindUnknown      Kind = "unknown"
)

// KindOf maps a wire event name onto a known kind, falling back to
// KindUnknown for names this service does not recognize.
func KindOf(event string) Kind {
	switch Kind(event) {
	case KindTaskCreated, KindTaskUpdated, KindTaskDeleted, KindTaskDue, KindReminderSent:
		return Kind(event)
	default:
		return KindUnknown
	}
}

// Envelope-specific errors
var (
	// ErrMalformedEnvelope is returned when a bus message is not a valid
	// JSON envelope. Such messages are dropped, never retried.
	ErrMalformedEnvelope = errors.New("malformed event envelope")

	// ErrMissingEvent is returned when an envelope carries no event name.
	ErrMissingEvent = errors.New("envelope has no event name")
)

// Envelope is the wire format carried on the bus: {"event": <string>,
// "task": <object>}. The task object is kept raw because producers may
// attach fields this service does not know about; consumers must tolerate
// them and pass them through to the event log unchanged.
type Envelope struct {
	Event string          `json:"event"`
	Task  json.RawMessage `json:"task"`
}

// ParseEnvelope decodes a raw bus message into an Envelope.
// Returns ErrMalformedEnvelope for invalid JSON and ErrMissingEvent for an
// envelope with an empty event name.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Event == "" {
		return nil, ErrMissingEvent
	}
	return &env, nil
}

// Kind returns the classified kind of the envelope's event name.
func (e *Envelope) Kind() Kind {
	return KindOf(e.Event)
}

// TaskPayload is the subset of the task object this service acts on.
// Extra fields in the wire payload are ignored when decoding into it.
type TaskPayload struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	DueDate string `json:"due_date,omitempty"`
}

// DecodeTask unmarshals the envelope's task object into v.
func (e *Envelope) DecodeTask(v any) error {
	if len(e.Task) == 0 {
		return fmt.Errorf("%w: empty task payload", ErrMalformedEnvelope)
	}
	if err := json.Unmarshal(e.Task, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return nil
}

// TaskID extracts the referenced task id from the envelope's payload.
// Lifecycle events carry it as "id"; reminder audit entries as "task_id".
// The second return value reports whether an id was found.
func (e *Envelope) TaskID() (int64, bool) {
	var probe struct {
		ID     *int64 `json:"id"`
		TaskID *int64 `json:"task_id"`
	}
	if err := json.Unmarshal(e.Task, &probe); err != nil {
		return 0, false
	}
	if probe.ID != nil {
		return *probe.ID, true
	}
	if probe.TaskID != nil {
		return *probe.TaskID, true
	}
	return 0, false
}

// NewTaskDue builds the synthetic envelope the reconciler publishes when a
// task's due date has passed without a live event.
func NewTaskDue(task domain.Task) (*Envelope, error) {
	payload, err := json.Marshal(TaskPayload{
		ID:      task.ID,
		Title:   task.Title,
		DueDate: task.DueDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task_due payload: %w", err)
	}
	return &Envelope{Event: string(KindTaskDue), Task: payload}, nil
}

// ReminderSentPayload is the audit record appended to the event log when a
// reminder has been handed to the scheduler.
type ReminderSentPayload struct {
	TaskID     int64     `json:"task_id"`
	Title      string    `json:"title"`
	DueDate    string    `json:"due_date,omitempty"`
	SentAt     time.Time `json:"sent_at"`
	WasOverdue bool      `json:"was_overdue"`
}
