package domain

import (
	"errors"
	"time"
)

// Task-specific errors
var (
	// ErrNoDueDate is returned when a task has no due date set.
	ErrNoDueDate = errors.New("task has no due date")

	// ErrInvalidDueDate is returned when a task's due date cannot be parsed.
	ErrInvalidDueDate = errors.New("task due date is not a valid timestamp")
)

// Task is a read-only snapshot of a record owned by the task registry.
// The registry may attach additional fields to its representation; those are
// ignored here. The due date is kept in its raw wire form so that a single
// malformed record can be detected and skipped during reconciliation without
// failing the snapshot fetch that carried it.
type Task struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	DueDate string `json:"due_date,omitempty"`
}

// dueDateLayouts are the accepted due date formats, tried in order. The first
// two carry an explicit offset; the rest are naive timestamps, which are
// interpreted as UTC.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DueAt parses the task's due date and returns it in UTC.
// Returns ErrNoDueDate if the task has no due date, and ErrInvalidDueDate
// if the raw value cannot be parsed with any accepted layout.
func (t Task) DueAt() (time.Time, error) {
	if t.DueDate == "" {
		return time.Time{}, ErrNoDueDate
	}

	for _, layout := range dueDateLayouts {
		parsed, err := time.Parse(layout, t.DueDate)
		if err != nil {
			continue
		}
		return parsed.UTC(), nil
	}

	return time.Time{}, ErrInvalidDueDate
}

// HasDueDate reports whether the task carries a due date at all.
// Tasks without one are never considered due.
func (t Task) HasDueDate() bool {
	return t.DueDate != ""
}
