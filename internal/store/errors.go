package store

import "errors"

// Common store errors used across store implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEvent is returned when an append would create a second
	// synthetic event for the same (kind, task id) pair. The reconciler
	// relies on this to detect that a concurrent cycle or instance already
	// processed the task; it is a signal, not a failure.
	ErrDuplicateEvent = errors.New("event already logged for task")

	// ErrInvalidRecord is returned when a record fails a database constraint
	// other than the dedup uniqueness (e.g. a null in a required column).
	ErrInvalidRecord = errors.New("invalid record")
)

// IsDuplicateEvent reports whether the error indicates the dedup uniqueness
// constraint fired.
func IsDuplicateEvent(err error) bool {
	return errors.Is(err, ErrDuplicateEvent)
}
