package task

import (
	"context"

	"github.com/google/uuid"
)

// Task represents a unit of background work to be processed by the worker
// pool. Tasks are in-memory only; work that must survive a restart does not
// belong on this queue.
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to the task channel, allowing
// workers to consume tasks without the ability to enqueue.
type QueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// QueueWriter provides write access to the task queue, allowing services to
// enqueue tasks for processing.
type QueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}
