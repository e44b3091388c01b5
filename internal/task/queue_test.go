package task

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTask is a minimal Task implementation for queue tests.
type stubTask struct {
	id      uuid.UUID
	execute func(ctx context.Context) error
}

func newStubTask(execute func(ctx context.Context) error) *stubTask {
	return &stubTask{id: uuid.New(), execute: execute}
}

func (t *stubTask) ID() uuid.UUID { return t.id }
func (t *stubTask) Type() string  { return "stub" }

func (t *stubTask) Execute(ctx context.Context) error {
	if t.execute != nil {
		return t.execute(ctx)
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestQueue_Enqueue(t *testing.T) {
	t.Parallel()

	t.Run("successful enqueue", func(t *testing.T) {
		t.Parallel()

		q := NewQueue(2, discardLogger())
		stub := newStubTask(nil)

		require.NoError(t, q.Enqueue(stub))
		assert.Same(t, Task(stub), <-q.GetChannel())
	})

	t.Run("full queue", func(t *testing.T) {
		t.Parallel()

		q := NewQueue(1, discardLogger())
		require.NoError(t, q.Enqueue(newStubTask(nil)))

		err := q.Enqueue(newStubTask(nil))
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("closed queue", func(t *testing.T) {
		t.Parallel()

		q := NewQueue(1, discardLogger())
		q.Close()

		err := q.Enqueue(newStubTask(nil))
		assert.ErrorIs(t, err, ErrQueueClosed)
	})

	t.Run("double close is safe", func(t *testing.T) {
		t.Parallel()

		q := NewQueue(1, discardLogger())
		q.Close()
		q.Close()
	})
}
