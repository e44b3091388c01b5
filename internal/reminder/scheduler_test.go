package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/avolkova/tasknotify/internal/platform/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures every request it receives.
type recordingNotifier struct {
	mu       sync.Mutex
	requests []Request
	notified chan Request
	err      error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{notified: make(chan Request, 16)}
}

func (n *recordingNotifier) Notify(ctx context.Context, req Request) (Result, error) {
	n.mu.Lock()
	n.requests = append(n.requests, req)
	n.mu.Unlock()
	n.notified <- req
	if n.err != nil {
		return Result{}, n.err
	}
	return Result{TaskID: req.TaskID, Title: req.Title}, nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.requests)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestScheduler_ImmediateReminder(t *testing.T) {
	t.Parallel()

	notifier := newRecordingNotifier()
	s := NewScheduler(DefaultSchedulerConfig(), notifier, metrics.Noop{}, testLogger())
	s.Start()
	defer s.Stop()

	err := s.Schedule(context.Background(), Request{TaskID: 1, Title: "pay rent"})
	require.NoError(t, err)

	select {
	case req := <-notifier.notified:
		assert.Equal(t, int64(1), req.TaskID)
		assert.Equal(t, "pay rent", req.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("immediate reminder did not fire")
	}
}

func TestScheduler_DelayedReminder(t *testing.T) {
	t.Parallel()

	notifier := newRecordingNotifier()
	s := NewScheduler(DefaultSchedulerConfig(), notifier, metrics.Noop{}, testLogger())
	s.Start()
	defer s.Stop()

	start := time.Now()
	err := s.Schedule(context.Background(), Request{TaskID: 2, Title: "standup", Delay: 50 * time.Millisecond})
	require.NoError(t, err)

	// Schedule must not block for the delay.
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	select {
	case req := <-notifier.notified:
		assert.Equal(t, int64(2), req.TaskID)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("delayed reminder did not fire")
	}
}

func TestScheduler_NoDedupAtThisLayer(t *testing.T) {
	t.Parallel()

	notifier := newRecordingNotifier()
	s := NewScheduler(DefaultSchedulerConfig(), notifier, metrics.Noop{}, testLogger())
	s.Start()
	defer s.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Schedule(context.Background(), Request{TaskID: 7, Title: "dup"}))
	}

	for i := 0; i < 3; i++ {
		select {
		case <-notifier.notified:
		case <-time.After(2 * time.Second):
			t.Fatalf("reminder %d did not fire", i)
		}
	}
	assert.Equal(t, 3, notifier.count())
}

func TestScheduler_NotifierFailureDoesNotPropagate(t *testing.T) {
	t.Parallel()

	notifier := newRecordingNotifier()
	notifier.err = errors.New("smtp down")

	s := NewScheduler(DefaultSchedulerConfig(), notifier, metrics.Noop{}, testLogger())
	s.Start()
	defer s.Stop()

	// Scheduling succeeds even though delivery will fail.
	require.NoError(t, s.Schedule(context.Background(), Request{TaskID: 3, Title: "doomed"}))

	select {
	case <-notifier.notified:
	case <-time.After(2 * time.Second):
		t.Fatal("reminder was never attempted")
	}
}

func TestScheduler_StopDropsPendingTimers(t *testing.T) {
	t.Parallel()

	notifier := newRecordingNotifier()
	s := NewScheduler(DefaultSchedulerConfig(), notifier, metrics.Noop{}, testLogger())
	s.Start()

	require.NoError(t, s.Schedule(context.Background(), Request{TaskID: 4, Title: "later", Delay: time.Hour}))
	s.Stop()

	assert.Equal(t, 0, notifier.count())

	// Scheduling after Stop is rejected.
	err := s.Schedule(context.Background(), Request{TaskID: 5, Title: "too late", Delay: time.Minute})
	assert.Error(t, err)
}
