package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/avolkova/tasknotify/internal/bus"
	"github.com/avolkova/tasknotify/internal/platform/metrics"
	"github.com/avolkova/tasknotify/internal/reminder"
	"github.com/avolkova/tasknotify/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// channelSubscriber feeds messages from a channel.
type channelSubscriber struct {
	messages chan bus.Message
}

func newChannelSubscriber() *channelSubscriber {
	return &channelSubscriber{messages: make(chan bus.Message, 16)}
}

func (s *channelSubscriber) Receive(ctx context.Context) (bus.Message, error) {
	select {
	case <-ctx.Done():
		return bus.Message{}, ctx.Err()
	case msg := <-s.messages:
		return msg, nil
	}
}

// recordingScheduler captures scheduled reminder requests.
type recordingScheduler struct {
	mu       sync.Mutex
	requests []reminder.Request
}

func (s *recordingScheduler) Schedule(ctx context.Context, req reminder.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return nil
}

func (s *recordingScheduler) all() []reminder.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]reminder.Request(nil), s.requests...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// runConsumer starts the consumer loop and returns a stop function that
// cancels it and waits for exit.
func runConsumer(t *testing.T, c *Consumer) func() {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, c.Run(ctx))
	}()

	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("consumer did not stop")
		}
	}
}

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestConsumer_TaskCreatedSchedulesReminder(t *testing.T) {
	t.Parallel()

	sub := newChannelSubscriber()
	eventLog := store.NewMemoryEventLog()
	scheduler := &recordingScheduler{}

	c := New(sub, eventLog, scheduler, 10*time.Second, metrics.Noop{}, testLogger())
	stop := runConsumer(t, c)
	defer stop()

	sub.messages <- bus.Message{Value: []byte(`{"event":"task_created","task":{"id":5,"title":"buy milk","due_date":"2026-09-01T10:00:00Z","color":"red"}}`)}

	waitFor(t, func() bool { return len(scheduler.all()) == 1 }, "reminder was not scheduled")

	// Exactly one log row and one reminder with the creation delay.
	records := eventLog.RecordsOfKind("task_created")
	require.Len(t, records, 1)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(records[0].Payload, &payload))
	assert.Equal(t, float64(5), payload["id"])
	assert.Equal(t, "red", payload["color"])

	reqs := scheduler.all()
	assert.Equal(t, int64(5), reqs[0].TaskID)
	assert.Equal(t, "buy milk", reqs[0].Title)
	assert.Equal(t, 10*time.Second, reqs[0].Delay)
}

func TestConsumer_NonCreationEventsOnlyLogged(t *testing.T) {
	t.Parallel()

	sub := newChannelSubscriber()
	eventLog := store.NewMemoryEventLog()
	scheduler := &recordingScheduler{}

	c := New(sub, eventLog, scheduler, 10*time.Second, metrics.Noop{}, testLogger())
	stop := runConsumer(t, c)
	defer stop()

	sub.messages <- bus.Message{Value: []byte(`{"event":"task_updated","task":{"id":5,"title":"new title"}}`)}
	sub.messages <- bus.Message{Value: []byte(`{"event":"task_deleted","task":{"id":5}}`)}
	sub.messages <- bus.Message{Value: []byte(`{"event":"task_archived","task":{"id":9}}`)}

	waitFor(t, func() bool { return len(eventLog.Records()) == 3 }, "events were not logged")

	assert.Empty(t, scheduler.all())
	assert.Len(t, eventLog.RecordsOfKind("task_updated"), 1)
	assert.Len(t, eventLog.RecordsOfKind("task_deleted"), 1)
	// Unknown kinds pass through to the log unchanged.
	assert.Len(t, eventLog.RecordsOfKind("task_archived"), 1)
}

func TestConsumer_MalformedMessageDropped(t *testing.T) {
	t.Parallel()

	sub := newChannelSubscriber()
	eventLog := store.NewMemoryEventLog()
	scheduler := &recordingScheduler{}

	c := New(sub, eventLog, scheduler, 10*time.Second, metrics.Noop{}, testLogger())
	stop := runConsumer(t, c)
	defer stop()

	sub.messages <- bus.Message{Value: []byte(`{"event":`)}
	sub.messages <- bus.Message{Value: []byte(`{"task":{"id":1}}`)}
	// A valid message after the bad ones proves the loop survived.
	sub.messages <- bus.Message{Value: []byte(`{"event":"task_updated","task":{"id":2}}`)}

	waitFor(t, func() bool { return len(eventLog.Records()) == 1 }, "valid message was not processed")

	assert.Len(t, eventLog.RecordsOfKind("task_updated"), 1)
	assert.Empty(t, scheduler.all())
}

func TestConsumer_DuplicateSyntheticEventTolerated(t *testing.T) {
	t.Parallel()

	sub := newChannelSubscriber()
	eventLog := store.NewMemoryEventLog()
	scheduler := &recordingScheduler{}

	// Simulate the reconciler having logged task_due when it published.
	id := int64(4)
	require.NoError(t, eventLog.Append(context.Background(), "task_due", &id, []byte(`{"id":4,"title":"t"}`)))

	c := New(sub, eventLog, scheduler, 10*time.Second, metrics.Noop{}, testLogger())
	stop := runConsumer(t, c)
	defer stop()

	// The consumer now receives the same publication from the bus.
	sub.messages <- bus.Message{Value: []byte(`{"event":"task_due","task":{"id":4,"title":"t"}}`)}
	sub.messages <- bus.Message{Value: []byte(`{"event":"task_updated","task":{"id":4}}`)}

	waitFor(t, func() bool { return len(eventLog.RecordsOfKind("task_updated")) == 1 }, "loop did not continue past duplicate")

	assert.Len(t, eventLog.RecordsOfKind("task_due"), 1)
}

func TestConsumer_LogFailureSkipsReminder(t *testing.T) {
	t.Parallel()

	sub := newChannelSubscriber()
	eventLog := store.NewMemoryEventLog()
	scheduler := &recordingScheduler{}

	eventLog.AppendFn = func(ctx context.Context, kind string, taskID *int64, payload json.RawMessage) error {
		return errors.New("db unavailable")
	}

	c := New(sub, eventLog, scheduler, 10*time.Second, metrics.Noop{}, testLogger())
	stop := runConsumer(t, c)
	defer stop()

	sub.messages <- bus.Message{Value: []byte(`{"event":"task_created","task":{"id":6,"title":"x"}}`)}

	// Give the consumer a moment, then confirm nothing was scheduled.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, scheduler.all())
}
