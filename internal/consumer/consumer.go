package consumer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avolkova/tasknotify/internal/bus"
	"github.com/avolkova/tasknotify/internal/events"
	"github.com/avolkova/tasknotify/internal/platform/metrics"
	"github.com/avolkova/tasknotify/internal/reminder"
	"github.com/avolkova/tasknotify/internal/store"
)

// ReminderScheduler is the slice of the reminder scheduler the consumer needs.
type ReminderScheduler interface {
	Schedule(ctx context.Context, req reminder.Request) error
}

// Consumer maintains the long-lived subscription to the bus. Every received
// envelope is appended to the event log; task_created events additionally
// schedule a delayed reminder. Messages are handled strictly one at a time.
//
// The consumer performs no recovery of its own: a message lost upstream is
// backfilled by the reconciliation job, not redelivered here.
type Consumer struct {
	sub          bus.Subscriber
	eventLog     store.EventLogStore
	scheduler    ReminderScheduler
	createdDelay time.Duration
	logger       *slog.Logger
	metrics      metrics.Metrics
}

// New creates a Consumer. createdDelay is how long after a task_created
// event its reminder fires.
func New(
	sub bus.Subscriber,
	eventLog store.EventLogStore,
	scheduler ReminderScheduler,
	createdDelay time.Duration,
	m metrics.Metrics,
	logger *slog.Logger,
) *Consumer {
	return &Consumer{
		sub:          sub,
		eventLog:     eventLog,
		scheduler:    scheduler,
		createdDelay: createdDelay,
		logger:       logger.With("component", "consumer"),
		metrics:      m,
	}
}

// Run blocks consuming messages until ctx is cancelled or the subscription
// fails terminally.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started")

	for {
		msg, err := c.sub.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping")
				return nil
			}
			return err
		}

		c.handleMessage(ctx, msg)
	}
}

// handleMessage processes one bus message. Malformed messages are dropped,
// never retried; per-message failures never stop the subscription loop.
func (c *Consumer) handleMessage(ctx context.Context, msg bus.Message) {
	env, err := events.ParseEnvelope(msg.Value)
	if err != nil {
		c.logger.Error("dropping malformed message", "error", err)
		c.metrics.MessageDropped()
		return
	}

	log := c.logger.With("event", env.Event)

	var taskIDRef *int64
	if taskID, ok := env.TaskID(); ok {
		taskIDRef = &taskID
		log = log.With("task_id", taskID)
	}

	if err := c.eventLog.Append(ctx, env.Event, taskIDRef, env.Task); err != nil {
		if store.IsDuplicateEvent(err) {
			// The reconciler already logged this synthetic event when it
			// published it; receiving our own publication back is expected.
			log.Debug("event already logged, skipping")
			c.metrics.MessageHandled()
			return
		}
		log.Error("failed to log event", "error", err)
		return
	}

	if env.Kind() == events.KindTaskCreated {
		c.scheduleCreationReminder(ctx, env, log)
	}

	c.metrics.MessageHandled()
}

// scheduleCreationReminder submits the delayed reminder for a newly created
// task. The event is already logged at this point; a scheduling failure only
// costs the reminder, which reconciliation re-derives once the task is due.
func (c *Consumer) scheduleCreationReminder(ctx context.Context, env *events.Envelope, log *slog.Logger) {
	var payload events.TaskPayload
	if err := env.DecodeTask(&payload); err != nil {
		log.Error("cannot schedule reminder for unreadable task payload", "error", err)
		return
	}

	req := reminder.Request{
		TaskID: payload.ID,
		Title:  payload.Title,
		Delay:  c.createdDelay,
	}
	if err := c.scheduler.Schedule(ctx, req); err != nil {
		log.Error("failed to schedule creation reminder", "error", err)
		return
	}

	log.Debug("creation reminder scheduled", "delay", c.createdDelay)
}
