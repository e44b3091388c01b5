package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avolkova/tasknotify/internal/platform/metrics"
	"github.com/avolkova/tasknotify/internal/task"
	"github.com/google/uuid"
)

// reminderTask adapts a Request to the worker pool's task interface.
type reminderTask struct {
	id       uuid.UUID
	req      Request
	notifier Notifier
	metrics  metrics.Metrics
}

func (t *reminderTask) ID() uuid.UUID { return t.id }
func (t *reminderTask) Type() string  { return "reminder" }

func (t *reminderTask) Execute(ctx context.Context) error {
	if _, err := t.notifier.Notify(ctx, t.req); err != nil {
		t.metrics.ReminderFailed()
		return fmt.Errorf("failed to deliver reminder for task %d: %w", t.req.TaskID, err)
	}
	t.metrics.ReminderSent()
	return nil
}

// SchedulerConfig holds configuration for the reminder scheduler.
type SchedulerConfig struct {
	// WorkerCount determines how many reminders can execute concurrently.
	WorkerCount int

	// QueueSize bounds the number of reminders waiting for a free worker.
	QueueSize int
}

// DefaultSchedulerConfig returns a SchedulerConfig with reasonable defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Scheduler executes reminders once, after an optional delay. Scheduling is
// non-blocking: a positive delay arms a timer and returns immediately, and a
// zero delay enqueues for execution as soon as a worker is free.
//
// The scheduler does not deduplicate: callers check the event log before
// scheduling. It is also not durable; timers and queued reminders die with
// the process, and the reconciliation job re-derives anything that was never
// logged as sent.
type Scheduler struct {
	queue    *task.Queue
	pool     *task.WorkerPool
	notifier Notifier
	logger   *slog.Logger
	metrics  metrics.Metrics

	mu      sync.Mutex
	timers  map[uuid.UUID]*time.Timer
	stopped bool
}

// NewScheduler creates a Scheduler with its own queue and worker pool.
func NewScheduler(
	cfg SchedulerConfig,
	notifier Notifier,
	m metrics.Metrics,
	logger *slog.Logger,
) *Scheduler {
	log := logger.With("component", "reminder_scheduler")

	queue := task.NewQueue(cfg.QueueSize, log)
	pool := task.NewWorkerPool(queue, task.WorkerPoolConfig{WorkerCount: cfg.WorkerCount}, log)

	s := &Scheduler{
		queue:    queue,
		pool:     pool,
		notifier: notifier,
		logger:   log,
		metrics:  m,
		timers:   make(map[uuid.UUID]*time.Timer),
	}

	// Action failures are already counted in Execute; the pool handler only
	// keeps them out of the caller's path.
	pool.SetErrorHandler(func(t task.Task, err error) {
		log.Error("reminder execution failed", "task_id", t.ID(), "error", err)
	})

	return s
}

// Start launches the scheduler's workers.
func (s *Scheduler) Start() {
	s.pool.Start()
}

// Stop cancels pending timers, closes the queue and waits for in-flight
// reminders to finish. Reminders still waiting on a timer are dropped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.queue.Close()
	s.pool.Stop()
}

// Schedule arms the reminder described by req. A zero delay enqueues
// immediately; a positive delay arms a timer without blocking the caller.
// Returns an error only when the reminder cannot be accepted (queue full or
// scheduler stopped) — execution failures are logged, never propagated.
func (s *Scheduler) Schedule(ctx context.Context, req Request) error {
	t := &reminderTask{
		id:       uuid.New(),
		req:      req,
		notifier: s.notifier,
		metrics:  s.metrics,
	}

	if req.Delay <= 0 {
		if err := s.queue.Enqueue(t); err != nil {
			return fmt.Errorf("failed to enqueue reminder for task %d: %w", req.TaskID, err)
		}
		s.metrics.ReminderScheduled()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return fmt.Errorf("failed to schedule reminder for task %d: %w", req.TaskID, task.ErrQueueClosed)
	}

	s.timers[t.id] = time.AfterFunc(req.Delay, func() {
		s.mu.Lock()
		delete(s.timers, t.id)
		stopped := s.stopped
		s.mu.Unlock()

		if stopped {
			return
		}
		if err := s.queue.Enqueue(t); err != nil {
			s.logger.Error("failed to enqueue delayed reminder",
				"task_id", req.TaskID,
				"error", err)
		}
	})

	s.logger.Debug("reminder timer armed",
		"task_id", req.TaskID,
		"delay", req.Delay)
	s.metrics.ReminderScheduled()

	return nil
}
