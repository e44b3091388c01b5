package reconciler

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avolkova/tasknotify/internal/bus"
	"github.com/avolkova/tasknotify/internal/domain"
	"github.com/avolkova/tasknotify/internal/events"
	"github.com/avolkova/tasknotify/internal/platform/metrics"
	"github.com/avolkova/tasknotify/internal/reminder"
	"github.com/avolkova/tasknotify/internal/store"
	"github.com/avolkova/tasknotify/internal/tasksource"
)

// ReminderScheduler is the slice of the reminder scheduler the reconciler
// needs.
type ReminderScheduler interface {
	Schedule(ctx context.Context, req reminder.Request) error
}

// CycleResult summarizes one reconciliation cycle.
type CycleResult struct {
	OK               bool      `json:"ok"`
	TaskDueProcessed int       `json:"task_due_processed"`
	RemindersSent    int       `json:"reminders_sent"`
	CheckedAt        time.Time `json:"checked_at"`
	Error            string    `json:"error,omitempty"`

	// Err carries the underlying fetch error; Error is its string form for
	// serialization.
	Err error `json:"-"`
}

// Reconciler periodically pulls the full task snapshot from the task source
// and backfills the due-events and reminders that the live path missed. It is
// the system's only recovery mechanism: there are no per-task retries, only
// the next cycle starting over from a fresh snapshot.
//
// The dedup discipline: each overdue task gets at most one task_due event and
// at most one reminder_sent record, enforced by existence checks against the
// event log plus the store's uniqueness constraint for the race window
// between check and append. The two checks are deliberately independent, so a
// task whose reminder append failed on one cycle remains eligible for a
// reminder on a later cycle even though its due-event already exists.
type Reconciler struct {
	source    tasksource.Source
	eventLog  store.EventLogStore
	publisher bus.Publisher
	scheduler ReminderScheduler
	interval  time.Duration
	logger    *slog.Logger
	metrics   metrics.Metrics

	// running is the single-flight guard: a tick that arrives while a cycle
	// is in progress is skipped rather than queued. Without this, two
	// concurrent cycles could both pass the existence checks for the same
	// task before either appends.
	running atomic.Bool

	mu         sync.Mutex
	lastResult *CycleResult
}

// New creates a Reconciler.
func New(
	source tasksource.Source,
	eventLog store.EventLogStore,
	publisher bus.Publisher,
	scheduler ReminderScheduler,
	interval time.Duration,
	m metrics.Metrics,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		source:    source,
		eventLog:  eventLog,
		publisher: publisher,
		scheduler: scheduler,
		interval:  interval,
		logger:    logger.With("component", "reconciler"),
		metrics:   m,
	}
}

// Run executes cycles on the configured interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	r.logger.Info("reconciler started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopping")
			return
		case <-ticker.C:
			r.RunCycle(ctx)
		}
	}
}

// RunCycle executes one guarded reconciliation cycle. If another cycle is
// already in flight the call is skipped and the previous result is returned.
func (r *Reconciler) RunCycle(ctx context.Context) CycleResult {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Warn("previous cycle still running, skipping tick")
		r.metrics.CycleSkipped()
		return r.LastResult()
	}
	defer r.running.Store(false)

	started := time.Now()
	result := r.cycle(ctx)

	r.mu.Lock()
	r.lastResult = &result
	r.mu.Unlock()

	if result.OK {
		r.metrics.CycleCompleted(time.Since(started))
		r.logger.Info("cycle completed",
			"task_due_processed", result.TaskDueProcessed,
			"reminders_sent", result.RemindersSent,
			"checked_at", result.CheckedAt)
	} else {
		r.metrics.CycleFailed()
		r.logger.Error("cycle aborted", "error", result.Err)
	}

	return result
}

// LastResult returns the most recent cycle result, or a zero result if no
// cycle has run yet.
func (r *Reconciler) LastResult() CycleResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastResult == nil {
		return CycleResult{}
	}
	return *r.lastResult
}

// cycle performs the fetch / normalize / due-event / reminder passes.
func (r *Reconciler) cycle(ctx context.Context) CycleResult {
	now := time.Now().UTC()

	tasks, err := r.source.Fetch(ctx)
	if err != nil {
		// Whole-cycle abort: no partial processing, nothing marked done.
		// The next tick retries from scratch.
		return CycleResult{OK: false, CheckedAt: now, Err: err, Error: err.Error()}
	}

	result := CycleResult{OK: true, CheckedAt: now}

	for _, t := range tasks {
		if !t.HasDueDate() {
			continue
		}

		due, err := t.DueAt()
		if err != nil {
			// One bad record never aborts the cycle.
			r.logger.Warn("skipping task with unparseable due date",
				"task_id", t.ID,
				"due_date", t.DueDate,
				"error", err)
			continue
		}

		if due.After(now) {
			continue
		}

		if r.emitDueEvent(ctx, t) {
			result.TaskDueProcessed++
		}
		if r.sendReminder(ctx, t, due, now) {
			result.RemindersSent++
		}
	}

	return result
}

// emitDueEvent publishes and logs the synthetic task_due event for an
// overdue task, unless one already exists. Returns whether a new event was
// produced.
func (r *Reconciler) emitDueEvent(ctx context.Context, t domain.Task) bool {
	exists, err := r.eventLog.HasEventForTask(ctx, string(events.KindTaskDue), t.ID)
	if err != nil {
		r.logger.Error("due-event existence check failed", "task_id", t.ID, "error", err)
		return false
	}
	if exists {
		return false
	}

	env, err := events.NewTaskDue(t)
	if err != nil {
		r.logger.Error("failed to build task_due envelope", "task_id", t.ID, "error", err)
		return false
	}

	if err := r.publisher.Publish(ctx, env); err != nil {
		// Not logged either, so the next cycle retries this task.
		r.logger.Error("failed to publish task_due", "task_id", t.ID, "error", err)
		return false
	}

	if err := r.eventLog.Append(ctx, string(events.KindTaskDue), &t.ID, env.Task); err != nil {
		if store.IsDuplicateEvent(err) {
			// A concurrent cycle or instance got there first.
			r.logger.Debug("task_due already logged concurrently", "task_id", t.ID)
			return false
		}
		// Published but not logged: the next cycle will publish again. A
		// duplicate bus event is the accepted cost of not holding a
		// transaction across the publish.
		r.logger.Error("failed to log task_due", "task_id", t.ID, "error", err)
		return false
	}

	r.metrics.DueEventEmitted()
	r.logger.Info("published task_due", "task_id", t.ID)
	return true
}

// sendReminder schedules an immediate reminder for an overdue task and
// eagerly logs reminder_sent, unless one is already logged. Returns whether
// a new reminder was produced.
//
// The reminder_sent record is appended at scheduling time, before the
// notifier actually runs: this guarantees at-most-one logged reminder per
// task at the cost of a silent miss if the process dies between the append
// and the delivery. The opposite ordering would instead produce duplicate
// deliveries; this system prefers missing one reminder over nagging twice.
func (r *Reconciler) sendReminder(ctx context.Context, t domain.Task, due, now time.Time) bool {
	exists, err := r.eventLog.HasEventForTask(ctx, string(events.KindReminderSent), t.ID)
	if err != nil {
		r.logger.Error("reminder existence check failed", "task_id", t.ID, "error", err)
		return false
	}
	if exists {
		return false
	}

	req := reminder.Request{TaskID: t.ID, Title: t.Title}
	if err := r.scheduler.Schedule(ctx, req); err != nil {
		r.logger.Error("failed to schedule reminder", "task_id", t.ID, "error", err)
		return false
	}

	payload, err := json.Marshal(events.ReminderSentPayload{
		TaskID:     t.ID,
		Title:      t.Title,
		DueDate:    t.DueDate,
		SentAt:     now,
		WasOverdue: due.Before(now),
	})
	if err != nil {
		r.logger.Error("failed to marshal reminder_sent payload", "task_id", t.ID, "error", err)
		return false
	}

	if err := r.eventLog.Append(ctx, string(events.KindReminderSent), &t.ID, payload); err != nil {
		if store.IsDuplicateEvent(err) {
			// A concurrent cycle also scheduled one; the duplicate delivery
			// is an accepted, non-fatal outcome.
			r.logger.Warn("reminder_sent already logged concurrently", "task_id", t.ID)
			return false
		}
		// Scheduled but not logged: the reminder may fire unlogged and the
		// next cycle will schedule another.
		r.logger.Error("failed to log reminder_sent", "task_id", t.ID, "error", err)
		return false
	}

	r.logger.Info("reminder scheduled", "task_id", t.ID, "was_overdue", due.Before(now))
	return true
}
