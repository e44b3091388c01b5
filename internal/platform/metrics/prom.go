package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromMetrics implements Metrics on a Prometheus registry.
type PromMetrics struct {
	cyclesCompleted    prometheus.Counter
	cyclesFailed       prometheus.Counter
	cyclesSkipped      prometheus.Counter
	cycleDuration      prometheus.Histogram
	dueEventsEmitted   prometheus.Counter
	remindersScheduled prometheus.Counter
	remindersSent      prometheus.Counter
	remindersFailed    prometheus.Counter
	messagesHandled    prometheus.Counter
	messagesDropped    prometheus.Counter
}

// NewPromMetrics creates the counters and registers them with reg.
func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	m := &PromMetrics{
		cyclesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reconciler_cycles_completed_total",
			Help: "Number of reconciliation cycles that ran to completion",
		}),
		cyclesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reconciler_cycles_failed_total",
			Help: "Number of reconciliation cycles aborted by a fetch failure",
		}),
		cyclesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reconciler_cycles_skipped_total",
			Help: "Number of timer ticks skipped because a cycle was still running",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reconciler_cycle_duration_seconds",
			Help:    "Duration of completed reconciliation cycles",
			Buckets: prometheus.DefBuckets,
		}),
		dueEventsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reconciler_due_events_emitted_total",
			Help: "Number of synthetic task_due events published",
		}),
		remindersScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminders_scheduled_total",
			Help: "Number of reminders handed to the scheduler",
		}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Number of reminder actions that executed successfully",
		}),
		remindersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminders_failed_total",
			Help: "Number of reminder actions that failed",
		}),
		messagesHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "consumer_messages_handled_total",
			Help: "Number of bus messages handled by the live consumer",
		}),
		messagesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "consumer_messages_dropped_total",
			Help: "Number of malformed bus messages dropped",
		}),
	}
	reg.MustRegister(
		m.cyclesCompleted, m.cyclesFailed, m.cyclesSkipped, m.cycleDuration,
		m.dueEventsEmitted, m.remindersScheduled,
		m.remindersSent, m.remindersFailed,
		m.messagesHandled, m.messagesDropped,
	)
	return m
}

func (m *PromMetrics) CycleCompleted(d time.Duration) {
	m.cyclesCompleted.Inc()
	m.cycleDuration.Observe(d.Seconds())
}
func (m *PromMetrics) CycleFailed()       { m.cyclesFailed.Inc() }
func (m *PromMetrics) CycleSkipped()      { m.cyclesSkipped.Inc() }
func (m *PromMetrics) DueEventEmitted()   { m.dueEventsEmitted.Inc() }
func (m *PromMetrics) ReminderScheduled() { m.remindersScheduled.Inc() }
func (m *PromMetrics) ReminderSent()      { m.remindersSent.Inc() }
func (m *PromMetrics) ReminderFailed()    { m.remindersFailed.Inc() }
func (m *PromMetrics) MessageHandled()    { m.messagesHandled.Inc() }
func (m *PromMetrics) MessageDropped()    { m.messagesDropped.Inc() }
