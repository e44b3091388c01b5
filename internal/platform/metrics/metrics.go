// Package metrics defines the observability counters for the notification
// service and their Prometheus implementation.
package metrics

import "time"

// Metrics receives counters from the consumer, scheduler and reconciler.
// A Prometheus implementation is provided; tests use Noop.
type Metrics interface {
	// Reconciliation cycle outcomes
	CycleCompleted(duration time.Duration)
	CycleFailed()
	CycleSkipped()

	// Work emitted by reconciliation
	DueEventEmitted()
	ReminderScheduled()

	// Reminder execution outcomes
	ReminderSent()
	ReminderFailed()

	// Live consumer message outcomes
	MessageHandled()
	MessageDropped()
}

// Noop is a Metrics implementation that discards everything.
type Noop struct{}

func (Noop) CycleCompleted(time.Duration) {}
func (Noop) CycleFailed()                 {}
func (Noop) CycleSkipped()                {}
func (Noop) DueEventEmitted()             {}
func (Noop) ReminderScheduled()           {}
func (Noop) ReminderSent()                {}
func (Noop) ReminderFailed()              {}
func (Noop) MessageHandled()              {}
func (Noop) MessageDropped()              {}
