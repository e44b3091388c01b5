// Package reconciler implements the periodic reconciliation job, the
// system's safety net against lost or delayed lifecycle events. Each cycle
// pulls the full task snapshot, finds overdue tasks, and backfills the
// task_due event and reminder that the live path should have produced,
// deduplicating against the append-only event log.
package reconciler
