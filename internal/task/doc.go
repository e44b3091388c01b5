// Package task provides an in-memory bounded task queue and a worker pool
// for executing background work. The queue is deliberately non-durable:
// pending tasks die with the process, and callers that need delivery
// guarantees must reconcile externally.
package task
