// Package reminder implements the one-shot reminder scheduler. A reminder is
// executed at most once per request, immediately or after a delay, on a small
// worker pool; deduplication across requests and durability across restarts
// are explicitly out of this package's contract.
package reminder
