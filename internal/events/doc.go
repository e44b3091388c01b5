// Package events defines the wire format of task lifecycle events and the
// typed views this service takes of them.
//
// Producers and consumers exchange a loose JSON envelope ({"event", "task"})
// over the bus; this package classifies event names into known kinds with an
// unknown-kind fallback, and decodes payloads tolerantly so that envelopes
// with extra fields pass through to the audit log unchanged.
package events
