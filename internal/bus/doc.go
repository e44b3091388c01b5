// Package bus defines the publish/subscribe transport interfaces over which
// task lifecycle envelopes travel between services. The Kafka implementation
// lives in internal/platform/kafka; tests substitute in-memory fakes.
package bus
