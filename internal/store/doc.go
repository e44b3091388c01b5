// Package store defines the persistence interfaces and common error types
// used throughout the application. Concrete implementations live under
// internal/platform (e.g. the PostgreSQL event log store); components depend
// only on these interfaces so they can be tested with in-memory fakes.
package store
