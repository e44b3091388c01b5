// Package tasksource provides the HTTP client for the task registry's pull
// interface. The registry is an external collaborator: this service only
// reads snapshots from it and never mutates tasks.
package tasksource
