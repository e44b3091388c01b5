package reminder

import (
	"context"
	"log/slog"
	"time"
)

// Request describes one reminder to deliver. Requests are ephemeral and
// in-memory only; a request lost to a crash is re-derived (and re-deduped)
// by the next reconciliation cycle.
type Request struct {
	TaskID int64
	Title  string
	Delay  time.Duration
}

// Result is the record produced by a delivered reminder.
type Result struct {
	TaskID int64  `json:"task_id"`
	Title  string `json:"title"`
}

// Notifier delivers a reminder to the user. Implementations may send email,
// SMS, push notifications and so on.
type Notifier interface {
	Notify(ctx context.Context, req Request) (Result, error)
}

// LogNotifier is the default Notifier: it records the reminder in the
// structured log. It stands in for a real email/SMS integration.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "log_notifier")}
}

// Notify logs the reminder and returns its result record.
func (n *LogNotifier) Notify(ctx context.Context, req Request) (Result, error) {
	n.logger.Info("reminder",
		"task_id", req.TaskID,
		"title", req.Title)
	return Result{TaskID: req.TaskID, Title: req.Title}, nil
}
