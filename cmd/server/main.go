// Package main implements the entry point for the task notification service:
// it consumes task lifecycle events, maintains the append-only notification
// log, schedules reminders, and reconciles missed due-events against the task
// registry.
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/avolkova/tasknotify/internal/config"
	"github.com/avolkova/tasknotify/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start notification service: %v", err)
	}
}

// run loads configuration, wires the application, and blocks until shutdown.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"kafka_topic", cfg.Kafka.Topic,
		"reconcile_interval", cfg.Reconciler.Interval)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.run(ctx)
}
