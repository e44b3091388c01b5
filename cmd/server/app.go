package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/avolkova/tasknotify/internal/api"
	"github.com/avolkova/tasknotify/internal/config"
	"github.com/avolkova/tasknotify/internal/consumer"
	"github.com/avolkova/tasknotify/internal/platform/kafka"
	"github.com/avolkova/tasknotify/internal/platform/metrics"
	"github.com/avolkova/tasknotify/internal/platform/postgres"
	"github.com/avolkova/tasknotify/internal/reconciler"
	"github.com/avolkova/tasknotify/internal/reminder"
	"github.com/avolkova/tasknotify/internal/tasksource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"
)

// application holds the wired components of the notification service.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	db          *sql.DB
	kafkaClient *kgo.Client
	registry    *prometheus.Registry
	scheduler   *reminder.Scheduler
	consumer    *consumer.Consumer
	reconciler  *reconciler.Reconciler
	monitoring  *api.MonitoringHandler
}

// newApplication wires all service components together. The caller owns the
// returned application's lifecycle via run.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := applyMigrations(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	kafkaClient, err := kafka.NewClient(cfg.Kafka)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to kafka: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewPromMetrics(registry)

	eventLog := postgres.NewEventLogStore(db)
	publisher := kafka.NewPublisher(kafkaClient, cfg.Kafka.Topic)
	subscriber := kafka.NewSubscriber(kafkaClient, logger)

	notifier := reminder.NewLogNotifier(logger)
	scheduler := reminder.NewScheduler(reminder.SchedulerConfig{
		WorkerCount: cfg.Reminder.WorkerCount,
		QueueSize:   cfg.Reminder.QueueSize,
	}, notifier, m, logger)

	source := tasksource.NewClient(cfg.TaskSource)

	rec := reconciler.New(source, eventLog, publisher, scheduler, cfg.Reconciler.Interval, m, logger)
	cons := consumer.New(subscriber, eventLog, scheduler, cfg.Reminder.CreatedDelay, m, logger)
	monitoring := api.NewMonitoringHandler(eventLog, db, rec, logger)

	return &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		kafkaClient: kafkaClient,
		registry:    registry,
		scheduler:   scheduler,
		consumer:    cons,
		reconciler:  rec,
		monitoring:  monitoring,
	}, nil
}

// run starts the background components and the HTTP server, then blocks
// until ctx is cancelled or a component fails terminally.
func (app *application) run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.scheduler.Start()

	var wg sync.WaitGroup

	errCh := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.consumer.Run(runCtx); err != nil {
			select {
			case errCh <- fmt.Errorf("consumer failed: %w", err):
			default:
			}
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.reconciler.Run(runCtx)
	}()

	serverErr := app.startHTTPServer(runCtx, app.setupRouter())

	cancel()
	wg.Wait()
	app.cleanup()

	select {
	case err := <-errCh:
		return err
	default:
	}
	return serverErr
}

// cleanup releases external resources in reverse dependency order.
func (app *application) cleanup() {
	app.scheduler.Stop()
	app.kafkaClient.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database connection", "error", err)
	}

	app.logger.Info("Application shutdown complete")
}
