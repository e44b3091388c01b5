package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"      validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"    validate:"required"`
	Kafka      KafkaConfig      `mapstructure:"kafka"       validate:"required"`
	TaskSource TaskSourceConfig `mapstructure:"task_source" validate:"required"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"  validate:"required"`
	Reminder   ReminderConfig   `mapstructure:"reminder"    validate:"required"`
}

// ServerConfig contains the monitoring HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the notification log database settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// KafkaConfig contains the event bus connection settings.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" validate:"required,min=1,dive,hostname_port"`
	Topic   string   `mapstructure:"topic"   validate:"required"`
	Group   string   `mapstructure:"group"   validate:"required"`
}

// TaskSourceConfig describes how to reach the task registry's pull API.
type TaskSourceConfig struct {
	BaseURL      string        `mapstructure:"base_url"      validate:"required,url"`
	FetchLimit   int           `mapstructure:"fetch_limit"   validate:"required,gt=0"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"required,gt=0"`
}

// ReconcilerConfig controls the periodic reconciliation job.
type ReconcilerConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"required,gt=0"`
}

// ReminderConfig controls the in-process reminder scheduler.
type ReminderConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gt=0"`
	// CreatedDelay is how long after a task_created event the reminder fires.
	CreatedDelay time.Duration `mapstructure:"created_delay" validate:"gte=0"`
}
