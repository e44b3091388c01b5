package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take precedence
// over values from the config file and use the NOTIFY_ prefix with nested keys
// joined by underscores (e.g. NOTIFY_DATABASE_URL, NOTIFY_KAFKA_BROKERS).
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("NOTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values so the service runs with nothing but
// a database URL, broker list and task source URL provided.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Required settings get empty defaults so viper registers the keys and
	// AutomaticEnv can fill them; validation rejects them if still empty.
	v.SetDefault("database.url", "")
	v.SetDefault("task_source.base_url", "")
	v.SetDefault("kafka.brokers", []string{})

	v.SetDefault("kafka.topic", "tasks")
	v.SetDefault("kafka.group", "notification-service")

	v.SetDefault("task_source.fetch_limit", 1000)
	v.SetDefault("task_source.fetch_timeout", 10*time.Second)

	v.SetDefault("reconciler.interval", 30*time.Second)

	v.SetDefault("reminder.worker_count", 2)
	v.SetDefault("reminder.queue_size", 100)
	v.SetDefault("reminder.created_delay", 10*time.Second)
}
