package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/avolkova/tasknotify/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "Info"} {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: level})
			require.NoError(t, err)
			assert.NotNil(t, logger)
		}
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: "verbose"})
		require.NoError(t, err)
		require.NotNil(t, logger)

		assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
		assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	})
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	t.Run("returns stored logger", func(t *testing.T) {
		t.Parallel()

		stored := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := WithLogger(context.Background(), stored)

		assert.Same(t, stored, FromContext(ctx))
	})

	t.Run("falls back to default when absent", func(t *testing.T) {
		t.Parallel()

		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("FromContextOrDefault prefers stored logger", func(t *testing.T) {
		t.Parallel()

		stored := slog.New(slog.NewTextHandler(io.Discard, nil))
		fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

		assert.Same(t, stored, FromContextOrDefault(WithLogger(context.Background(), stored), fallback))
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	})
}
