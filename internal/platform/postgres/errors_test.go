package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/avolkova/tasknotify/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, MapError(nil))
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, MapError(sql.ErrNoRows), store.ErrNotFound)
	})

	t.Run("unique violation maps to duplicate event", func(t *testing.T) {
		t.Parallel()

		pgErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "notification_logs_dedup_idx"}
		mapped := MapError(fmt.Errorf("insert: %w", pgErr))

		assert.ErrorIs(t, mapped, store.ErrDuplicateEvent)
		assert.True(t, store.IsDuplicateEvent(mapped))
	})

	t.Run("not null violation maps to invalid record", func(t *testing.T) {
		t.Parallel()

		pgErr := &pgconn.PgError{Code: notNullViolationCode, ColumnName: "event"}
		assert.ErrorIs(t, MapError(pgErr), store.ErrInvalidRecord)
	})

	t.Run("unrecognized error passes through", func(t *testing.T) {
		t.Parallel()

		original := errors.New("connection reset")
		assert.Equal(t, original, MapError(original))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("plain error")))
}
