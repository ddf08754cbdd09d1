// Package dbtest opens throwaway SQLite databases with the timeclock schema.
package dbtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
	"github.com/Additional-Code/timeclock/internal/database"
)

// Open returns a private in-memory database with all tables created. It is
// closed when the test finishes.
func Open(t testing.TB) *bun.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	conns, err := database.Open(config.Database{Driver: "sqlite", WriterDSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conns.Close() })

	require.NoError(t, database.CreateSchema(context.Background(), conns.Writer))
	return conns.Writer
}
