package migration_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
	"github.com/Additional-Code/timeclock/internal/database"
	"github.com/Additional-Code/timeclock/internal/migration"
)

func openEmpty(t *testing.T) *bun.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	conns, err := database.Open(config.Database{Driver: "sqlite", WriterDSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conns.Writer.Close() })
	return conns.Writer
}

func tableCount(t *testing.T, db *bun.DB) int {
	t.Helper()
	var n int
	err := db.NewRaw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('customers', 'developers', 'jobs', 'pays', 'working_hours')").
		Scan(context.Background(), &n)
	require.NoError(t, err)
	return n
}

func TestMigrator_UpDown(t *testing.T) {
	db := openEmpty(t)
	ctx := context.Background()

	m, err := migration.NewWithDB("sqlite", db, nil)
	require.NoError(t, err)

	require.NoError(t, m.Up(ctx))
	assert.Equal(t, 5, tableCount(t, db))
	version, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	require.NoError(t, m.Up(ctx), "nothing left to apply")

	require.NoError(t, m.Down(ctx, 1, false))
	version, err = m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, m.Down(ctx, 0, true))
	assert.Zero(t, tableCount(t, db))
}

func TestNewWithDB_UnknownDriver(t *testing.T) {
	_, err := migration.NewWithDB("oracle", nil, nil)
	assert.ErrorContains(t, err, "unsupported goose dialect")
}
