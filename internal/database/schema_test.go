package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/timeclock/internal/database"
	"github.com/Additional-Code/timeclock/internal/database/dbtest"
)

func TestCreateSchema_TablesCreated(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	for _, name := range []string{"customers", "developers", "jobs", "pays", "working_hours"} {
		var count int
		err := db.NewRaw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(ctx, &count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, name)
	}

	// idempotent
	require.NoError(t, database.CreateSchema(ctx, db))
}

func TestDropSchema(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	require.NoError(t, database.DropSchema(ctx, db))

	var count int
	err := db.NewRaw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('customers', 'jobs')").Scan(ctx, &count)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Len(t, database.Models(), 5)
}
