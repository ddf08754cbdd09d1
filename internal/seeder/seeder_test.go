package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/audit"
	"github.com/Additional-Code/timeclock/internal/database/dbtest"
	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/timeclock"
)

func TestSeeder_Demo(t *testing.T) {
	db := dbtest.Open(t)
	factory := timeclock.NewFactory(db, audit.New(audit.WithActor(func() string { return "seeder" })), nil, zap.NewNop())
	s := New(factory, nil)
	ctx := context.Background()

	created, err := s.Demo(ctx)
	require.NoError(t, err)
	// per key: customer, developer, three working hours, job, pay
	assert.Equal(t, 14, created)

	again, err := s.Demo(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)

	err = factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		developers, err := svc.Developers.GetAllByForename(ctx, "Megan")
		require.NoError(t, err)
		assert.Len(t, developers, 2)

		customer, err := svc.Customers.GetByName(ctx, "Company100")
		require.NoError(t, err)
		assert.Equal(t, "Secretary", customer.Contact)
		assert.Equal(t, "seeder", customer.CreatedBy)

		jobs, err := svc.Jobs.GetAllByStatus(ctx, entity.JobStatusInProgress)
		require.NoError(t, err)
		assert.Len(t, jobs, 2)

		payable, err := svc.Pays.IsPayable(ctx, entity.FormatPayID(101, 101, 1))
		require.NoError(t, err)
		assert.True(t, payable)

		hours, err := svc.WorkingHours.GetAllByDeveloperID(ctx, 101)
		require.NoError(t, err)
		assert.Len(t, hours, 3)
		return nil
	})
	require.NoError(t, err)
}
