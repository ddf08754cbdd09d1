package job_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/timeclock/internal/audit"
	"github.com/Additional-Code/timeclock/internal/database/dbtest"
	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/persistence"
	"github.com/Additional-Code/timeclock/internal/repository/customer"
	"github.com/Additional-Code/timeclock/internal/repository/developer"
	"github.com/Additional-Code/timeclock/internal/repository/job"
)

type fixture struct {
	jobs      *job.Repository
	customers *customer.Repository
	customer  *entity.Customer
	developer *entity.Developer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	session := persistence.NewSession(dbtest.Open(t), audit.New(), nil)

	f := &fixture{
		jobs:      job.NewRepository(session),
		customers: customer.NewRepository(session),
	}
	var err error
	f.customer, err = f.customers.Save(ctx, entity.NewCustomerBuilder().CustomerID(150).Name("Acme").Build())
	require.NoError(t, err)
	f.developer, err = developer.NewRepository(session).Save(ctx,
		entity.NewDeveloperBuilder().DeveloperID(100).Forename("Megan").LastName("Fox").Build())
	require.NoError(t, err)
	return f
}

func (f *fixture) save(t *testing.T, orderNumber int64, project, status string) *entity.Job {
	t.Helper()
	j, err := f.jobs.Save(context.Background(), entity.NewJobBuilder().
		OrderNumber(orderNumber).
		ProjectName(project).
		BranchName("main").
		PackageName("timeclock").
		ClassName("Clock").
		Status(status).
		Customer(f.customer).
		Developer(f.developer).
		Build())
	require.NoError(t, err)
	return j
}

func TestRepository_Finders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.save(t, 1382, "timeclock", entity.JobStatusOpen)
	f.save(t, 1383, "timeclock", entity.JobStatusDone)
	f.save(t, 1384, "payroll", entity.JobStatusOpen)
	f.jobs.Clear()

	got, err := f.jobs.GetByOrderNumber(ctx, 1382)
	require.NoError(t, err)
	assert.Equal(t, "timeclock", got.ProjectName)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Acme", got.Customer.Name)
	require.NotNil(t, got.Developer)
	assert.Equal(t, "Fox", got.Developer.LastName)

	byProject, err := f.jobs.GetAllByProjectName(ctx, "timeclock")
	require.NoError(t, err)
	require.Len(t, byProject, 2)
	assert.Equal(t, int64(1382), byProject[0].OrderNumber)
	assert.Equal(t, int64(1383), byProject[1].OrderNumber)

	open, err := f.jobs.GetAllByStatus(ctx, entity.JobStatusOpen)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	byCustomer, err := f.jobs.GetAllByCustomerID(ctx, 150)
	require.NoError(t, err)
	assert.Len(t, byCustomer, 3)

	byDeveloper, err := f.jobs.GetAllByDeveloperID(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, byDeveloper, 3)

	none, err := f.jobs.GetAllByDeveloperID(ctx, 101)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.jobs.GetByOrderNumber(ctx, 9999)
	assert.ErrorIs(t, err, persistence.ErrEmptyResult)
}

func TestRepository_NarrowUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.save(t, 1382, "timeclock", entity.JobStatusOpen)

	updated, err := f.jobs.UpdateStatusByOrderNumber(ctx, 1382, entity.JobStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusInProgress, updated.Status)
	assert.Equal(t, 1, updated.Version)

	updated, err = f.jobs.UpdateCommentByOrderNumber(ctx, 1382, "needs review")
	require.NoError(t, err)
	assert.Equal(t, "needs review", updated.Comment)
	assert.Equal(t, 2, updated.Version)

	f.jobs.Clear()
	got, err := f.jobs.GetByOrderNumber(ctx, 1382)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusInProgress, got.Status)
	assert.Equal(t, "needs review", got.Comment)
	assert.Equal(t, 2, got.Version)
}

func TestRepository_RemoveByOrderNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.save(t, 1382, "timeclock", entity.JobStatusOpen)

	err := f.customers.Remove(ctx, f.customer)
	require.ErrorIs(t, err, persistence.ErrConstraintViolation)

	ok, err := f.jobs.IsExistWithOrderNumber(ctx, 1382)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.jobs.RemoveByOrderNumber(ctx, 1382))

	ok, err = f.jobs.IsExistWithOrderNumber(ctx, 1382)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.customers.Remove(ctx, f.customer))
}
