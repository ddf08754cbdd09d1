package customer_test

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
)

func newRepository(t *testing.T) *customer.Repository {
	t.Helper()
	return customer.NewRepository(persistence.NewSession(dbtest.Open(t), audit.New(), nil))
}

func save(t *testing.T, repo *customer.Repository, customerID int64, name string) *entity.Customer {
	t.Helper()
	c, err := repo.Save(context.Background(), entity.NewCustomerBuilder().
		CustomerID(customerID).
		Name(name).
		Address(entity.NewAddressBuilder().Country("HU").City("Budapest").Zip("1011").Build()).
		Build())
	require.NoError(t, err)
	return c
}

func TestRepository_GetByCustomerIDMiss(t *testing.T) {
	repo := newRepository(t)

	got, err := repo.GetByCustomerID(context.Background(), 9999)
	require.ErrorIs(t, err, persistence.ErrEmptyResult)
	assert.Nil(t, got)
}

func TestRepository_GetByCustomerIDAndName(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	saved := save(t, repo, 150, "Acme")

	got, err := repo.GetByCustomerID(ctx, 150)
	require.NoError(t, err)
	assert.Same(t, saved, got)

	repo.Clear()
	got, err = repo.GetByName(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, int64(150), got.CustomerID)
	assert.Equal(t, "1011", got.Address.Zip)
}

func TestRepository_UpdateContactByCustomerID(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	save(t, repo, 150, "Acme")

	updated, err := repo.UpdateContactByCustomerID(ctx, 150, "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", updated.Contact)
	assert.Equal(t, 1, updated.Version)

	_, err = repo.UpdateContactByCustomerID(ctx, 151, "Nobody")
	assert.ErrorIs(t, err, persistence.ErrEmptyResult)
}

func TestRepository_RemoveByCustomerID(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	save(t, repo, 150, "Acme")

	ok, err := repo.IsExistWithCustomerID(ctx, 150)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.RemoveByCustomerID(ctx, 150))

	ok, err = repo.IsExistWithCustomerID(ctx, 150)
	require.NoError(t, err)
	assert.False(t, ok)

	err = repo.RemoveByCustomerID(ctx, 150)
	assert.ErrorIs(t, err, persistence.ErrEmptyResult)
}

func TestRepository_DuplicateCustomerID(t *testing.T) {
	repo := newRepository(t)
	save(t, repo, 150, "Acme")

	_, err := repo.Save(context.Background(), entity.NewCustomerBuilder().CustomerID(150).Name("Copycat").Build())
	assert.ErrorIs(t, err, persistence.ErrConstraintViolation)
}
