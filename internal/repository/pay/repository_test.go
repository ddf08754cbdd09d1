package pay_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/timeclock/internal/audit"
	"github.com/Additional-Code/timeclock/internal/database/dbtest"
	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/persistence"
	"github.com/Additional-Code/timeclock/internal/repository/customer"
	"github.com/Additional-Code/timeclock/internal/repository/developer"
	"github.com/Additional-Code/timeclock/internal/repository/job"
	"github.com/Additional-Code/timeclock/internal/repository/pay"
)

type fixture struct {
	pays *pay.Repository
	jobs *job.Repository
}

func newFixture(t *testing.T, orderNumbers ...int64) *fixture {
	t.Helper()
	ctx := context.Background()
	session := persistence.NewSession(dbtest.Open(t), audit.New(), nil)

	c, err := customer.NewRepository(session).Save(ctx, entity.NewCustomerBuilder().CustomerID(150).Name("Acme").Build())
	require.NoError(t, err)
	d, err := developer.NewRepository(session).Save(ctx, entity.NewDeveloperBuilder().DeveloperID(100).Forename("Megan").Build())
	require.NoError(t, err)

	f := &fixture{pays: pay.NewRepository(session), jobs: job.NewRepository(session)}
	for _, n := range orderNumbers {
		_, err := f.jobs.Save(ctx, entity.NewJobBuilder().
			OrderNumber(n).ProjectName("timeclock").Status(entity.JobStatusDone).
			Customer(c).Developer(d).Build())
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) save(t *testing.T, orderNumber int64, amount string, payable, paid bool) *entity.Pay {
	t.Helper()
	p, err := f.pays.Save(context.Background(), entity.NewPayBuilder().
		PayID(entity.FormatPayID(150, orderNumber, 1)).
		Payment(decimal.RequireFromString(amount)).
		Currency("EUR").
		PaymentTime(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)).
		Payable(payable).
		Paid(paid).
		OrderNumber(orderNumber).
		Build())
	require.NoError(t, err)
	return p
}

func TestFormatPayID(t *testing.T) {
	assert.Equal(t, "0150-1382-0001", entity.FormatPayID(150, 1382, 1))
}

func TestRepository_Finders(t *testing.T) {
	f := newFixture(t, 1382, 1383)
	ctx := context.Background()
	f.save(t, 1382, "1200.50", true, false)
	f.save(t, 1383, "80", false, true)
	f.pays.Clear()

	got, err := f.pays.GetByPayID(ctx, "0150-1382-0001")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1200.50").Equal(got.Payment), got.Payment.String())
	assert.Equal(t, "EUR", got.Currency)
	require.NotNil(t, got.Job)
	assert.Equal(t, int64(1382), got.Job.OrderNumber)

	byOrder, err := f.pays.GetByOrderNumber(ctx, 1383)
	require.NoError(t, err)
	assert.Equal(t, "0150-1383-0001", byOrder.PayID)

	payable, err := f.pays.GetAllByPayable(ctx, true)
	require.NoError(t, err)
	require.Len(t, payable, 1)
	assert.Equal(t, int64(1382), payable[0].OrderNumber)

	paid, err := f.pays.GetAllByPaid(ctx, true)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, int64(1383), paid[0].OrderNumber)

	_, err = f.pays.GetByPayID(ctx, "0000-0000-0000")
	assert.ErrorIs(t, err, persistence.ErrEmptyResult)
}

func TestRepository_FlagUpdates(t *testing.T) {
	f := newFixture(t, 1382)
	ctx := context.Background()
	p := f.save(t, 1382, "1200.50", false, false)

	ok, err := f.pays.IsPayable(ctx, p.PayID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.pays.UpdatePayableByPayID(ctx, p.PayID, true)
	require.NoError(t, err)
	updated, err := f.pays.UpdatePaidByPayID(ctx, p.PayID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	f.pays.Clear()
	ok, err = f.pays.IsPayable(ctx, p.PayID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.pays.IsPaid(ctx, p.PayID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.pays.IsPaid(ctx, "missing")
	assert.ErrorIs(t, err, persistence.ErrEmptyResult)
}

func TestRepository_UpdatePayment(t *testing.T) {
	f := newFixture(t, 1382)
	ctx := context.Background()
	p := f.save(t, 1382, "1200.50", true, false)

	_, err := f.pays.UpdatePaymentByPayID(ctx, p.PayID, decimal.RequireFromString("1500.25"))
	require.NoError(t, err)

	f.pays.Clear()
	got, err := f.pays.GetByPayID(ctx, p.PayID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1500.25").Equal(got.Payment), got.Payment.String())
	assert.Equal(t, 1, got.Version)
}

func TestRepository_RemoveOrder(t *testing.T) {
	f := newFixture(t, 1382)
	ctx := context.Background()
	p := f.save(t, 1382, "10", true, false)

	err := f.jobs.RemoveByOrderNumber(ctx, 1382)
	require.ErrorIs(t, err, persistence.ErrConstraintViolation)

	require.NoError(t, f.pays.RemoveByPayID(ctx, p.PayID))
	ok, err := f.pays.IsExistWithPayID(ctx, p.PayID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.jobs.RemoveByOrderNumber(ctx, 1382))
}

func TestRepository_OnePayPerJob(t *testing.T) {
	f := newFixture(t, 1382)
	f.save(t, 1382, "10", true, false)

	_, err := f.pays.Save(context.Background(), entity.NewPayBuilder().
		PayID(entity.FormatPayID(150, 1382, 2)).
		Payment(decimal.NewFromInt(5)).
		OrderNumber(1382).
		Build())
	assert.ErrorIs(t, err, persistence.ErrConstraintViolation)
}
