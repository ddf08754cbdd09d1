package pay

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/persistence"
)

// Descriptor maps pay records for the generic gateway.
var Descriptor = persistence.Descriptor[entity.Pay, int64]{
	Name:      "Pay",
	Table:     "pays",
	KeyColumn: "id",
	Immutable: []string{"pay_id", "order_number"},
	Relations: []string{"Job"},
	Key:       func(p *entity.Pay) int64 { return p.ID },
}

// Gateway is the generic CRUD gateway instantiated for pay records.
type Gateway = persistence.Gateway[entity.Pay, *entity.Pay, int64]

// Repository adds pay finders and narrow updates to the gateway.
type Repository struct {
	*Gateway
}

// NewRepository binds a pay repository to a session.
func NewRepository(session *persistence.Session) *Repository {
	return &Repository{Gateway: persistence.NewGateway[entity.Pay, *entity.Pay](session, Descriptor)}
}

func where(column string, value any) persistence.Filter {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(column), value).OrderExpr("?TableAlias.pay_id")
	}
}

// GetByPayID fails with persistence.ErrEmptyResult on a miss.
func (r *Repository) GetByPayID(ctx context.Context, payID string) (*entity.Pay, error) {
	return r.FindOne(ctx, where("pay_id", payID))
}

// GetByOrderNumber returns the pay record generated by a job.
func (r *Repository) GetByOrderNumber(ctx context.Context, orderNumber int64) (*entity.Pay, error) {
	return r.FindOne(ctx, where("order_number", orderNumber))
}

// GetAllByPayable lists pay records by their payable flag.
func (r *Repository) GetAllByPayable(ctx context.Context, payable bool) ([]*entity.Pay, error) {
	return r.FindAll(ctx, where("payable", payable))
}

// GetAllByPaid lists pay records by their paid flag.
func (r *Repository) GetAllByPaid(ctx context.Context, paid bool) ([]*entity.Pay, error) {
	return r.FindAll(ctx, where("paid", paid))
}

// UpdatePaymentByPayID replaces the amount of a pay record.
func (r *Repository) UpdatePaymentByPayID(ctx context.Context, payID string, payment decimal.Decimal) (*entity.Pay, error) {
	return r.modify(ctx, payID, func(b *entity.PayBuilder) { b.Payment(payment) })
}

// UpdatePayableByPayID flips the payable flag.
func (r *Repository) UpdatePayableByPayID(ctx context.Context, payID string, payable bool) (*entity.Pay, error) {
	return r.modify(ctx, payID, func(b *entity.PayBuilder) { b.Payable(payable) })
}

// UpdatePaidByPayID flips the paid flag.
func (r *Repository) UpdatePaidByPayID(ctx context.Context, payID string, paid bool) (*entity.Pay, error) {
	return r.modify(ctx, payID, func(b *entity.PayBuilder) { b.Paid(paid) })
}

func (r *Repository) modify(ctx context.Context, payID string, change func(*entity.PayBuilder)) (*entity.Pay, error) {
	p, err := r.GetByPayID(ctx, payID)
	if err != nil {
		return nil, err
	}
	b := entity.PayBuilderFrom(p)
	change(b)
	return r.Update(ctx, b.Build())
}

// RemoveByPayID deletes a pay record.
func (r *Repository) RemoveByPayID(ctx context.Context, payID string) error {
	p, err := r.GetByPayID(ctx, payID)
	if err != nil {
		return err
	}
	return r.Remove(ctx, p)
}

// IsExistWithPayID reports whether a pay record carries the id.
func (r *Repository) IsExistWithPayID(ctx context.Context, payID string) (bool, error) {
	_, err := r.GetByPayID(ctx, payID)
	if errors.Is(err, persistence.ErrEmptyResult) {
		return false, nil
	}
	return err == nil, err
}

// IsPayable reports the payable flag of a pay record.
func (r *Repository) IsPayable(ctx context.Context, payID string) (bool, error) {
	p, err := r.GetByPayID(ctx, payID)
	if err != nil {
		return false, err
	}
	return p.Payable, nil
}

// IsPaid reports the paid flag of a pay record.
func (r *Repository) IsPaid(ctx context.Context, payID string) (bool, error) {
	p, err := r.GetByPayID(ctx, payID)
	if err != nil {
		return false, err
	}
	return p.Paid, nil
}
