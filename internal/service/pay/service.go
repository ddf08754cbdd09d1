package pay

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/events"
	"github.com/Additional-Code/timeclock/internal/persistence"
	repo "github.com/Additional-Code/timeclock/internal/repository/pay"
	"github.com/Additional-Code/timeclock/internal/service/crud"
	"github.com/Additional-Code/timeclock/internal/service/txn"
)

// Service exposes pay operations, each in its own transaction.
type Service struct {
	crud.Service[entity.Pay, *entity.Pay]

	repo *repo.Repository
}

// NewService wires a pay service.
func NewService(runner *txn.Runner, pays *repo.Repository, publisher events.Publisher) *Service {
	return &Service{
		Service: crud.New(runner, pays.Gateway, publisher, func(p *entity.Pay) string { return p.PayID }),
		repo:    pays,
	}
}

// RemoveAll deletes every pay record.
func (s *Service) RemoveAll(ctx context.Context) error {
	return s.Service.RemoveAll(ctx, nil)
}

// GetByPayID fails with a not found error on a miss.
func (s *Service) GetByPayID(ctx context.Context, payID string) (*entity.Pay, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetByPayID"), func(ctx context.Context) (*entity.Pay, error) {
		return s.repo.GetByPayID(ctx, payID)
	})
}

// GetByOrderNumber returns the pay record of a job.
func (s *Service) GetByOrderNumber(ctx context.Context, orderNumber int64) (*entity.Pay, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetByOrderNumber"), func(ctx context.Context) (*entity.Pay, error) {
		return s.repo.GetByOrderNumber(ctx, orderNumber)
	})
}

// GetAllByPayable lists pay records by their payable flag.
func (s *Service) GetAllByPayable(ctx context.Context, payable bool) ([]*entity.Pay, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetAllByPayable"), func(ctx context.Context) ([]*entity.Pay, error) {
		return s.repo.GetAllByPayable(ctx, payable)
	})
}

// GetAllByPaid lists pay records by their paid flag.
func (s *Service) GetAllByPaid(ctx context.Context, paid bool) ([]*entity.Pay, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetAllByPaid"), func(ctx context.Context) ([]*entity.Pay, error) {
		return s.repo.GetAllByPaid(ctx, paid)
	})
}

// UpdatePaymentByPayID replaces the amount of a pay record.
func (s *Service) UpdatePaymentByPayID(ctx context.Context, payID string, payment decimal.Decimal) (*entity.Pay, error) {
	return s.update(ctx, "UpdatePaymentByPayID", func(ctx context.Context) (*entity.Pay, error) {
		return s.repo.UpdatePaymentByPayID(ctx, payID, payment)
	})
}

// UpdatePayableByPayID flips the payable flag.
func (s *Service) UpdatePayableByPayID(ctx context.Context, payID string, payable bool) (*entity.Pay, error) {
	return s.update(ctx, "UpdatePayableByPayID", func(ctx context.Context) (*entity.Pay, error) {
		return s.repo.UpdatePayableByPayID(ctx, payID, payable)
	})
}

// UpdatePaidByPayID flips the paid flag.
func (s *Service) UpdatePaidByPayID(ctx context.Context, payID string, paid bool) (*entity.Pay, error) {
	return s.update(ctx, "UpdatePaidByPayID", func(ctx context.Context) (*entity.Pay, error) {
		return s.repo.UpdatePaidByPayID(ctx, payID, paid)
	})
}

func (s *Service) update(ctx context.Context, method string, fn func(context.Context) (*entity.Pay, error)) (*entity.Pay, error) {
	return txn.Call(ctx, s.Runner(), s.Op(method), func(ctx context.Context) (*entity.Pay, error) {
		return s.UpdateWith(ctx, fn)
	})
}

// RemoveByPayID deletes a pay record.
func (s *Service) RemoveByPayID(ctx context.Context, payID string) error {
	return s.Runner().Do(ctx, s.Op("RemoveByPayID"), func(ctx context.Context) error {
		p, err := s.repo.GetByPayID(ctx, payID)
		if err != nil {
			return err
		}
		return s.RemoveEntity(ctx, p)
	})
}

// RemoveOfJob deletes the pay record of a job inside the caller's
// transaction. A job without one is left as is.
func (s *Service) RemoveOfJob(ctx context.Context, orderNumber int64) error {
	p, err := s.repo.GetByOrderNumber(ctx, orderNumber)
	if errors.Is(err, persistence.ErrEmptyResult) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.RemoveEntity(ctx, p)
}

// IsExistWithPayID reports whether a pay record carries the id.
func (s *Service) IsExistWithPayID(ctx context.Context, payID string) (bool, error) {
	return txn.Call(ctx, s.Runner(), s.Op("IsExistWithPayID"), func(ctx context.Context) (bool, error) {
		return s.repo.IsExistWithPayID(ctx, payID)
	})
}

// IsPayable reports the payable flag of a pay record.
func (s *Service) IsPayable(ctx context.Context, payID string) (bool, error) {
	return txn.Call(ctx, s.Runner(), s.Op("IsPayable"), func(ctx context.Context) (bool, error) {
		return s.repo.IsPayable(ctx, payID)
	})
}

// IsPaid reports the paid flag of a pay record.
func (s *Service) IsPaid(ctx context.Context, payID string) (bool, error) {
	return txn.Call(ctx, s.Runner(), s.Op("IsPaid"), func(ctx context.Context) (bool, error) {
		return s.repo.IsPaid(ctx, payID)
	})
}
