package customer

import (
	"context"
	"errors"
	"strconv"

	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/events"
	repo "github.com/Additional-Code/timeclock/internal/repository/customer"
	"github.com/Additional-Code/timeclock/internal/service/crud"
	"github.com/Additional-Code/timeclock/internal/service/job"
	"github.com/Additional-Code/timeclock/internal/service/txn"
)

// Service exposes customer operations, each in its own transaction.
type Service struct {
	crud.Service[entity.Customer, *entity.Customer]

	repo *repo.Repository
	jobs *job.Service
}

// NewService wires a customer service. The job service removes what a
// customer owns before the customer goes.
func NewService(runner *txn.Runner, customers *repo.Repository, jobs *job.Service, publisher events.Publisher) *Service {
	return &Service{
		Service: crud.New(runner, customers.Gateway, publisher, func(c *entity.Customer) string {
			return strconv.FormatInt(c.CustomerID, 10)
		}),
		repo: customers,
		jobs: jobs,
	}
}

// Remove deletes a customer with its jobs and their pay records.
func (s *Service) Remove(ctx context.Context, c *entity.Customer) error {
	return s.Runner().Do(ctx, s.Op("Remove"), func(ctx context.Context) error {
		return s.cascade(ctx, c)
	})
}

// RemoveAll deletes every customer together with what it owns.
func (s *Service) RemoveAll(ctx context.Context) error {
	return s.Service.RemoveAll(ctx, s.cascade)
}

// GetByCustomerID fails with a not found error on a miss.
func (s *Service) GetByCustomerID(ctx context.Context, customerID int64) (*entity.Customer, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetByCustomerID"), func(ctx context.Context) (*entity.Customer, error) {
		return s.repo.GetByCustomerID(ctx, customerID)
	})
}

// GetByName looks a customer up by name.
func (s *Service) GetByName(ctx context.Context, name string) (*entity.Customer, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetByName"), func(ctx context.Context) (*entity.Customer, error) {
		return s.repo.GetByName(ctx, name)
	})
}

// UpdateContactByCustomerID replaces the contact of a customer.
func (s *Service) UpdateContactByCustomerID(ctx context.Context, customerID int64, contact string) (*entity.Customer, error) {
	return txn.Call(ctx, s.Runner(), s.Op("UpdateContactByCustomerID"), func(ctx context.Context) (*entity.Customer, error) {
		return s.UpdateWith(ctx, func(ctx context.Context) (*entity.Customer, error) {
			return s.repo.UpdateContactByCustomerID(ctx, customerID, contact)
		})
	})
}

// RemoveByCustomerID deletes a customer with its jobs and pay records.
func (s *Service) RemoveByCustomerID(ctx context.Context, customerID int64) error {
	return s.Runner().Do(ctx, s.Op("RemoveByCustomerID"), func(ctx context.Context) error {
		c, err := s.repo.GetByCustomerID(ctx, customerID)
		if err != nil {
			return err
		}
		return s.cascade(ctx, c)
	})
}

// IsExistWithCustomerID reports whether a customer carries the id.
func (s *Service) IsExistWithCustomerID(ctx context.Context, customerID int64) (bool, error) {
	return txn.Call(ctx, s.Runner(), s.Op("IsExistWithCustomerID"), func(ctx context.Context) (bool, error) {
		return s.repo.IsExistWithCustomerID(ctx, customerID)
	})
}

// cascade removes in foreign key order: pay, job, customer.
func (s *Service) cascade(ctx context.Context, c *entity.Customer) error {
	if c == nil {
		return errors.New("remove customer: nil entity")
	}
	if err := s.jobs.RemoveOfCustomer(ctx, c.CustomerID); err != nil {
		return err
	}
	return s.RemoveEntity(ctx, c)
}
