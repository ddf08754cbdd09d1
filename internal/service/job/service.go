package job

import (
	"context"
	"errors"
	"strconv"

	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/events"
	repo "github.com/Additional-Code/timeclock/internal/repository/job"
	"github.com/Additional-Code/timeclock/internal/service/crud"
	"github.com/Additional-Code/timeclock/internal/service/pay"
	"github.com/Additional-Code/timeclock/internal/service/txn"
)

// Service exposes job operations, each in its own transaction.
type Service struct {
	crud.Service[entity.Job, *entity.Job]

	repo *repo.Repository
	pays *pay.Service
}

// NewService wires a job service. Removing a job removes its pay record
// first, through the pay service so that removal is published too.
func NewService(runner *txn.Runner, jobs *repo.Repository, pays *pay.Service, publisher events.Publisher) *Service {
	return &Service{
		Service: crud.New(runner, jobs.Gateway, publisher, func(j *entity.Job) string {
			return strconv.FormatInt(j.OrderNumber, 10)
		}),
		repo: jobs,
		pays: pays,
	}
}

// Remove deletes a job and its pay record.
func (s *Service) Remove(ctx context.Context, j *entity.Job) error {
	return s.Runner().Do(ctx, s.Op("Remove"), func(ctx context.Context) error {
		return s.RemoveEntity(ctx, j)
	})
}

// RemoveAll deletes every job and pay record.
func (s *Service) RemoveAll(ctx context.Context) error {
	return s.Service.RemoveAll(ctx, s.RemoveEntity)
}

// GetByOrderNumber fails with a not found error on a miss.
func (s *Service) GetByOrderNumber(ctx context.Context, orderNumber int64) (*entity.Job, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetByOrderNumber"), func(ctx context.Context) (*entity.Job, error) {
		return s.repo.GetByOrderNumber(ctx, orderNumber)
	})
}

// GetAllByProjectName lists the jobs of a project.
func (s *Service) GetAllByProjectName(ctx context.Context, projectName string) ([]*entity.Job, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetAllByProjectName"), func(ctx context.Context) ([]*entity.Job, error) {
		return s.repo.GetAllByProjectName(ctx, projectName)
	})
}

// GetAllByStatus lists the jobs in a status.
func (s *Service) GetAllByStatus(ctx context.Context, status string) ([]*entity.Job, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetAllByStatus"), func(ctx context.Context) ([]*entity.Job, error) {
		return s.repo.GetAllByStatus(ctx, status)
	})
}

// GetAllByCustomerID lists the jobs placed by a customer.
func (s *Service) GetAllByCustomerID(ctx context.Context, customerID int64) ([]*entity.Job, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetAllByCustomerID"), func(ctx context.Context) ([]*entity.Job, error) {
		return s.repo.GetAllByCustomerID(ctx, customerID)
	})
}

// GetAllByDeveloperID lists the jobs assigned to a developer.
func (s *Service) GetAllByDeveloperID(ctx context.Context, developerID int64) ([]*entity.Job, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetAllByDeveloperID"), func(ctx context.Context) ([]*entity.Job, error) {
		return s.repo.GetAllByDeveloperID(ctx, developerID)
	})
}

// UpdateStatusByOrderNumber moves a job to another status.
func (s *Service) UpdateStatusByOrderNumber(ctx context.Context, orderNumber int64, status string) (*entity.Job, error) {
	return txn.Call(ctx, s.Runner(), s.Op("UpdateStatusByOrderNumber"), func(ctx context.Context) (*entity.Job, error) {
		return s.UpdateWith(ctx, func(ctx context.Context) (*entity.Job, error) {
			return s.repo.UpdateStatusByOrderNumber(ctx, orderNumber, status)
		})
	})
}

// UpdateCommentByOrderNumber replaces the comment of a job.
func (s *Service) UpdateCommentByOrderNumber(ctx context.Context, orderNumber int64, comment string) (*entity.Job, error) {
	return txn.Call(ctx, s.Runner(), s.Op("UpdateCommentByOrderNumber"), func(ctx context.Context) (*entity.Job, error) {
		return s.UpdateWith(ctx, func(ctx context.Context) (*entity.Job, error) {
			return s.repo.UpdateCommentByOrderNumber(ctx, orderNumber, comment)
		})
	})
}

// RemoveByOrderNumber deletes a job and its pay record.
func (s *Service) RemoveByOrderNumber(ctx context.Context, orderNumber int64) error {
	return s.Runner().Do(ctx, s.Op("RemoveByOrderNumber"), func(ctx context.Context) error {
		j, err := s.repo.GetByOrderNumber(ctx, orderNumber)
		if err != nil {
			return err
		}
		return s.RemoveEntity(ctx, j)
	})
}

// IsExistWithOrderNumber reports whether a job carries the order number.
func (s *Service) IsExistWithOrderNumber(ctx context.Context, orderNumber int64) (bool, error) {
	return txn.Call(ctx, s.Runner(), s.Op("IsExistWithOrderNumber"), func(ctx context.Context) (bool, error) {
		return s.repo.IsExistWithOrderNumber(ctx, orderNumber)
	})
}

// RemoveEntity deletes j and its pay record inside the caller's transaction.
func (s *Service) RemoveEntity(ctx context.Context, j *entity.Job) error {
	if j == nil {
		return errors.New("remove job: nil entity")
	}
	if err := s.pays.RemoveOfJob(ctx, j.OrderNumber); err != nil {
		return err
	}
	return s.Service.RemoveEntity(ctx, j)
}

// RemoveOfCustomer deletes the jobs of a customer, pay records first, inside
// the caller's transaction.
func (s *Service) RemoveOfCustomer(ctx context.Context, customerID int64) error {
	jobs, err := s.repo.GetAllByCustomerID(ctx, customerID)
	if err != nil {
		return err
	}
	for _, j := range jobs {
		if err := s.RemoveEntity(ctx, j); err != nil {
			return err
		}
	}
	return nil
}
