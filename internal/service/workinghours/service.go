package workinghours

import (
	"context"
	"strconv"
	"time"

	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/events"
	repo "github.com/Additional-Code/timeclock/internal/repository/workinghours"
	"github.com/Additional-Code/timeclock/internal/service/crud"
	"github.com/Additional-Code/timeclock/internal/service/txn"
)

// Service exposes working hours operations, each in its own transaction.
type Service struct {
	crud.Service[entity.WorkingHours, *entity.WorkingHours]

	repo *repo.Repository
}

// NewService wires a working hours service.
func NewService(runner *txn.Runner, hours *repo.Repository, publisher events.Publisher) *Service {
	return &Service{
		Service: crud.New(runner, hours.Gateway, publisher, func(w *entity.WorkingHours) string {
			return strconv.FormatInt(w.ID, 10)
		}),
		repo: hours,
	}
}

// RemoveAll deletes every logged session.
func (s *Service) RemoveAll(ctx context.Context) error {
	return s.Service.RemoveAll(ctx, nil)
}

// UpdateWorkEnd closes a session at the given time.
func (s *Service) UpdateWorkEnd(ctx context.Context, hours *entity.WorkingHours, workEnd time.Time) (*entity.WorkingHours, error) {
	return txn.Call(ctx, s.Runner(), s.Op("UpdateWorkEnd"), func(ctx context.Context) (*entity.WorkingHours, error) {
		return s.UpdateWith(ctx, func(ctx context.Context) (*entity.WorkingHours, error) {
			return s.repo.UpdateWorkEnd(ctx, hours, workEnd)
		})
	})
}

// GetAllByDeveloperID lists the sessions of a developer, oldest first.
func (s *Service) GetAllByDeveloperID(ctx context.Context, developerID int64) ([]*entity.WorkingHours, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetAllByDeveloperID"), func(ctx context.Context) ([]*entity.WorkingHours, error) {
		return s.repo.GetAllByDeveloperID(ctx, developerID)
	})
}

// GetOpenByDeveloperID lists the sessions of a developer still running.
func (s *Service) GetOpenByDeveloperID(ctx context.Context, developerID int64) ([]*entity.WorkingHours, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetOpenByDeveloperID"), func(ctx context.Context) ([]*entity.WorkingHours, error) {
		return s.repo.GetOpenByDeveloperID(ctx, developerID)
	})
}
