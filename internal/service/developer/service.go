package developer

import (
	"context"
	"strconv"

	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/events"
	repo "github.com/Additional-Code/timeclock/internal/repository/developer"
	"github.com/Additional-Code/timeclock/internal/service/crud"
	"github.com/Additional-Code/timeclock/internal/service/txn"
)

// Service exposes developer operations, each in its own transaction.
// Removing a developer never cascades: assigned jobs or logged hours make
// it fail with a conflict.
type Service struct {
	crud.Service[entity.Developer, *entity.Developer]

	repo *repo.Repository
}

// NewService wires a developer service.
func NewService(runner *txn.Runner, developers *repo.Repository, publisher events.Publisher) *Service {
	return &Service{
		Service: crud.New(runner, developers.Gateway, publisher, func(d *entity.Developer) string {
			return strconv.FormatInt(d.DeveloperID, 10)
		}),
		repo: developers,
	}
}

// RemoveAll deletes every developer.
func (s *Service) RemoveAll(ctx context.Context) error {
	return s.Service.RemoveAll(ctx, nil)
}

// GetByDeveloperID fails with a not found error on a miss.
func (s *Service) GetByDeveloperID(ctx context.Context, developerID int64) (*entity.Developer, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetByDeveloperID"), func(ctx context.Context) (*entity.Developer, error) {
		return s.repo.GetByDeveloperID(ctx, developerID)
	})
}

// GetAllByForename lists developers sharing a forename.
func (s *Service) GetAllByForename(ctx context.Context, forename string) ([]*entity.Developer, error) {
	return txn.Call(ctx, s.Runner(), s.Op("GetAllByForename"), func(ctx context.Context) ([]*entity.Developer, error) {
		return s.repo.GetAllByForename(ctx, forename)
	})
}

// UpdateLastnameByDeveloperID replaces the last name of a developer.
func (s *Service) UpdateLastnameByDeveloperID(ctx context.Context, developerID int64, lastName string) (*entity.Developer, error) {
	return txn.Call(ctx, s.Runner(), s.Op("UpdateLastnameByDeveloperID"), func(ctx context.Context) (*entity.Developer, error) {
		return s.UpdateWith(ctx, func(ctx context.Context) (*entity.Developer, error) {
			return s.repo.UpdateLastnameByDeveloperID(ctx, developerID, lastName)
		})
	})
}

// RemoveByDeveloperID deletes a developer.
func (s *Service) RemoveByDeveloperID(ctx context.Context, developerID int64) error {
	return s.Runner().Do(ctx, s.Op("RemoveByDeveloperID"), func(ctx context.Context) error {
		d, err := s.repo.GetByDeveloperID(ctx, developerID)
		if err != nil {
			return err
		}
		return s.RemoveEntity(ctx, d)
	})
}

// IsExistWithDeveloperID reports whether a developer carries the id.
func (s *Service) IsExistWithDeveloperID(ctx context.Context, developerID int64) (bool, error) {
	return txn.Call(ctx, s.Runner(), s.Op("IsExistWithDeveloperID"), func(ctx context.Context) (bool, error) {
		return s.repo.IsExistWithDeveloperID(ctx, developerID)
	})
}
