package developer

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/persistence"
)

// Descriptor maps developers for the generic gateway.
var Descriptor = persistence.Descriptor[entity.Developer, int64]{
	Name:      "Developer",
	Table:     "developers",
	KeyColumn: "id",
	Immutable: []string{"developer_id"},
	Key:       func(d *entity.Developer) int64 { return d.ID },
}

// Gateway is the generic CRUD gateway instantiated for developers.
type Gateway = persistence.Gateway[entity.Developer, *entity.Developer, int64]

// Repository adds developer finders and narrow updates to the gateway.
type Repository struct {
	*Gateway
}

// NewRepository binds a developer repository to a session.
func NewRepository(session *persistence.Session) *Repository {
	return &Repository{Gateway: persistence.NewGateway[entity.Developer, *entity.Developer](session, Descriptor)}
}

// GetByDeveloperID fails with persistence.ErrEmptyResult on a miss.
func (r *Repository) GetByDeveloperID(ctx context.Context, developerID int64) (*entity.Developer, error) {
	return r.FindOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.developer_id = ?", developerID)
	})
}

// GetAllByForename lists developers sharing a forename.
func (r *Repository) GetAllByForename(ctx context.Context, forename string) ([]*entity.Developer, error) {
	return r.FindAll(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.forename = ?", forename).OrderExpr("?TableAlias.developer_id")
	})
}

// UpdateLastnameByDeveloperID replaces the last name of a developer.
func (r *Repository) UpdateLastnameByDeveloperID(ctx context.Context, developerID int64, lastName string) (*entity.Developer, error) {
	d, err := r.GetByDeveloperID(ctx, developerID)
	if err != nil {
		return nil, err
	}
	return r.Update(ctx, entity.DeveloperBuilderFrom(d).LastName(lastName).Build())
}

// RemoveByDeveloperID deletes a developer. Assigned jobs and logged working
// hours make it fail with persistence.ErrConstraintViolation.
func (r *Repository) RemoveByDeveloperID(ctx context.Context, developerID int64) error {
	d, err := r.GetByDeveloperID(ctx, developerID)
	if err != nil {
		return err
	}
	return r.Remove(ctx, d)
}

// IsExistWithDeveloperID reports whether a developer carries the id.
func (r *Repository) IsExistWithDeveloperID(ctx context.Context, developerID int64) (bool, error) {
	_, err := r.GetByDeveloperID(ctx, developerID)
	if errors.Is(err, persistence.ErrEmptyResult) {
		return false, nil
	}
	return err == nil, err
}
