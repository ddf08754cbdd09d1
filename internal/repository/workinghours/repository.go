package workinghours

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/persistence"
)

// Descriptor maps working hours for the generic gateway. The start of a
// session never changes once logged.
var Descriptor = persistence.Descriptor[entity.WorkingHours, int64]{
	Name:      "WorkingHours",
	Table:     "working_hours",
	KeyColumn: "id",
	Immutable: []string{"work_day", "work_start"},
	Relations: []string{"Developer"},
	Key:       func(w *entity.WorkingHours) int64 { return w.ID },
}

// Gateway is the generic CRUD gateway instantiated for working hours.
type Gateway = persistence.Gateway[entity.WorkingHours, *entity.WorkingHours, int64]

// Repository adds working hours finders and narrow updates to the gateway.
type Repository struct {
	*Gateway
}

// NewRepository binds a working hours repository to a session.
func NewRepository(session *persistence.Session) *Repository {
	return &Repository{Gateway: persistence.NewGateway[entity.WorkingHours, *entity.WorkingHours](session, Descriptor)}
}

// UpdateWorkEnd closes a session at the given time. Calling it again moves
// the end and bumps the version once more.
func (r *Repository) UpdateWorkEnd(ctx context.Context, hours *entity.WorkingHours, workEnd time.Time) (*entity.WorkingHours, error) {
	if hours == nil {
		return nil, fmt.Errorf("update work end: nil working hours")
	}
	return r.Update(ctx, entity.WorkingHoursBuilderFrom(hours).WorkEnd(workEnd).Build())
}

// GetAllByDeveloperID lists the sessions of a developer, oldest first.
func (r *Repository) GetAllByDeveloperID(ctx context.Context, developerID int64) ([]*entity.WorkingHours, error) {
	return r.FindAll(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.developer_id = ?", developerID).OrderExpr("?TableAlias.work_start, ?TableAlias.id")
	})
}

// GetOpenByDeveloperID lists the sessions of a developer that have not ended.
func (r *Repository) GetOpenByDeveloperID(ctx context.Context, developerID int64) ([]*entity.WorkingHours, error) {
	return r.FindAll(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.developer_id = ?", developerID).
			Where("?TableAlias.work_end IS NULL").
			OrderExpr("?TableAlias.work_start")
	})
}
