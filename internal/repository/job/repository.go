package job

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/persistence"
)

// Descriptor maps jobs for the generic gateway. The owning customer and the
// assigned developer are loaded with every job.
var Descriptor = persistence.Descriptor[entity.Job, int64]{
	Name:      "Job",
	Table:     "jobs",
	KeyColumn: "id",
	Immutable: []string{"order_number"},
	Relations: []string{"Customer", "Developer"},
	Key:       func(j *entity.Job) int64 { return j.ID },
}

// Gateway is the generic CRUD gateway instantiated for jobs.
type Gateway = persistence.Gateway[entity.Job, *entity.Job, int64]

// Repository adds job finders and narrow updates to the gateway.
type Repository struct {
	*Gateway
}

// NewRepository binds a job repository to a session.
func NewRepository(session *persistence.Session) *Repository {
	return &Repository{Gateway: persistence.NewGateway[entity.Job, *entity.Job](session, Descriptor)}
}

func where(column string, value any) persistence.Filter {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(column), value).OrderExpr("?TableAlias.order_number")
	}
}

// GetByOrderNumber fails with persistence.ErrEmptyResult on a miss.
func (r *Repository) GetByOrderNumber(ctx context.Context, orderNumber int64) (*entity.Job, error) {
	return r.FindOne(ctx, where("order_number", orderNumber))
}

// GetAllByProjectName lists the jobs of a project.
func (r *Repository) GetAllByProjectName(ctx context.Context, projectName string) ([]*entity.Job, error) {
	return r.FindAll(ctx, where("project_name", projectName))
}

// GetAllByStatus lists the jobs in a status.
func (r *Repository) GetAllByStatus(ctx context.Context, status string) ([]*entity.Job, error) {
	return r.FindAll(ctx, where("status", status))
}

// GetAllByCustomerID lists the jobs placed by a customer.
func (r *Repository) GetAllByCustomerID(ctx context.Context, customerID int64) ([]*entity.Job, error) {
	return r.FindAll(ctx, where("customer_id", customerID))
}

// GetAllByDeveloperID lists the jobs assigned to a developer.
func (r *Repository) GetAllByDeveloperID(ctx context.Context, developerID int64) ([]*entity.Job, error) {
	return r.FindAll(ctx, where("developer_id", developerID))
}

// UpdateStatusByOrderNumber moves a job to another status.
func (r *Repository) UpdateStatusByOrderNumber(ctx context.Context, orderNumber int64, status string) (*entity.Job, error) {
	j, err := r.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return r.Update(ctx, entity.JobBuilderFrom(j).Status(status).Build())
}

// UpdateCommentByOrderNumber replaces the comment of a job.
func (r *Repository) UpdateCommentByOrderNumber(ctx context.Context, orderNumber int64, comment string) (*entity.Job, error) {
	j, err := r.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return r.Update(ctx, entity.JobBuilderFrom(j).Comment(comment).Build())
}

// RemoveByOrderNumber deletes a job. A pay record referencing it must be
// removed first.
func (r *Repository) RemoveByOrderNumber(ctx context.Context, orderNumber int64) error {
	j, err := r.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return err
	}
	return r.Remove(ctx, j)
}

// IsExistWithOrderNumber reports whether a job carries the order number.
func (r *Repository) IsExistWithOrderNumber(ctx context.Context, orderNumber int64) (bool, error) {
	_, err := r.GetByOrderNumber(ctx, orderNumber)
	if errors.Is(err, persistence.ErrEmptyResult) {
		return false, nil
	}
	return err == nil, err
}
