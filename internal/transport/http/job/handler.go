package job

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/timeclock/internal/dto"
	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/presentation/http/request"
	"github.com/Additional-Code/timeclock/internal/presentation/http/response"
	"github.com/Additional-Code/timeclock/internal/timeclock"
	"github.com/Additional-Code/timeclock/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/timeclock/transport/http/job")

// Handler exposes job endpoints over HTTP.
type Handler struct {
	factory *timeclock.Factory
}

// NewHandler constructs a job Handler.
func NewHandler(factory *timeclock.Factory) *Handler {
	return &Handler{factory: factory}
}

// Register mounts /jobs. Single jobs are addressed by order number.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/jobs")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:orderNumber", h.getByOrderNumber)
	g.PATCH("/:orderNumber/status", h.updateStatus)
	g.PATCH("/:orderNumber/comment", h.updateComment)
	g.DELETE("/:orderNumber", h.remove)
}

type createRequest struct {
	OrderNumber int64  `json:"order_number"`
	ProjectName string `json:"project_name"`
	BranchName  string `json:"branch_name"`
	PackageName string `json:"package_name"`
	ClassName   string `json:"class_name"`
	Status      string `json:"status"`
	Comment     string `json:"comment"`
	CustomerID  int64  `json:"customer_id"`
	DeveloperID int64  `json:"developer_id"`
}

// list filters by status, project, customer_id or developer_id, in that
// order of precedence; without a filter every job is returned.
func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	status := c.QueryParam("status")
	project := c.QueryParam("project")

	var (
		customerID, developerID int64
		err                     error
	)
	if c.QueryParam("customer_id") != "" {
		if customerID, err = request.Int64Query(c, "customer_id"); err != nil {
			return b.WithError(err).Build()
		}
	}
	if c.QueryParam("developer_id") != "" {
		if developerID, err = request.Int64Query(c, "developer_id"); err != nil {
			return b.WithError(err).Build()
		}
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "jobs.list")
	defer span.End()

	var jobs []*entity.Job
	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		switch {
		case status != "":
			jobs, err = svc.Jobs.GetAllByStatus(ctx, status)
		case project != "":
			jobs, err = svc.Jobs.GetAllByProjectName(ctx, project)
		case customerID != 0:
			jobs, err = svc.Jobs.GetAllByCustomerID(ctx, customerID)
		case developerID != 0:
			jobs, err = svc.Jobs.GetAllByDeveloperID(ctx, developerID)
		default:
			jobs, err = svc.Jobs.GetAll(ctx)
		}
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromJobs(jobs)).WithMeta("count", len(jobs)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload createRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}
	if payload.OrderNumber <= 0 || payload.ProjectName == "" || payload.CustomerID <= 0 || payload.DeveloperID <= 0 {
		return b.WithError(errorbank.BadRequest("order_number, project_name, customer_id and developer_id are required")).Build()
	}
	if payload.Status == "" {
		payload.Status = entity.JobStatusOpen
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "jobs.create",
		trace.WithAttributes(attribute.Int64("job.order_number", payload.OrderNumber)))
	defer span.End()

	job := entity.NewJobBuilder().
		OrderNumber(payload.OrderNumber).
		ProjectName(payload.ProjectName).
		BranchName(payload.BranchName).
		PackageName(payload.PackageName).
		ClassName(payload.ClassName).
		Status(payload.Status).
		Comment(payload.Comment).
		CustomerID(payload.CustomerID).
		DeveloperID(payload.DeveloperID).
		Build()

	var saved *entity.Job
	err := h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		saved, err = svc.Jobs.Save(ctx, job)
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.FromJob(saved)).Build()
}

func (h *Handler) getByOrderNumber(c echo.Context) error {
	b := response.New(c)

	orderNumber, err := request.Int64Param(c, "orderNumber")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "jobs.getByOrderNumber",
		trace.WithAttributes(attribute.Int64("job.order_number", orderNumber)))
	defer span.End()

	var job *entity.Job
	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		job, err = svc.Jobs.GetByOrderNumber(ctx, orderNumber)
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromJob(job)).Build()
}

func (h *Handler) updateStatus(c echo.Context) error {
	return h.update(c, "jobs.updateStatus", func(ctx context.Context, svc *timeclock.Services, orderNumber int64, value string) (*entity.Job, error) {
		if value == "" {
			return nil, errorbank.BadRequest("status is required")
		}
		return svc.Jobs.UpdateStatusByOrderNumber(ctx, orderNumber, value)
	}, func(p updateRequest) string { return p.Status })
}

func (h *Handler) updateComment(c echo.Context) error {
	return h.update(c, "jobs.updateComment", func(ctx context.Context, svc *timeclock.Services, orderNumber int64, value string) (*entity.Job, error) {
		return svc.Jobs.UpdateCommentByOrderNumber(ctx, orderNumber, value)
	}, func(p updateRequest) string { return p.Comment })
}

type updateRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type updateFunc func(ctx context.Context, svc *timeclock.Services, orderNumber int64, value string) (*entity.Job, error)

func (h *Handler) update(c echo.Context, spanName string, fn updateFunc, pick func(updateRequest) string) error {
	b := response.New(c)

	orderNumber, err := request.Int64Param(c, "orderNumber")
	if err != nil {
		return b.WithError(err).Build()
	}
	var payload updateRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), spanName,
		trace.WithAttributes(attribute.Int64("job.order_number", orderNumber)))
	defer span.End()

	var updated *entity.Job
	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		updated, err = fn(ctx, svc, orderNumber, pick(payload))
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromJob(updated)).Build()
}

// remove deletes the job and its pay.
func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	orderNumber, err := request.Int64Param(c, "orderNumber")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "jobs.remove",
		trace.WithAttributes(attribute.Int64("job.order_number", orderNumber)))
	defer span.End()

	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		return svc.Jobs.RemoveByOrderNumber(ctx, orderNumber)
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusNoContent).Build()
}
