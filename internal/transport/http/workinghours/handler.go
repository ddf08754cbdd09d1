package workinghours

import (
	"context"
	"net/http"
	"time"

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

var httpTracer = otel.Tracer("github.com/Additional-Code/timeclock/transport/http/workinghours")

// Handler lets developers clock in and out.
type Handler struct {
	factory *timeclock.Factory
	now     func() time.Time
}

// NewHandler constructs a working hours Handler.
func NewHandler(factory *timeclock.Factory) *Handler {
	return &Handler{factory: factory, now: time.Now}
}

// Register hangs the working hours routes below /developers/:developerId.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/developers/:developerId")
	g.GET("/working-hours", h.list)
	g.POST("/clock-in", h.clockIn)
	g.POST("/clock-out", h.clockOut)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	developerID, err := request.Int64Param(c, "developerId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "workingHours.list",
		trace.WithAttributes(attribute.Int64("developer.id", developerID)))
	defer span.End()

	var hours []*entity.WorkingHours
	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		hours, err = svc.WorkingHours.GetAllByDeveloperID(ctx, developerID)
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	var total time.Duration
	for _, w := range hours {
		total += w.Duration()
	}
	return b.WithData(dto.FromWorkingHoursList(hours)).
		WithMeta("count", len(hours)).
		WithMeta("total_minutes", int64(total/time.Minute)).
		Build()
}

// clockIn opens a session starting now. A developer can have at most one
// open session.
func (h *Handler) clockIn(c echo.Context) error {
	b := response.New(c)

	developerID, err := request.Int64Param(c, "developerId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "workingHours.clockIn",
		trace.WithAttributes(attribute.Int64("developer.id", developerID)))
	defer span.End()

	now := h.now().UTC().Truncate(time.Second)
	var saved *entity.WorkingHours
	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		return svc.InTx(ctx, "workingHours.clockIn", func(ctx context.Context) error {
			if _, err := svc.Developers.GetByDeveloperID(ctx, developerID); err != nil {
				return err
			}
			open, err := svc.WorkingHours.GetOpenByDeveloperID(ctx, developerID)
			if err != nil {
				return err
			}
			if len(open) > 0 {
				return errorbank.Conflict("developer is already clocked in",
					errorbank.WithDetail("work_start", open[0].WorkStart))
			}

			hours := entity.NewWorkingHoursBuilder().
				DeveloperID(developerID).
				Day(now.Truncate(24 * time.Hour)).
				WorkStart(now).
				Build()
			saved, err = svc.WorkingHours.Save(ctx, hours)
			return err
		})
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.FromWorkingHours(saved)).Build()
}

// clockOut closes the open session of the developer.
func (h *Handler) clockOut(c echo.Context) error {
	b := response.New(c)

	developerID, err := request.Int64Param(c, "developerId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "workingHours.clockOut",
		trace.WithAttributes(attribute.Int64("developer.id", developerID)))
	defer span.End()

	now := h.now().UTC().Truncate(time.Second)
	var closed *entity.WorkingHours
	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		return svc.InTx(ctx, "workingHours.clockOut", func(ctx context.Context) error {
			open, err := svc.WorkingHours.GetOpenByDeveloperID(ctx, developerID)
			if err != nil {
				return err
			}
			if len(open) == 0 {
				return errorbank.Conflict("developer is not clocked in")
			}
			closed, err = svc.WorkingHours.UpdateWorkEnd(ctx, open[len(open)-1], now)
			return err
		})
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromWorkingHours(closed)).Build()
}
