package developer

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/cache"
	"github.com/Additional-Code/timeclock/internal/config"
	"github.com/Additional-Code/timeclock/internal/dto"
	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/presentation/http/request"
	"github.com/Additional-Code/timeclock/internal/presentation/http/response"
	"github.com/Additional-Code/timeclock/internal/timeclock"
	"github.com/Additional-Code/timeclock/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/timeclock/transport/http/developer")

// Handler exposes developer endpoints over HTTP. Single developer lookups
// are cached until the developer is written through this handler.
type Handler struct {
	factory *timeclock.Factory
	store   cache.Store
	ttl     time.Duration
	logger  *zap.Logger
}

// NewHandler constructs a developer Handler.
func NewHandler(factory *timeclock.Factory, store cache.Store, cfg config.Config, logger *zap.Logger) *Handler {
	if store == nil {
		store = cache.Noop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{factory: factory, store: store, ttl: cfg.Cache.DefaultTTL, logger: logger}
}

// Register mounts the developer routes under /developers.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/developers")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:developerId", h.getByDeveloperID)
	g.PATCH("/:developerId/lastname", h.updateLastname)
	g.DELETE("/:developerId", h.remove)
}

type createRequest struct {
	DeveloperID int64              `json:"developer_id"`
	Forename    string             `json:"forename"`
	LastName    string             `json:"last_name"`
	Address     dto.AddressPayload `json:"address"`
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	forename := c.QueryParam("forename")

	ctx, span := httpTracer.Start(c.Request().Context(), "developers.list")
	defer span.End()

	var developers []*entity.Developer
	err := h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		if forename != "" {
			developers, err = svc.Developers.GetAllByForename(ctx, forename)
		} else {
			developers, err = svc.Developers.GetAll(ctx)
		}
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromDevelopers(developers)).WithMeta("count", len(developers)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload createRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}
	if payload.DeveloperID <= 0 || payload.Forename == "" {
		return b.WithError(errorbank.BadRequest("developer_id and forename are required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "developers.create",
		trace.WithAttributes(attribute.Int64("developer.id", payload.DeveloperID)))
	defer span.End()

	developer := entity.NewDeveloperBuilder().
		DeveloperID(payload.DeveloperID).
		Forename(payload.Forename).
		LastName(payload.LastName).
		Address(payload.Address.Address()).
		Build()

	var saved *entity.Developer
	err := h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		saved, err = svc.Developers.Save(ctx, developer)
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.FromDeveloper(saved)).Build()
}

func (h *Handler) getByDeveloperID(c echo.Context) error {
	b := response.New(c)

	developerID, err := request.Int64Param(c, "developerId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "developers.getByDeveloperID",
		trace.WithAttributes(attribute.Int64("developer.id", developerID)))
	defer span.End()

	var out dto.DeveloperResponse
	if hit, err := cache.GetJSON(ctx, h.store, cacheKey(developerID), &out); err != nil {
		h.logger.Warn("developer cache read failed", zap.Error(err))
	} else if hit {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return b.WithData(out).Build()
	}

	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		developer, err := svc.Developers.GetByDeveloperID(ctx, developerID)
		if err != nil {
			return err
		}
		out = dto.FromDeveloper(developer)
		return nil
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	if err := cache.SetJSON(ctx, h.store, cacheKey(developerID), out, h.ttl); err != nil {
		h.logger.Warn("developer cache write failed", zap.Error(err))
	}
	return b.WithData(out).Build()
}

func (h *Handler) updateLastname(c echo.Context) error {
	b := response.New(c)

	developerID, err := request.Int64Param(c, "developerId")
	if err != nil {
		return b.WithError(err).Build()
	}
	var payload struct {
		LastName string `json:"last_name"`
	}
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "developers.updateLastname",
		trace.WithAttributes(attribute.Int64("developer.id", developerID)))
	defer span.End()

	var updated *entity.Developer
	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		updated, err = svc.Developers.UpdateLastnameByDeveloperID(ctx, developerID, payload.LastName)
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	h.invalidate(ctx, developerID)
	return b.WithData(dto.FromDeveloper(updated)).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	developerID, err := request.Int64Param(c, "developerId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "developers.remove",
		trace.WithAttributes(attribute.Int64("developer.id", developerID)))
	defer span.End()

	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		return svc.Developers.RemoveByDeveloperID(ctx, developerID)
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	h.invalidate(ctx, developerID)
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) invalidate(ctx context.Context, developerID int64) {
	if err := h.store.Delete(ctx, cacheKey(developerID)); err != nil {
		h.logger.Warn("developer cache invalidation failed", zap.Int64("developer_id", developerID), zap.Error(err))
	}
}

func cacheKey(developerID int64) string {
	return cache.Key("developer", strconv.FormatInt(developerID, 10))
}
