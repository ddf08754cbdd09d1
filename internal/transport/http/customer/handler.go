package customer

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

var httpTracer = otel.Tracer("github.com/Additional-Code/timeclock/transport/http/customer")

// Handler exposes customer endpoints over HTTP.
type Handler struct {
	factory *timeclock.Factory
	store   cache.Store
	ttl     time.Duration
	logger  *zap.Logger
}

// NewHandler constructs a customer Handler.
func NewHandler(factory *timeclock.Factory, store cache.Store, cfg config.Config, logger *zap.Logger) *Handler {
	if store == nil {
		store = cache.Noop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{factory: factory, store: store, ttl: cfg.Cache.DefaultTTL, logger: logger}
}

// Register mounts the customer routes under /customers, keyed by customer id.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/customers")
	g.POST("", h.create)
	g.GET("/:customerId", h.getByCustomerID)
	g.PATCH("/:customerId/contact", h.updateContact)
	g.DELETE("/:customerId", h.remove)
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		CustomerID int64              `json:"customer_id"`
		Name       string             `json:"name"`
		Contact    string             `json:"contact"`
		Address    dto.AddressPayload `json:"address"`
	}
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}
	if payload.CustomerID <= 0 || payload.Name == "" {
		return b.WithError(errorbank.BadRequest("customer_id and name are required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.create",
		trace.WithAttributes(attribute.Int64("customer.id", payload.CustomerID)))
	defer span.End()

	customer := entity.NewCustomerBuilder().
		CustomerID(payload.CustomerID).
		Name(payload.Name).
		Contact(payload.Contact).
		Address(payload.Address.Address()).
		Build()

	var saved *entity.Customer
	err := h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		saved, err = svc.Customers.Save(ctx, customer)
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.FromCustomer(saved)).Build()
}

func (h *Handler) getByCustomerID(c echo.Context) error {
	b := response.New(c)

	customerID, err := request.Int64Param(c, "customerId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.getByCustomerID",
		trace.WithAttributes(attribute.Int64("customer.id", customerID)))
	defer span.End()

	var out dto.CustomerResponse
	if hit, err := cache.GetJSON(ctx, h.store, cacheKey(customerID), &out); err != nil {
		h.logger.Warn("customer cache read failed", zap.Error(err))
	} else if hit {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return b.WithData(out).Build()
	}

	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		customer, err := svc.Customers.GetByCustomerID(ctx, customerID)
		if err != nil {
			return err
		}
		out = dto.FromCustomer(customer)
		return nil
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	if err := cache.SetJSON(ctx, h.store, cacheKey(customerID), out, h.ttl); err != nil {
		h.logger.Warn("customer cache write failed", zap.Error(err))
	}
	return b.WithData(out).Build()
}

func (h *Handler) updateContact(c echo.Context) error {
	b := response.New(c)

	customerID, err := request.Int64Param(c, "customerId")
	if err != nil {
		return b.WithError(err).Build()
	}
	var payload struct {
		Contact string `json:"contact"`
	}
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.updateContact",
		trace.WithAttributes(attribute.Int64("customer.id", customerID)))
	defer span.End()

	var updated *entity.Customer
	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		updated, err = svc.Customers.UpdateContactByCustomerID(ctx, customerID, payload.Contact)
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	h.invalidate(ctx, customerID)
	return b.WithData(dto.FromCustomer(updated)).Build()
}

// remove deletes the customer together with its jobs and their pays.
func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	customerID, err := request.Int64Param(c, "customerId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.remove",
		trace.WithAttributes(attribute.Int64("customer.id", customerID)))
	defer span.End()

	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		return svc.Customers.RemoveByCustomerID(ctx, customerID)
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	h.invalidate(ctx, customerID)
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) invalidate(ctx context.Context, customerID int64) {
	if err := h.store.Delete(ctx, cacheKey(customerID)); err != nil {
		h.logger.Warn("customer cache invalidation failed", zap.Int64("customer_id", customerID), zap.Error(err))
	}
}

func cacheKey(customerID int64) string {
	return cache.Key("customer", strconv.FormatInt(customerID, 10))
}
