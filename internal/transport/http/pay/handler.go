package pay

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
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

var httpTracer = otel.Tracer("github.com/Additional-Code/timeclock/transport/http/pay")

// Handler exposes pay endpoints over HTTP.
type Handler struct {
	factory *timeclock.Factory
}

// NewHandler constructs a pay Handler.
func NewHandler(factory *timeclock.Factory) *Handler {
	return &Handler{factory: factory}
}

// Register mounts /pays; the flag and payment routes patch one field each.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/pays")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:payId", h.getByPayID)
	g.PATCH("/:payId/paid", h.updatePaid)
	g.PATCH("/:payId/payable", h.updatePayable)
	g.PATCH("/:payId/payment", h.updatePayment)
	g.DELETE("/:payId", h.remove)
}

type createRequest struct {
	PayID       string          `json:"pay_id"`
	OrderNumber int64           `json:"order_number"`
	Payment     decimal.Decimal `json:"payment"`
	Currency    string          `json:"currency"`
	Payable     bool            `json:"payable"`
}

// list filters by the paid flag, then the payable flag; without either
// every pay is returned.
func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	paid, byPaid, err := request.OptionalBoolQuery(c, "paid")
	if err != nil {
		return b.WithError(err).Build()
	}
	payable, byPayable, err := request.OptionalBoolQuery(c, "payable")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "pays.list")
	defer span.End()

	var pays []*entity.Pay
	err = h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		switch {
		case byPaid:
			pays, err = svc.Pays.GetAllByPaid(ctx, paid)
		case byPayable:
			pays, err = svc.Pays.GetAllByPayable(ctx, payable)
		default:
			pays, err = svc.Pays.GetAll(ctx)
		}
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromPays(pays)).WithMeta("count", len(pays)).Build()
}

// create stores the pay of a job. Without an explicit pay_id the id is
// derived from the job's customer and order number.
func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload createRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}
	if payload.OrderNumber <= 0 {
		return b.WithError(errorbank.BadRequest("order_number is required")).Build()
	}
	if payload.Payment.IsNegative() {
		return b.WithError(errorbank.BadRequest("payment must not be negative")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "pays.create",
		trace.WithAttributes(attribute.Int64("job.order_number", payload.OrderNumber)))
	defer span.End()

	var saved *entity.Pay
	err := h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		return svc.InTx(ctx, "pays.create", func(ctx context.Context) error {
			payID := payload.PayID
			if payID == "" {
				job, err := svc.Jobs.GetByOrderNumber(ctx, payload.OrderNumber)
				if err != nil {
					return err
				}
				payID = entity.FormatPayID(job.CustomerID, job.OrderNumber, 1)
			}

			pay := entity.NewPayBuilder().
				PayID(payID).
				OrderNumber(payload.OrderNumber).
				Payment(payload.Payment).
				Currency(payload.Currency).
				Payable(payload.Payable).
				Build()

			var err error
			saved, err = svc.Pays.Save(ctx, pay)
			return err
		})
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.FromPay(saved)).Build()
}

func (h *Handler) getByPayID(c echo.Context) error {
	b := response.New(c)
	payID := c.Param("payId")

	ctx, span := httpTracer.Start(c.Request().Context(), "pays.getByPayID",
		trace.WithAttributes(attribute.String("pay.id", payID)))
	defer span.End()

	var pay *entity.Pay
	err := h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		pay, err = svc.Pays.GetByPayID(ctx, payID)
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromPay(pay)).Build()
}

func (h *Handler) updatePaid(c echo.Context) error {
	var payload struct {
		Paid *bool `json:"paid"`
	}
	return h.update(c, "pays.updatePaid", &payload, func(ctx context.Context, svc *timeclock.Services, payID string) (*entity.Pay, error) {
		if payload.Paid == nil {
			return nil, errorbank.BadRequest("paid is required")
		}
		return svc.Pays.UpdatePaidByPayID(ctx, payID, *payload.Paid)
	})
}

func (h *Handler) updatePayable(c echo.Context) error {
	var payload struct {
		Payable *bool `json:"payable"`
	}
	return h.update(c, "pays.updatePayable", &payload, func(ctx context.Context, svc *timeclock.Services, payID string) (*entity.Pay, error) {
		if payload.Payable == nil {
			return nil, errorbank.BadRequest("payable is required")
		}
		return svc.Pays.UpdatePayableByPayID(ctx, payID, *payload.Payable)
	})
}

func (h *Handler) updatePayment(c echo.Context) error {
	var payload struct {
		Payment *decimal.Decimal `json:"payment"`
	}
	return h.update(c, "pays.updatePayment", &payload, func(ctx context.Context, svc *timeclock.Services, payID string) (*entity.Pay, error) {
		if payload.Payment == nil || payload.Payment.IsNegative() {
			return nil, errorbank.BadRequest("payment must be a non-negative amount")
		}
		return svc.Pays.UpdatePaymentByPayID(ctx, payID, *payload.Payment)
	})
}

func (h *Handler) update(c echo.Context, spanName string, payload any, fn func(ctx context.Context, svc *timeclock.Services, payID string) (*entity.Pay, error)) error {
	b := response.New(c)
	payID := c.Param("payId")

	if err := request.Bind(c, payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), spanName,
		trace.WithAttributes(attribute.String("pay.id", payID)))
	defer span.End()

	var updated *entity.Pay
	err := h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		var err error
		updated, err = fn(ctx, svc, payID)
		return err
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromPay(updated)).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)
	payID := c.Param("payId")

	ctx, span := httpTracer.Start(c.Request().Context(), "pays.remove",
		trace.WithAttributes(attribute.String("pay.id", payID)))
	defer span.End()

	err := h.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		return svc.Pays.RemoveByPayID(ctx, payID)
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusNoContent).Build()
}
