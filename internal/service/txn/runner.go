// Package txn runs service calls inside one transaction each.
package txn

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/persistence"
	"github.com/Additional-Code/timeclock/pkg/errorbank"
)

const instrumentation = "github.com/Additional-Code/timeclock/service"

var tracer = otel.Tracer(instrumentation)

// Runner wraps service calls in a transaction of its session.
type Runner struct {
	session   *persistence.Session
	logger    *zap.Logger
	commits   metric.Int64Counter
	rollbacks metric.Int64Counter
}

// NewRunner builds a runner over a session. Instruments come from the
// global meter provider.
func NewRunner(session *persistence.Session, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	meter := otel.Meter(instrumentation)
	commits, err := meter.Int64Counter("timeclock.tx.commits",
		metric.WithDescription("Service calls whose transaction committed."))
	if err != nil {
		otel.Handle(err)
	}
	rollbacks, err := meter.Int64Counter("timeclock.tx.rollbacks",
		metric.WithDescription("Service calls whose transaction rolled back."))
	if err != nil {
		otel.Handle(err)
	}
	return &Runner{session: session, logger: logger, commits: commits, rollbacks: rollbacks}
}

// Session returns the unit of work the runner drives.
func (r *Runner) Session() *persistence.Session {
	return r.session
}

// Do runs fn in a transaction named op. Persistence failures come back as
// errorbank errors that still match the persistence sentinels.
func (r *Runner) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	attrs := metric.WithAttributes(attribute.String("operation", op))
	err := r.session.InTx(ctx, fn)
	if err != nil {
		if r.rollbacks != nil {
			r.rollbacks.Add(ctx, 1, attrs)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "rolled back")
		appErr := Translate(op, err)
		if appErr.Kind() == errorbank.KindInternal {
			r.logger.Error("transaction rolled back", zap.String("operation", op), zap.Error(err))
		} else {
			r.logger.Debug("transaction rolled back", zap.String("operation", op), zap.Error(err))
		}
		return appErr
	}
	if r.commits != nil {
		r.commits.Add(ctx, 1, attrs)
	}
	return nil
}

// Call is Do for functions returning a value.
func Call[T any](ctx context.Context, r *Runner, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, op, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Translate maps persistence failures onto application error kinds, keeping
// err as the cause.
func Translate(op string, err error) *errorbank.AppError {
	var appErr *errorbank.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	cause := errorbank.WithCause(err)
	switch {
	case errors.Is(err, persistence.ErrEmptyResult):
		return errorbank.NotFound(fmt.Sprintf("%s: no such record", op), cause)
	case errors.Is(err, persistence.ErrNonUniqueResult):
		return errorbank.Conflict(fmt.Sprintf("%s: ambiguous result", op), cause)
	case errors.Is(err, persistence.ErrOptimisticLock):
		return errorbank.PreconditionFailed(fmt.Sprintf("%s: record changed concurrently", op), cause)
	case errors.Is(err, persistence.ErrConstraintViolation):
		return errorbank.Conflict(fmt.Sprintf("%s: constraint violated", op), cause)
	case errors.Is(err, persistence.ErrNotPersisted):
		return errorbank.Unprocessable(fmt.Sprintf("%s: record rejected", op), cause)
	case errors.Is(err, persistence.ErrClosed):
		return errorbank.Unavailable(fmt.Sprintf("%s: session closed", op), cause)
	default:
		return errorbank.Internal(fmt.Sprintf("%s failed", op), cause)
	}
}
