// Package changes consumes committed record changes and writes them to the
// audit log.
package changes

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
	"github.com/Additional-Code/timeclock/internal/events"
	"github.com/Additional-Code/timeclock/internal/messaging"
	"github.com/Additional-Code/timeclock/internal/worker"
)

const instrumentation = "github.com/Additional-Code/timeclock/worker/changes"

var workerTracer = otel.Tracer(instrumentation)

// Module registers the change audit handler.
var Module = fx.Module("worker_changes",
	fx.Provide(
		fx.Annotate(
			NewAuditHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewAuditHandler logs every change published on the configured topic
// and counts them per entity and action.
func NewAuditHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	logger = logger.Named("audit")
	consumed, err := otel.Meter(instrumentation).Int64Counter("timeclock.changes.consumed",
		metric.WithDescription("Record changes read from the change topic."))
	if err != nil {
		otel.Handle(err)
	}

	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.changes.audit", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.Int64("messaging.offset", msg.Offset),
		))
		defer span.End()

		change, err := events.Decode(msg)
		if err != nil {
			logger.Error("failed to decode change", zap.Error(err), zap.ByteString("key", msg.Key))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			// a malformed message never becomes readable; skip it
			return nil
		}

		if consumed != nil {
			consumed.Add(ctx, 1, metric.WithAttributes(
				attribute.String("entity", change.Entity),
				attribute.String("action", change.Action),
			))
		}
		logger.Info("record changed",
			zap.String("change_id", change.ID),
			zap.String("entity", change.Entity),
			zap.String("action", change.Action),
			zap.String("key", change.Key),
			zap.Int("version", change.Version),
			zap.String("actor", change.Actor),
			zap.Time("occurred_at", change.OccurredAt),
		)

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
