package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// QueryLogger writes every executed statement to the zap logger.
type QueryLogger struct {
	logger *zap.Logger
}

var _ bun.QueryHook = (*QueryLogger)(nil)

// NewQueryLogger builds a bun query hook bound to logger.
func NewQueryLogger(logger *zap.Logger) *QueryLogger {
	return &QueryLogger{logger: logger.Named("sql")}
}

// BeforeQuery implements bun.QueryHook.
func (h *QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery implements bun.QueryHook.
func (h *QueryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	fields := []zap.Field{
		zap.String("operation", event.Operation()),
		zap.String("query", event.Query),
		zap.Duration("duration", time.Since(event.StartTime)),
	}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.logger.Warn("sql statement failed", append(fields, zap.Error(event.Err))...)
		return
	}
	h.logger.Debug("sql statement", fields...)
}
