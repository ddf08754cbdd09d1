package app

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Additional-Code/timeclock/internal/audit"
	"github.com/Additional-Code/timeclock/internal/cache"
	"github.com/Additional-Code/timeclock/internal/config"
	"github.com/Additional-Code/timeclock/internal/database"
	"github.com/Additional-Code/timeclock/internal/events"
	"github.com/Additional-Code/timeclock/internal/logger"
	"github.com/Additional-Code/timeclock/internal/messaging"
	"github.com/Additional-Code/timeclock/internal/migration"
	"github.com/Additional-Code/timeclock/internal/observability"
	grpcserver "github.com/Additional-Code/timeclock/internal/server/grpc"
	httpserver "github.com/Additional-Code/timeclock/internal/server/http"
	"github.com/Additional-Code/timeclock/internal/timeclock"
	transporthttp "github.com/Additional-Code/timeclock/internal/transport/http"
	"github.com/Additional-Code/timeclock/internal/worker"
	"github.com/Additional-Code/timeclock/internal/worker/changes"
)

// Core is shared by every command.
var Core = fx.Options(
	fx.WithLogger(newFxLogger),
	config.Module,
	logger.Module,
	observability.Module,
	database.Module,
	migration.Module,
	cache.Module,
	messaging.Module,
	events.Module,
	audit.Module,
	timeclock.Module,
)

var (
	httpLayer   = fx.Options(httpserver.Module, transporthttp.Module)
	grpcLayer   = grpcserver.Module
	workerLayer = fx.Options(worker.Module, changes.Module)
)

// HTTP adds the REST server.
var HTTP = fx.Options(
	Core,
	httpLayer,
)

// GRPC serves the health and reflection services.
var GRPC = fx.Options(
	Core,
	grpcLayer,
)

// Worker adds the change consumers.
var Worker = fx.Options(
	Core,
	workerLayer,
)

// Server runs every listener in one process; the change worker only
// consumes when messaging and workers are enabled.
var Server = fx.Options(
	Core,
	httpLayer,
	grpcLayer,
	workerLayer,
)

// Module is the default application wiring.
var Module = Server

func newFxLogger(l *zap.Logger) fxevent.Logger {
	fxLogger := &fxevent.ZapLogger{Logger: l.Named("fx")}
	fxLogger.UseLogLevel(zapcore.DebugLevel)
	return fxLogger
}
