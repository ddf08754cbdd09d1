package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/Additional-Code/timeclock/internal/config"
	"github.com/Additional-Code/timeclock/internal/database"
	"github.com/Additional-Code/timeclock/pkg/errorbank"
)

// ServiceName is the health check service name reported for timeclock.
const ServiceName = "timeclock.TimeClock"

const healthInterval = 15 * time.Second

// Module serves the timeclock gRPC endpoint with health reporting.
var Module = fx.Module("grpc_server",
	fx.Provide(NewServer),
	fx.Invoke(Run),
)

// Server bundles the gRPC server with its health service.
type Server struct {
	*grpc.Server
	Health *health.Server
}

// NewServer builds a gRPC server with logging and error mapping
// interceptors plus the standard health and reflection services.
func NewServer(logger *zap.Logger) *Server {
	logger = logger.Named("grpc")

	unary := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		err = toStatus(err)
		logCall(logger, "unary", info.FullMethod, start, err)
		return resp, err
	}
	stream := func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := toStatus(handler(srv, ss))
		logCall(logger, "stream", info.FullMethod, start, err)
		return err
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary),
		grpc.ChainStreamInterceptor(stream),
	)
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(server, hs)
	reflection.Register(server)

	return &Server{Server: server, Health: hs}
}

func logCall(logger *zap.Logger, kind, method string, start time.Time, err error) {
	fields := []zap.Field{
		zap.String("kind", kind),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		logger.Warn("grpc call failed", append(fields, zap.Stringer("code", status.Code(err)), zap.Error(err))...)
		return
	}
	logger.Debug("grpc call finished", fields...)
}

// toStatus turns errors without a gRPC status into Internal ones. AppErrors
// carry their own status.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return errorbank.From(err).GRPCStatus().Err()
}

// SetServing reports the same status for the timeclock service and the
// server as a whole.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.Health.SetServingStatus(ServiceName, st)
	s.Health.SetServingStatus("", st)
}

// watchDatabase re-pings the database every interval and flips the health
// status when reachability changes.
func watchDatabase(ctx context.Context, server *Server, db Pinger, interval time.Duration, last bool, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		err := db.Ping(ctx)
		if ok := err == nil; ok != last {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("database reachability changed", zap.Bool("serving", ok), zap.Error(err))
			server.SetServing(ok)
			last = ok
		}
	}
}

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Run binds the gRPC server to the configured address. The health status
// follows the database ping.
func Run(lc fx.Lifecycle, cfg config.Config, server *Server, conns *database.Connections, logger *zap.Logger) {
	addr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	var (
		listener net.Listener
		cancel   context.CancelFunc = func() {}
	)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen grpc: %w", err)
			}
			listener = ln

			err = conns.Ping(ctx)
			if err != nil {
				logger.Warn("database unreachable; reporting not serving", zap.Error(err))
			}
			server.SetServing(err == nil)

			var watchCtx context.Context
			watchCtx, cancel = context.WithCancel(context.Background())
			go watchDatabase(watchCtx, server, conns, healthInterval, err == nil, logger)

			logger.Info("starting gRPC server", zap.String("addr", addr))
			go func() {
				if err := server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
					logger.Fatal("grpc server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping gRPC server")
			cancel()
			server.Health.Shutdown()

			stopped := make(chan struct{})
			go func() {
				server.GracefulStop()
				close(stopped)
			}()
			select {
			case <-ctx.Done():
				server.Stop()
				return ctx.Err()
			case <-stopped:
				return nil
			}
		},
	})
}
