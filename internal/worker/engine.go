// Package worker consumes change events from the message bus and fans them
// out to the registered handlers.
package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
	"github.com/Additional-Code/timeclock/internal/messaging"
)

const maxBackoff = 30 * time.Second

// HandlerRegistration binds a topic to a handler. Several handlers may
// share a topic; each message reaches all of them in registration order.
type HandlerRegistration struct {
	Topic   string
	Handler messaging.Handler
}

// Params are the engine dependencies.
type Params struct {
	fx.In

	Client        messaging.Client
	Logger        *zap.Logger
	Config        config.Config
	Registrations []HandlerRegistration `group:"worker.handlers"`
}

// Engine runs a fixed number of consumers against one messaging client.
type Engine struct {
	client   messaging.Client
	logger   *zap.Logger
	settings config.Worker
	enabled  bool
	handlers map[string][]messaging.Handler
	handled  metric.Int64Counter

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine groups the registrations by topic. Incomplete ones are dropped.
func NewEngine(p Params) *Engine {
	handlers := make(map[string][]messaging.Handler, len(p.Registrations))
	for _, r := range p.Registrations {
		if r.Topic == "" || r.Handler == nil {
			continue
		}
		handlers[r.Topic] = append(handlers[r.Topic], r.Handler)
	}

	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	handled, err := otel.Meter("github.com/Additional-Code/timeclock/worker").Int64Counter(
		"timeclock.worker.messages",
		metric.WithDescription("Messages dispatched by the worker engine, by topic and outcome."))
	if err != nil {
		otel.Handle(err)
	}

	return &Engine{
		client:   p.Client,
		logger:   logger.Named("worker"),
		settings: p.Config.Messaging.Workers,
		enabled:  p.Config.Messaging.Enabled && p.Config.Messaging.Workers.Enabled,
		handlers: handlers,
		handled:  handled,
	}
}

// Module starts and stops the engine with the app.
var Module = fx.Options(
	fx.Provide(NewEngine),
	fx.Invoke(func(lc fx.Lifecycle, engine *Engine) {
		lc.Append(fx.Hook{OnStart: engine.Start, OnStop: engine.Stop})
	}),
)

// Topics lists the topics with at least one handler, sorted.
func (e *Engine) Topics() []string {
	out := make([]string, 0, len(e.handlers))
	for topic := range e.handlers {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

// Start launches the consumers unless messaging or workers are disabled.
// The consumers outlive ctx; Stop ends them.
func (e *Engine) Start(context.Context) error {
	if !e.enabled {
		e.logger.Info("worker engine disabled")
		return nil
	}
	if len(e.handlers) == 0 {
		e.logger.Info("worker engine has no handlers; skipping")
		return nil
	}

	concurrency := max(e.settings.Concurrency, 1)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	for i := range concurrency {
		e.wg.Add(1)
		go func(id int) {
			defer e.wg.Done()
			e.consumeLoop(runCtx, id)
		}(i)
	}

	e.logger.Info("worker engine started", zap.Int("workers", concurrency), zap.Strings("topics", e.Topics()))
	return nil
}

// Stop cancels the consumers and waits for in-flight messages or ctx.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		e.logger.Info("worker engine stopped")
		return nil
	}
}

// Dispatch hands msg to every handler registered for its topic. Messages on
// unknown topics are acknowledged and dropped.
func (e *Engine) Dispatch(ctx context.Context, msg messaging.Message) error {
	handlers, ok := e.handlers[msg.Topic]
	if !ok {
		e.logger.Warn("no handler for topic", zap.String("topic", msg.Topic))
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)

	if e.handled != nil {
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		e.handled.Add(ctx, 1, metric.WithAttributes(
			attribute.String("topic", msg.Topic),
			attribute.String("outcome", outcome),
		))
	}
	return err
}

func (e *Engine) consumeLoop(ctx context.Context, id int) {
	initial := e.settings.PollInterval
	if initial <= 0 {
		initial = time.Second
	}
	backoff := initial
	logger := e.logger.With(zap.Int("worker_id", id))

	for ctx.Err() == nil {
		err := e.client.Consume(ctx, func(msgCtx context.Context, msg messaging.Message) error {
			logger.Debug("processing message", zap.String("topic", msg.Topic), zap.ByteString("key", msg.Key))
			backoff = initial
			return e.Dispatch(msgCtx, msg)
		})
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}

		logger.Error("consume loop error", zap.Error(err), zap.Duration("retry_in", backoff))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
