// Package messaging abstracts the bus that carries change events.
package messaging

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
)

const memoryBuffer = 256

// Message is one record on the bus.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
	Offset  int64
	Time    time.Time
}

// Handler processes an inbound message. A non-nil error leaves the message
// unacknowledged.
type Handler func(context.Context, Message) error

// Client publishes to and consumes from a single topic.
type Client interface {
	Publish(ctx context.Context, msg Message) error
	// Consume blocks, feeding messages to handler until ctx ends.
	Consume(ctx context.Context, handler Handler) error
	Topic() string
}

// Module provides the change bus client.
var Module = fx.Provide(NewClient)

// NewClient picks the driver named by cfg.Messaging.Driver.
func NewClient(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	topic := cfg.Messaging.Kafka.Topic

	driver := cfg.Messaging.Driver
	if !cfg.Messaging.Enabled {
		driver = "noop"
	}
	switch driver {
	case "noop":
		logger.Info("messaging disabled; change events are dropped")
		return noopClient{topic: topic}, nil
	case "memory":
		logger.Info("messaging kept in process", zap.String("topic", topic))
		return NewMemoryClient(topic, memoryBuffer), nil
	case "kafka":
		client := NewKafkaClient(cfg.Messaging, logger)
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported messaging driver: %s", cfg.Messaging.Driver)
	}
}

type noopClient struct {
	topic string
}

func (n noopClient) Publish(context.Context, Message) error { return nil }

func (n noopClient) Consume(ctx context.Context, _ Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (n noopClient) Topic() string { return n.topic }
