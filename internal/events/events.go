// Package events publishes record changes committed by the services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/messaging"
)

// Actions carried by a Change.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionRemoved = "removed"
)

// Change describes one committed write.
type Change struct {
	ID         string    `json:"id"`
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	Key        string    `json:"key"`
	Version    int       `json:"version"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits changes. Publishing is best effort; failures are logged
// and never surface to the caller whose write already committed.
type Publisher interface {
	Publish(ctx context.Context, change Change)
}

// Module provides the bus-backed publisher to Fx.
var Module = fx.Provide(
	fx.Annotate(NewBus, fx.As(new(Publisher))),
)

// Bus publishes changes as JSON messages on the configured topic.
type Bus struct {
	client messaging.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewBus builds a publisher over a messaging client.
func NewBus(client messaging.Client, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		client: client,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Publish fills in the event id and time and writes the change.
func (b *Bus) Publish(ctx context.Context, change Change) {
	if b == nil || b.client == nil {
		return
	}
	if change.ID == "" {
		change.ID = uuid.NewString()
	}
	if change.OccurredAt.IsZero() {
		change.OccurredAt = b.now()
	}

	msg, err := Encode(change)
	if err != nil {
		b.logger.Error("encode change", zap.String("entity", change.Entity), zap.Error(err))
		return
	}
	if err := b.client.Publish(ctx, msg); err != nil {
		b.logger.Error("publish change",
			zap.String("entity", change.Entity),
			zap.String("key", change.Key),
			zap.String("action", change.Action),
			zap.Error(err),
		)
	}
}

// Encode turns a change into a bus message keyed by entity and natural key,
// so changes of one record stay ordered within a partition.
func Encode(change Change) (messaging.Message, error) {
	payload, err := json.Marshal(change)
	if err != nil {
		return messaging.Message{}, err
	}
	return messaging.Message{
		Key:   []byte(change.Entity + ":" + change.Key),
		Value: payload,
		Headers: map[string]string{
			"entity": change.Entity,
			"action": change.Action,
		},
	}, nil
}

// Decode parses a change from a bus message.
func Decode(msg messaging.Message) (Change, error) {
	var change Change
	if err := json.Unmarshal(msg.Value, &change); err != nil {
		return Change{}, fmt.Errorf("decode change at offset %d: %w", msg.Offset, err)
	}
	return change, nil
}

// Discard drops every change.
type Discard struct{}

// Publish implements Publisher.
func (Discard) Publish(context.Context, Change) {}
