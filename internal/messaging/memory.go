package messaging

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQueueFull is returned by MemoryClient.Publish when nothing consumes
// fast enough to keep up.
var ErrQueueFull = errors.New("messaging: memory queue full")

// historyLimit bounds the messages kept for Published.
const historyLimit = 1024

// MemoryClient keeps published messages in process. It backs tests and
// single-binary runs where a broker is not available.
type MemoryClient struct {
	topic string

	mu        sync.Mutex
	next      int64
	published []Message
	queue     chan Message
}

var _ Client = (*MemoryClient)(nil)

// NewMemoryClient builds an in-process client buffering up to size
// undelivered messages.
func NewMemoryClient(topic string, size int) *MemoryClient {
	if size <= 0 {
		size = 64
	}
	return &MemoryClient{topic: topic, queue: make(chan Message, size)}
}

// Publish records the message and queues it for Consume. A full queue
// fails fast with ErrQueueFull instead of blocking the writer.
func (m *MemoryClient) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg.Topic = m.topic
	if msg.Time.IsZero() {
		msg.Time = time.Now().UTC()
	}

	m.mu.Lock()
	msg.Offset = m.next
	m.next++
	m.published = append(m.published, msg)
	if len(m.published) > historyLimit {
		m.published = append([]Message(nil), m.published[len(m.published)-historyLimit:]...)
	}
	m.mu.Unlock()

	select {
	case m.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Consume hands queued messages to handler until ctx is done.
func (m *MemoryClient) Consume(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-m.queue:
			_ = handler(ctx, msg)
		}
	}
}

// Topic returns the configured topic.
func (m *MemoryClient) Topic() string { return m.topic }

// Published returns a copy of the most recent published messages.
func (m *MemoryClient) Published() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.published...)
}
