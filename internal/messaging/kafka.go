package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
)

const fetchRetryDelay = time.Second

// KafkaClient writes with a hash balancer so changes to one record keep
// their order, and reads as a member of the configured consumer group.
type KafkaClient struct {
	writer *kafka.Writer
	reader *kafka.Reader
	topic  string
	logger *zap.Logger
}

// NewKafkaClient builds the writer and reader. Nothing dials until the
// first publish or fetch.
func NewKafkaClient(cfg config.Messaging, logger *zap.Logger) *KafkaClient {
	logger = logger.Named("kafka")
	topic := cfg.Kafka.Topic

	return &KafkaClient{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Logger:       kafka.LoggerFunc(logger.Sugar().Debugf),
			ErrorLogger:  kafka.LoggerFunc(logger.Sugar().Errorf),
		},
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.ConsumerGroup,
			Topic:          topic,
			MinBytes:       cfg.Kafka.MinBytes,
			MaxBytes:       cfg.Kafka.MaxBytes,
			CommitInterval: cfg.Kafka.CommitInterval,
			Dialer: &kafka.Dialer{
				Timeout:  cfg.Kafka.ConnectTimeout,
				ClientID: cfg.Kafka.ClientID,
			},
			ErrorLogger: kafka.LoggerFunc(logger.Sugar().Errorf),
		}),
		topic:  topic,
		logger: logger,
	}
}

func (k *KafkaClient) Topic() string { return k.topic }

func (k *KafkaClient) Publish(ctx context.Context, msg Message) error {
	return k.writer.WriteMessages(ctx, toKafka(msg))
}

// Consume commits a message only after handler accepted it. Rejected
// messages are redelivered after a rebalance.
func (k *KafkaClient) Consume(ctx context.Context, handler Handler) error {
	for {
		msg, err := k.reader.FetchMessage(ctx)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			k.logger.Error("kafka fetch failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		if err := handler(ctx, fromKafka(msg)); err != nil {
			k.logger.Error("message handler failed",
				zap.Error(err), zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))
			continue
		}
		if err := k.reader.CommitMessages(ctx, msg); err != nil {
			k.logger.Warn("commit failed", zap.Error(err), zap.Int64("offset", msg.Offset))
		}
	}
}

// Close flushes pending writes and leaves the consumer group.
func (k *KafkaClient) Close() error {
	k.logger.Info("closing kafka client")
	return errors.Join(k.writer.Close(), k.reader.Close())
}

func toKafka(msg Message) kafka.Message {
	out := kafka.Message{Key: msg.Key, Value: msg.Value, Time: msg.Time}
	for key, value := range msg.Headers {
		out.Headers = append(out.Headers, kafka.Header{Key: key, Value: []byte(value)})
	}
	return out
}

func fromKafka(msg kafka.Message) Message {
	out := Message{
		Topic:  msg.Topic,
		Key:    append([]byte(nil), msg.Key...),
		Value:  append([]byte(nil), msg.Value...),
		Offset: msg.Offset,
		Time:   msg.Time,
	}
	if len(msg.Headers) > 0 {
		out.Headers = make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			out.Headers[h.Key] = string(h.Value)
		}
	}
	return out
}
