package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/dmitrymomot/alertkit/pkg/alert"
	"github.com/dmitrymomot/alertkit/pkg/logger"
)

// Ingest results reported to the Observer
const (
	ResultPublished = "published"
	ResultRejected  = "rejected"
)

// Reader is the subset of *kafka.Reader the consumer needs
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher accepts alert events; *alert.Bus satisfies it
type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, channels []string, data map[string]any) error
}

// Observer counts consumed messages
type Observer interface {
	MessageIngested(topic, result string)
}

// Consumer reads alert messages from Kafka and publishes them on the bus.
// Offsets are committed after the bus accepted the event, so a crash in
// between redelivers the record. Malformed records are logged and committed.
type Consumer struct {
	reader    Reader
	publisher Publisher
	observer  Observer
	logger    *slog.Logger
}

// ConsumerOption configures a Consumer
type ConsumerOption func(*Consumer)

// WithLogger sets the consumer logger
func WithLogger(l *slog.Logger) ConsumerOption {
	return func(c *Consumer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver reports every consumed message
func WithObserver(o Observer) ConsumerOption {
	return func(c *Consumer) { c.observer = o }
}

// NewConsumer creates a consumer over an existing reader
func NewConsumer(reader Reader, publisher Publisher, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		reader:    reader,
		publisher: publisher,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("kafka_ingest"))
	return c
}

// NewReader builds a consumer group reader with explicit commits
func NewReader(cfg Config) (*kafka.Reader, error) {
	if !cfg.Enabled() || cfg.Topic == "" || cfg.GroupID == "" {
		return nil, ErrNotConfigured
	}
	cfg = cfg.withDefaults()
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: kafka.FirstOffset,
		// zero interval: CommitMessages is synchronous
		CommitInterval: 0,
	}), nil
}

// Run consumes until ctx is cancelled. It returns nil on cancellation and
// the error otherwise; an uncommitted record is redelivered on restart.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := c.handle(ctx, msg); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

// handle returns an error only when the record must not be committed
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	attrs := []any{
		slog.String("topic", msg.Topic),
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	}

	m, err := Decode(msg.Value)
	if err != nil {
		c.logger.WarnContext(ctx, "malformed alert message skipped", append(attrs, logger.Error(err))...)
		c.observe(msg.Topic, ResultRejected)
		return nil
	}

	err = c.publisher.PublishEvent(ctx, m.EventType, m.Channels, m.Data)
	switch {
	case err == nil:
		c.logger.DebugContext(ctx, "alert message published", append(attrs, logger.EventType(m.EventType))...)
		c.observe(msg.Topic, ResultPublished)
		return nil
	case errors.Is(err, alert.ErrBusClosed):
		return errors.Join(ErrPublish, err)
	default:
		c.logger.WarnContext(ctx, "invalid alert event skipped",
			append(attrs, logger.EventType(m.EventType), logger.Error(err))...)
		c.observe(msg.Topic, ResultRejected)
		return nil
	}
}

func (c *Consumer) observe(topic, result string) {
	if c.observer != nil {
		c.observer.MessageIngested(topic, result)
	}
}

// Close closes the reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
