package ingest

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Writer is the subset of *kafka.Writer the producer needs
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer lets event sources publish alerts through Kafka instead of the
// in-process bus. It satisfies Publisher.
type Producer struct {
	writer Writer
}

// NewProducer wraps an existing writer
func NewProducer(w Writer) *Producer {
	return &Producer{writer: w}
}

// NewWriter builds a writer for the ingestion topic
func NewWriter(cfg Config) (*kafka.Writer, error) {
	if !cfg.Enabled() || cfg.Topic == "" {
		return nil, ErrNotConfigured
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, nil
}

// PublishEvent writes one alert record keyed by event type
func (p *Producer) PublishEvent(ctx context.Context, eventType string, channels []string, data map[string]any) error {
	value, err := Encode(Message{EventType: eventType, Channels: channels, Data: data})
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eventType),
		Value: value,
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
