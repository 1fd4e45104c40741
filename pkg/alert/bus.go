package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/alertkit/pkg/logger"
)

// BusObserver is notified once per accepted event
type BusObserver interface {
	EventPublished(eventType string, channels []Channel)
}

// Bus fans events out to a closed set of listeners registered at construction
type Bus struct {
	listeners []Listener
	logger    *slog.Logger
	observer  BusObserver

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// BusOption configures a Bus
type BusOption func(*Bus)

// WithBusLogger sets the logger for the bus
func WithBusLogger(l *slog.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithBusObserver reports published events to observer
func WithBusObserver(observer BusObserver) BusOption {
	return func(b *Bus) {
		b.observer = observer
	}
}

// NewBus registers the listeners. At most one listener per channel.
func NewBus(listeners []Listener, opts ...BusOption) (*Bus, error) {
	if len(listeners) == 0 {
		return nil, ErrNoRouters
	}

	seen := make(map[Channel]struct{}, len(listeners))
	for _, l := range listeners {
		if l == nil {
			return nil, fmt.Errorf("%w: nil listener", ErrNoRouters)
		}
		if _, dup := seen[l.Channel()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRouter, l.Channel())
		}
		seen[l.Channel()] = struct{}{}
	}

	b := &Bus{
		listeners: append([]Listener(nil), listeners...),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logger.Component("alert_bus"))

	return b, nil
}

// Publish hands the event to every listener and returns without waiting.
// Listeners run with a context that keeps the caller's values but not its
// cancellation, so a finished request does not abort notification work.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.WarnContext(ctx, "event dropped, bus is closed", logger.EventType(e.Type))
		return
	}

	if b.observer != nil {
		b.observer.EventPublished(e.Type, e.Channels)
	}

	dispatchCtx := context.WithoutCancel(ctx)
	b.wg.Add(len(b.listeners))
	for _, l := range b.listeners {
		go b.dispatch(dispatchCtx, l, e.clone())
	}
}

// PublishEvent validates the ingestion fields and publishes the event
func (b *Bus) PublishEvent(ctx context.Context, eventType string, channels []string, data map[string]any) error {
	e, err := NewEvent(eventType, channels, data)
	if err != nil {
		return err
	}

	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrBusClosed
	}

	b.Publish(ctx, e)
	return nil
}

func (b *Bus) dispatch(ctx context.Context, l Listener, e Event) {
	defer b.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.ErrorContext(ctx, "listener panicked",
				logger.Channel(string(l.Channel())),
				logger.EventType(e.Type),
				slog.Any("panic", rec))
		}
	}()

	l.Receive(ctx, e)
}

// Close stops accepting events and waits for in-flight dispatches or ctx
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
