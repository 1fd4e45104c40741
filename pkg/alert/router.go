package alert

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/dmitrymomot/alertkit/pkg/logger"
	"github.com/dmitrymomot/alertkit/pkg/registry"
)

// Listener receives every published event. Implementations must not
// return or panic across Receive.
type Listener interface {
	Channel() Channel
	Receive(ctx context.Context, e Event)
}

// Router dispatches events of one channel to the handler registered for the event type
type Router struct {
	channel  Channel
	handlers *registry.Registry[Handler]
	logger   *slog.Logger
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithRouterLogger sets the logger for the router
func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRouter builds the router and its handler registry. Duplicate or unnamed
// handlers are rejected.
func NewRouter(channel Channel, handlers []Handler, opts ...RouterOption) (*Router, error) {
	if _, err := ParseChannel(string(channel)); err != nil {
		return nil, err
	}

	reg, err := registry.New(handlers...)
	if err != nil {
		return nil, fmt.Errorf("%s router: %w", channel, err)
	}

	r := &Router{
		channel:  channel,
		handlers: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("router"), logger.Channel(string(channel)))

	return r, nil
}

// Channel implements Listener
func (r *Router) Channel() Channel {
	return r.channel
}

// EventTypes lists the event types this router handles
func (r *Router) EventTypes() []string {
	return r.handlers.EventNames()
}

// Route runs the handler for the event and returns its error.
// Events for other channels and unknown event types return nil.
func (r *Router) Route(ctx context.Context, e Event) error {
	if !e.HasChannel(r.channel) {
		return nil
	}

	h, ok := r.handlers.Get(e.Type)
	if !ok {
		r.logger.WarnContext(ctx, "no handler for event type", logger.EventType(e.Type))
		return nil
	}

	return h.Handle(ctx, e.Data)
}

// Receive implements Listener. Handler errors and panics are logged here.
func (r *Router) Receive(ctx context.Context, e Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "handler panicked",
				logger.EventType(e.Type),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	if err := r.Route(ctx, e); err != nil {
		r.logger.ErrorContext(ctx, "failed to handle event",
			logger.EventType(e.Type),
			logger.Error(err))
	}
}
