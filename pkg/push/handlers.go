package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cbroglie/mustache"

	"github.com/dmitrymomot/alertkit/pkg/alert"
	"github.com/dmitrymomot/alertkit/pkg/logger"
)

// pushCopy is the notification text of one event, as mustache templates over the event data
type pushCopy struct {
	title string
	body  string
}

var eventCopy = map[string]pushCopy{
	alert.EventUserRegistered: {
		title: "Welcome to Zappy{{#name}}, {{{name}}}{{/name}}!",
		body:  "Your account is ready. Start exploring venues near you.",
	},
	alert.EventBookingConfirmed: {
		title: "Booking confirmed",
		body:  "Booking {{{bookingId}}}{{#bookingDate}} on {{{bookingDate}}}{{/bookingDate}} is confirmed.",
	},
	alert.EventBookingCancelled: {
		title: "Booking cancelled",
		body:  "Booking {{{bookingId}}} was cancelled.{{#reason}} {{{reason}}}{{/reason}}",
	},
	alert.EventPaymentReceived: {
		title: "Payment received",
		body:  "We received {{{amount}}}{{#currency}} {{{currency}}}{{/currency}}{{#bookingId}} for booking {{{bookingId}}}{{/bookingId}}.",
	},
}

type handler struct {
	event  string
	title  *mustache.Template
	body   *mustache.Template
	queue  Enqueuer
	logger *slog.Logger
}

func (h *handler) EventName() string { return h.event }

func (h *handler) Handle(ctx context.Context, data alert.Data) error {
	userID := data.String(alert.KeyUserID)
	if userID == "" {
		h.logger.WarnContext(ctx, "push skipped, no user id", logger.EventType(h.event))
		return nil
	}

	vars := data.TemplateVars()
	title, err := h.title.Render(vars)
	if err != nil {
		return fmt.Errorf("render push title: %w", err)
	}
	body, err := h.body.Render(vars)
	if err != nil {
		return fmt.Errorf("render push body: %w", err)
	}

	jobData := map[string]string{"event": h.event}
	if id := data.String(alert.KeyBookingID); id != "" {
		jobData[alert.KeyBookingID] = id
	}

	id, err := h.queue.Enqueue(ctx, Job{
		UserID: userID,
		Title:  title,
		Body:   body,
		Data:   jobData,
	})
	if errors.Is(err, ErrNoActiveTokens) {
		h.logger.WarnContext(ctx, "push skipped, user has no active devices",
			logger.EventType(h.event),
			logger.UserID(userID))
		return nil
	}
	if err != nil {
		return err
	}

	h.logger.DebugContext(ctx, "push job enqueued",
		logger.EventType(h.event),
		logger.UserID(userID),
		logger.TaskID(id))
	return nil
}

// NewHandlers builds the push handler set
func NewHandlers(q Enqueuer, log *slog.Logger) []alert.Handler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Channel(string(alert.ChannelPush)))

	events := []string{
		alert.EventUserRegistered,
		alert.EventBookingConfirmed,
		alert.EventBookingCancelled,
		alert.EventPaymentReceived,
	}
	handlers := make([]alert.Handler, 0, len(events))
	for _, event := range events {
		c := eventCopy[event]
		handlers = append(handlers, &handler{
			event:  event,
			title:  mustParse(c.title),
			body:   mustParse(c.body),
			queue:  q,
			logger: log,
		})
	}
	return handlers
}

// NewRouter builds the push channel router
func NewRouter(q Enqueuer, log *slog.Logger) (*alert.Router, error) {
	if log == nil {
		log = slog.Default()
	}
	return alert.NewRouter(alert.ChannelPush, NewHandlers(q, log), alert.WithRouterLogger(log))
}

func mustParse(s string) *mustache.Template {
	tpl, err := mustache.ParseString(s)
	if err != nil {
		panic(fmt.Sprintf("push: parse template %q: %v", s, err))
	}
	return tpl
}
