package whatsapp

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/alertkit/pkg/alert"
	"github.com/dmitrymomot/alertkit/pkg/logger"
)

// Template names registered with the WhatsApp Business account
const (
	TemplateWelcome          = "zappy_welcome_users"
	TemplateBookingCreated   = "zappy_booking_created"
	TemplateBookingConfirmed = "zappy_booking_confirmed"
	TemplateBookingCancelled = "zappy_booking_cancelled"
	TemplatePaymentReceived  = "zappy_payment_received"
)

type handler struct {
	event    string
	template string
	// vars lists the event data keys filling the template body, in order
	vars   []string
	queue  Enqueuer
	logger *slog.Logger
}

func (h *handler) EventName() string { return h.event }

func (h *handler) Handle(ctx context.Context, data alert.Data) error {
	mobile := data.String(alert.KeyMobile)
	if mobile == "" {
		h.logger.WarnContext(ctx, "whatsapp skipped, no mobile number",
			logger.EventType(h.event),
			logger.UserID(data.String(alert.KeyUserID)))
		return nil
	}

	// the worker rejects what cannot be normalized, so the raw value is kept
	to := mobile
	if normalized, err := NormalizePhone(mobile); err == nil {
		to = normalized
	}

	variables := make([]string, len(h.vars))
	for i, key := range h.vars {
		variables[i] = data.String(key)
	}

	job := Job{
		To:        to,
		Template:  h.template,
		Variables: variables,
	}
	if key := dedupeKey(h.event, data); key != "" {
		job.Meta = map[string]string{MetaDedupeKey: key}
	}

	id, err := h.queue.Enqueue(ctx, job)
	if err != nil {
		return err
	}

	h.logger.DebugContext(ctx, "whatsapp job enqueued",
		logger.EventType(h.event),
		logger.TaskID(id),
		logger.Template(h.template))
	return nil
}

// dedupeKey is "<EVENT>:<bookingId>", falling back to the user id
func dedupeKey(event string, data alert.Data) string {
	id := data.String(alert.KeyBookingID)
	if id == "" {
		id = data.String(alert.KeyUserID)
	}
	if id == "" {
		return ""
	}
	return event + ":" + id
}

// NewHandlers builds the whatsapp handler set
func NewHandlers(q Enqueuer, log *slog.Logger) []alert.Handler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Channel(string(alert.ChannelWhatsApp)))

	newHandler := func(event, template string, vars ...string) *handler {
		return &handler{event: event, template: template, vars: vars, queue: q, logger: log}
	}

	return []alert.Handler{
		newHandler(alert.EventUserRegistered, TemplateWelcome,
			alert.KeyName),
		newHandler(alert.EventBookingCreated, TemplateBookingCreated,
			alert.KeyName, alert.KeyBookingID, alert.KeyBookingDate),
		newHandler(alert.EventBookingConfirmed, TemplateBookingConfirmed,
			alert.KeyName, alert.KeyBookingID, alert.KeyBookingDate),
		newHandler(alert.EventBookingCancelled, TemplateBookingCancelled,
			alert.KeyName, alert.KeyBookingID),
		newHandler(alert.EventPaymentReceived, TemplatePaymentReceived,
			alert.KeyName, alert.KeyAmount, alert.KeyBookingID),
	}
}

// NewRouter builds the whatsapp channel router
func NewRouter(q Enqueuer, log *slog.Logger) (*alert.Router, error) {
	if log == nil {
		log = slog.Default()
	}
	return alert.NewRouter(alert.ChannelWhatsApp, NewHandlers(q, log), alert.WithRouterLogger(log))
}
