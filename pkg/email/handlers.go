package email

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/alertkit/pkg/alert"
	"github.com/dmitrymomot/alertkit/pkg/logger"
)

type handler struct {
	event    string
	template Template
	queue    Enqueuer
	logger   *slog.Logger
	// admins, when set, replaces the event "email" field as the recipient list
	admins Recipients
}

func (h *handler) EventName() string { return h.event }

func (h *handler) Handle(ctx context.Context, data alert.Data) error {
	to := h.admins
	if to == nil {
		to = compact(data.Strings(alert.KeyEmail))
	}
	if len(to) == 0 {
		h.logger.WarnContext(ctx, "email skipped, no recipient",
			logger.EventType(h.event),
			logger.UserID(data.String(alert.KeyUserID)))
		return nil
	}

	id, err := h.queue.Enqueue(ctx, Job{
		To:       to,
		Template: h.template,
		Payload:  data.Map(),
	})
	if err != nil {
		return err
	}

	h.logger.DebugContext(ctx, "email job enqueued",
		logger.EventType(h.event),
		logger.TaskID(id),
		logger.Template(string(h.template)))
	return nil
}

// NewHandlers builds the email handler set. admins receive CONTACT_REQUEST;
// with no admins that event is logged and dropped.
func NewHandlers(q Enqueuer, admins []string, log *slog.Logger) []alert.Handler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Channel(string(alert.ChannelEmail)))

	newHandler := func(event string, tpl Template) *handler {
		return &handler{event: event, template: tpl, queue: q, logger: log}
	}
	contact := newHandler(alert.EventContactRequest, TemplateContactRequest)
	contact.admins = compact(admins)

	return []alert.Handler{
		newHandler(alert.EventUserRegistered, TemplateWelcome),
		newHandler(alert.EventBookingCreated, TemplateBookingCreated),
		newHandler(alert.EventBookingConfirmed, TemplateBookingConfirmed),
		newHandler(alert.EventBookingCancelled, TemplateBookingCancelled),
		newHandler(alert.EventPaymentReceived, TemplatePaymentReceived),
		contact,
	}
}

// NewRouter builds the email channel router
func NewRouter(q Enqueuer, admins []string, log *slog.Logger) (*alert.Router, error) {
	if log == nil {
		log = slog.Default()
	}
	return alert.NewRouter(alert.ChannelEmail, NewHandlers(q, admins, log), alert.WithRouterLogger(log))
}
