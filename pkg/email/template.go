package email

import (
	"fmt"

	"github.com/cbroglie/mustache"

	"github.com/dmitrymomot/alertkit/pkg/alert"
	"github.com/dmitrymomot/alertkit/pkg/email/templates"
)

// Template names an embedded email body
type Template string

const (
	TemplateWelcome          Template = "welcome"
	TemplateBookingCreated   Template = "booking_created"
	TemplateBookingConfirmed Template = "booking_confirmed"
	TemplateBookingCancelled Template = "booking_cancelled"
	TemplatePaymentReceived  Template = "payment_received"
	TemplateContactRequest   Template = "contact_request"
)

// default subjects, rendered with the job payload. Subjects are plain text,
// so values are not HTML-escaped.
var subjects = map[Template]string{
	TemplateWelcome:          "Welcome to Zappy{{#name}}, {{{name}}}{{/name}}!",
	TemplateBookingCreated:   "Booking {{{bookingId}}} received",
	TemplateBookingConfirmed: "Booking {{{bookingId}}} confirmed",
	TemplateBookingCancelled: "Booking {{{bookingId}}} cancelled",
	TemplatePaymentReceived:  "Payment received",
	TemplateContactRequest:   "New contact request{{#subject}}: {{{subject}}}{{/subject}}",
}

// Valid reports whether t is a known template
func (t Template) Valid() bool {
	_, ok := subjects[t]
	return ok && templates.Exists(string(t))
}

func (t Template) String() string { return string(t) }

// Render produces the subject and HTML body for the template.
// A non-empty subject overrides the default one.
func (t Template) Render(subject string, payload map[string]any) (string, string, error) {
	if !t.Valid() {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, t)
	}

	vars := alert.Data(payload).TemplateVars()
	if subject == "" {
		s, err := mustache.Render(subjects[t], vars)
		if err != nil {
			return "", "", fmt.Errorf("%w: subject of %s: %w", ErrRenderTemplate, t, err)
		}
		subject = s
	}

	body, err := templates.Render(string(t), vars)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrRenderTemplate, t, err)
	}
	return subject, body, nil
}
