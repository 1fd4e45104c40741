package email

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// EmailSender represents an interface for sending emails.
// Implementations return the provider message id.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) (string, error)
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   []string `json:"send_to"`       // Recipient addresses
	Subject  string   `json:"subject"`       // Subject of the email
	BodyHTML string   `json:"body_html"`     // HTML body of the email
	Tag      string   `json:"tag,omitempty"` // Optional
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValidAddress reports whether s looks like a deliverable email address
func IsValidAddress(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// Validate checks the params before they reach a provider
func (p SendEmailParams) Validate() error {
	if len(p.SendTo) == 0 {
		return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
	}
	for _, to := range p.SendTo {
		if strings.TrimSpace(to) == "" {
			return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
		}
		if !IsValidAddress(to) {
			return fmt.Errorf("%w: SendTo must be a valid email address: %q", ErrInvalidParams, to)
		}
	}
	if strings.TrimSpace(p.Subject) == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	}
	if strings.TrimSpace(p.BodyHTML) == "" {
		return fmt.Errorf("%w: BodyHTML is required", ErrInvalidParams)
	}
	return nil
}
