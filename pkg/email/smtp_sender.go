package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

type smtpSender struct {
	config Config
}

// NewSMTPSender creates an SMTP sender on top of go-mail.
// With no SMTP host configured every send fails with ErrNotConfigured.
func NewSMTPSender(cfg Config) EmailSender {
	return &smtpSender{config: cfg}
}

// SendEmail implements EmailSender. The returned id is the Message-ID header.
func (s *smtpSender) SendEmail(ctx context.Context, params SendEmailParams) (string, error) {
	if s.config.SMTPHost == "" {
		return "", fmt.Errorf("%w: SMTP_HOST is empty", ErrNotConfigured)
	}
	if err := params.Validate(); err != nil {
		return "", err
	}

	m := mail.NewMsg()
	if err := m.From(s.config.SenderEmail); err != nil {
		return "", fmt.Errorf("%w: from address: %w", ErrInvalidConfig, err)
	}
	if err := m.To(params.SendTo...); err != nil {
		return "", fmt.Errorf("%w: to address: %w", ErrInvalidParams, err)
	}
	if s.config.SupportEmail != "" {
		if err := m.ReplyTo(s.config.SupportEmail); err != nil {
			return "", fmt.Errorf("%w: reply-to address: %w", ErrInvalidConfig, err)
		}
	}
	messageID := uuid.NewString()
	m.SetMessageIDWithValue(messageID)
	m.Subject(params.Subject)
	m.SetBodyString(mail.TypeTextHTML, params.BodyHTML)

	client, err := mail.NewClient(s.config.SMTPHost, s.clientOptions()...)
	if err != nil {
		return "", errors.Join(ErrFailedToSendEmail, err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return "", errors.Join(ErrFailedToSendEmail, err)
	}
	return messageID, nil
}

func (s *smtpSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.SMTPPort),
		mail.WithTimeout(s.config.SMTPTimeout),
	}
	if s.config.SMTPSSL {
		opts = append(opts, mail.WithSSLPort(true))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.config.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.SMTPUsername),
			mail.WithPassword(s.config.SMTPPassword),
		)
	}
	return opts
}
