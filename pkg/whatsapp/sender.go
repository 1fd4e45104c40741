package whatsapp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/alertkit/pkg/logger"
)

// Sender delivers one template message and returns the provider message id
type Sender interface {
	Send(ctx context.Context, msg TemplateMessage) (string, error)
}

// NewSender builds the sender selected by cfg.Provider. opts only apply to MSG91.
func NewSender(cfg Config, log *slog.Logger, opts ...MSG91Option) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderMSG91:
		return NewMSG91Sender(cfg, opts...)
	case ProviderLog, "":
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

type logSender struct {
	logger *slog.Logger
}

// NewLogSender returns a Sender that only logs messages, for local development
func NewLogSender(log *slog.Logger) Sender {
	if log == nil {
		log = slog.Default()
	}
	return &logSender{logger: log.With(logger.Component("whatsapp_log_sender"))}
}

func (s *logSender) Send(ctx context.Context, msg TemplateMessage) (string, error) {
	if msg.Template == "" {
		return "", ErrMissingTemplate
	}
	id := "log-" + uuid.NewString()
	s.logger.InfoContext(ctx, "whatsapp message",
		logger.MessageID(id),
		logger.Template(msg.Template),
		slog.String("to", msg.To),
		slog.Any("variables", msg.Variables))
	return id, nil
}
