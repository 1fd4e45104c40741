package push

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/alertkit/pkg/logger"
)

// Sender delivers one message to one device and returns the provider message id
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// NewSender builds the sender selected by cfg.Provider. opts only apply to FCM.
func NewSender(ctx context.Context, cfg Config, log *slog.Logger, opts ...FCMOption) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderFCM:
		return NewFCMSender(ctx, cfg, opts...)
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
	return &logSender{logger: log.With(logger.Component("push_log_sender"))}
}

func (s *logSender) Send(ctx context.Context, msg Message) (string, error) {
	if msg.Token == "" {
		return "", ErrMissingToken
	}
	id := "log-" + uuid.NewString()
	s.logger.InfoContext(ctx, "push message",
		logger.MessageID(id),
		slog.String("title", msg.Title),
		slog.String("body", msg.Body),
		slog.Any("data", msg.Data))
	return id, nil
}
