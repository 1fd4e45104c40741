package main

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/alertkit/pkg/config"
	"github.com/dmitrymomot/alertkit/pkg/email"
	"github.com/dmitrymomot/alertkit/pkg/metrics"
	"github.com/dmitrymomot/alertkit/pkg/push"
	"github.com/dmitrymomot/alertkit/pkg/webhook"
	"github.com/dmitrymomot/alertkit/pkg/whatsapp"
)

type senders struct {
	email    email.EmailSender
	push     push.Sender
	whatsapp whatsapp.Sender
}

// buildSenders selects a provider per channel. HTTP providers share a
// breaker per provider whose transitions are exported as metrics.
func buildSenders(ctx context.Context, collector *metrics.Collector, log *slog.Logger) (senders, error) {
	emailCfg, err := config.Load[email.Config]()
	if err != nil {
		return senders{}, err
	}
	pushCfg, err := config.Load[push.Config]()
	if err != nil {
		return senders{}, err
	}
	whatsappCfg, err := config.Load[whatsapp.Config]()
	if err != nil {
		return senders{}, err
	}

	hook := webhook.WithStateChangeHook(collector.CircuitStateChanged)

	emailSender, err := email.NewSender(ctx, emailCfg)
	if err != nil {
		return senders{}, err
	}
	pushSender, err := push.NewSender(ctx, pushCfg, log,
		push.WithCircuitBreaker(webhook.NewCircuitBreaker("fcm", hook)))
	if err != nil {
		return senders{}, err
	}
	whatsappSender, err := whatsapp.NewSender(whatsappCfg, log,
		whatsapp.WithCircuitBreaker(webhook.NewCircuitBreaker("msg91", hook)))
	if err != nil {
		return senders{}, err
	}

	log.Info("providers selected",
		slog.String("email", emailCfg.Provider),
		slog.String("push", pushCfg.Provider),
		slog.String("whatsapp", whatsappCfg.Provider))

	return senders{email: emailSender, push: pushSender, whatsapp: whatsappSender}, nil
}
