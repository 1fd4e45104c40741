package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrymomot/alertkit/pkg/webhook"
)

// MSG91Sender posts template messages to the MSG91 WhatsApp bulk outbound API
type MSG91Sender struct {
	cfg     Config
	sender  *webhook.Sender
	breaker *webhook.CircuitBreaker
}

// MSG91Option configures an MSG91Sender
type MSG91Option func(*MSG91Sender)

// WithWebhookSender sets the HTTP transport
func WithWebhookSender(s *webhook.Sender) MSG91Option {
	return func(m *MSG91Sender) { m.sender = s }
}

// WithCircuitBreaker shares a breaker across MSG91 senders
func WithCircuitBreaker(cb *webhook.CircuitBreaker) MSG91Option {
	return func(m *MSG91Sender) { m.breaker = cb }
}

// NewMSG91Sender requires the auth key and the integrated (sender) number
func NewMSG91Sender(cfg Config, opts ...MSG91Option) (*MSG91Sender, error) {
	if cfg.MSG91AuthKey == "" {
		return nil, fmt.Errorf("%w: MSG91_AUTH_KEY is empty", ErrNotConfigured)
	}
	if cfg.MSG91IntegratedNumber == "" {
		return nil, fmt.Errorf("%w: MSG91_INTEGRATED_NUMBER is empty", ErrNotConfigured)
	}
	if cfg.MSG91Endpoint == "" {
		return nil, fmt.Errorf("%w: MSG91_ENDPOINT is empty", ErrNotConfigured)
	}

	s := &MSG91Sender{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.sender == nil {
		s.sender = webhook.NewSender()
	}
	if s.breaker == nil {
		s.breaker = webhook.NewCircuitBreaker("msg91")
	}
	return s, nil
}

type msg91Request struct {
	IntegratedNumber string       `json:"integrated_number"`
	ContentType      string       `json:"content_type"`
	Payload          msg91Payload `json:"payload"`
}

type msg91Payload struct {
	MessagingProduct string        `json:"messaging_product"`
	Type             string        `json:"type"`
	Template         msg91Template `json:"template"`
}

type msg91Template struct {
	Name            string           `json:"name"`
	Language        msg91Language    `json:"language"`
	Namespace       string           `json:"namespace,omitempty"`
	ToAndComponents []msg91Recipient `json:"to_and_components"`
}

type msg91Language struct {
	Code   string `json:"code"`
	Policy string `json:"policy"`
}

type msg91Recipient struct {
	To         []string                  `json:"to"`
	Components map[string]msg91Component `json:"components"`
}

type msg91Component struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type msg91Response struct {
	Status    string          `json:"status"`
	HasError  bool            `json:"hasError"`
	Errors    json.RawMessage `json:"errors"`
	RequestID string          `json:"request_id"`
}

func (s *MSG91Sender) request(msg TemplateMessage) msg91Request {
	lang := msg.Language
	if lang == "" {
		lang = s.cfg.Language
	}
	ns := msg.Namespace
	if ns == "" {
		ns = s.cfg.Namespace
	}

	components := make(map[string]msg91Component, len(msg.Variables))
	for i, v := range msg.Variables {
		components["body_"+strconv.Itoa(i+1)] = msg91Component{Type: "text", Value: v}
	}

	return msg91Request{
		IntegratedNumber: s.cfg.MSG91IntegratedNumber,
		ContentType:      "template",
		Payload: msg91Payload{
			MessagingProduct: "whatsapp",
			Type:             "template",
			Template: msg91Template{
				Name:      msg.Template,
				Language:  msg91Language{Code: lang, Policy: "deterministic"},
				Namespace: ns,
				ToAndComponents: []msg91Recipient{{
					To:         []string{msg.To},
					Components: components,
				}},
			},
		},
	}
}

// Send implements Sender. The message id is the MSG91 request id.
func (s *MSG91Sender) Send(ctx context.Context, msg TemplateMessage) (string, error) {
	if msg.Template == "" {
		return "", ErrMissingTemplate
	}

	res, err := s.sender.Send(ctx, s.cfg.MSG91Endpoint, s.request(msg),
		webhook.WithHeader("authkey", s.cfg.MSG91AuthKey),
		webhook.WithCircuitBreaker(s.breaker),
		webhook.WithTimeout(s.cfg.SendTimeout),
	)
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}

	var body msg91Response
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return "", errors.Join(ErrSendFailed, fmt.Errorf("decode response: %w", err))
	}
	// MSG91 reports some rejections with a 200
	if body.HasError || (body.Status != "" && body.Status != "success") {
		return "", fmt.Errorf("%w: status %q: %s", ErrSendFailed, body.Status, string(body.Errors))
	}
	return body.RequestID, nil
}
