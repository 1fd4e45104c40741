package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dmitrymomot/alertkit/pkg/webhook"
)

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

// FCM error codes that mean the token is dead
var fcmTokenErrors = []string{"UNREGISTERED", "INVALID_ARGUMENT", "NOT_FOUND"}

// FCMSender sends through the Firebase Cloud Messaging HTTP v1 API
type FCMSender struct {
	endpoint string
	client   *http.Client
	sender   *webhook.Sender
	breaker  *webhook.CircuitBreaker
	cfg      Config
}

// FCMOption configures an FCMSender
type FCMOption func(*fcmOptions)

type fcmOptions struct {
	tokenSource oauth2.TokenSource
	sender      *webhook.Sender
	breaker     *webhook.CircuitBreaker
}

// WithTokenSource skips credential discovery and authorizes requests with ts
func WithTokenSource(ts oauth2.TokenSource) FCMOption {
	return func(o *fcmOptions) { o.tokenSource = ts }
}

// WithWebhookSender sets the HTTP transport
func WithWebhookSender(s *webhook.Sender) FCMOption {
	return func(o *fcmOptions) { o.sender = s }
}

// WithCircuitBreaker shares a breaker across FCM senders
func WithCircuitBreaker(cb *webhook.CircuitBreaker) FCMOption {
	return func(o *fcmOptions) { o.breaker = cb }
}

// NewFCMSender loads service account credentials from FCMCredentialsJSON,
// FCMCredentialsFile or the application default credentials, in that order.
func NewFCMSender(ctx context.Context, cfg Config, opts ...FCMOption) (*FCMSender, error) {
	o := &fcmOptions{}
	for _, opt := range opts {
		opt(o)
	}

	projectID := cfg.FCMProjectID
	ts := o.tokenSource
	if ts == nil {
		creds, err := loadCredentials(ctx, cfg)
		if err != nil {
			return nil, err
		}
		ts = creds.TokenSource
		if projectID == "" {
			projectID = creds.ProjectID
		}
	}
	if projectID == "" {
		return nil, fmt.Errorf("%w: FCM project id is unknown", ErrNotConfigured)
	}

	if o.sender == nil {
		o.sender = webhook.NewSender()
	}
	if o.breaker == nil {
		o.breaker = webhook.NewCircuitBreaker("fcm")
	}

	base := strings.TrimRight(cfg.FCMEndpoint, "/")
	if base == "" {
		base = "https://fcm.googleapis.com"
	}

	return &FCMSender{
		endpoint: fmt.Sprintf("%s/v1/projects/%s/messages:send", base, projectID),
		client:   oauth2.NewClient(context.WithoutCancel(ctx), ts),
		sender:   o.sender,
		breaker:  o.breaker,
		cfg:      cfg,
	}, nil
}

func loadCredentials(ctx context.Context, cfg Config) (*google.Credentials, error) {
	raw := []byte(cfg.FCMCredentialsJSON)
	if len(raw) == 0 && cfg.FCMCredentialsFile != "" {
		b, err := os.ReadFile(cfg.FCMCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("%w: read credentials: %w", ErrNotConfigured, err)
		}
		raw = b
	}

	if len(raw) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, raw, fcmScope)
		if err != nil {
			return nil, fmt.Errorf("%w: parse credentials: %w", ErrNotConfigured, err)
		}
		return creds, nil
	}

	creds, err := google.FindDefaultCredentials(ctx, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConfigured, err)
	}
	return creds, nil
}

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

type fcmResponse struct {
	Name  string    `json:"name"`
	Error *fcmError `json:"error"`
}

type fcmError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
	Details []struct {
		ErrorCode string `json:"errorCode"`
	} `json:"details"`
}

func (e *fcmError) codes() []string {
	out := []string{e.Status}
	for _, d := range e.Details {
		out = append(out, d.ErrorCode)
	}
	return out
}

// Send implements Sender. The message id is the FCM message name.
func (s *FCMSender) Send(ctx context.Context, msg Message) (string, error) {
	if msg.Token == "" {
		return "", ErrMissingToken
	}

	res, err := s.sender.Send(ctx, s.endpoint, fcmRequest{
		Message: fcmMessage{
			Token:        msg.Token,
			Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
			Data:         msg.Data,
		},
	},
		webhook.WithHTTPClient(s.client),
		webhook.WithCircuitBreaker(s.breaker),
		webhook.WithTimeout(s.cfg.SendTimeout),
	)

	var body fcmResponse
	if len(res.Body) > 0 {
		_ = json.Unmarshal(res.Body, &body)
	}

	if err != nil {
		if isTokenError(res.StatusCode, body.Error) {
			return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		return "", errors.Join(ErrSendFailed, err)
	}
	return body.Name, nil
}

func isTokenError(status int, e *fcmError) bool {
	if status == http.StatusNotFound {
		return true
	}
	if e == nil {
		return false
	}
	return slices.ContainsFunc(e.codes(), func(code string) bool {
		return slices.Contains(fcmTokenErrors, code)
	})
}
