package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBody = 64 * 1024

// Sender posts JSON to provider endpoints. It makes exactly one attempt per
// call; retries belong to the caller. Use NewSender to create instances.
type Sender struct {
	client    *http.Client
	userAgent string
}

// NewSender creates a sender with a pooled HTTP client
func NewSender() *Sender {
	return &Sender{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: "alertkit/1.0",
	}
}

// NewSenderWithClient creates a sender with a custom HTTP client
func NewSenderWithClient(client *http.Client) *Sender {
	s := NewSender()
	if client != nil {
		s.client = client
	}
	return s
}

// Send marshals data to JSON and POSTs it to endpoint.
// The result is returned on error too, so callers can inspect the provider
// response body of a rejected request.
func (s *Sender) Send(ctx context.Context, endpoint string, data any, opts ...SendOption) (DeliveryResult, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := validateInputs(endpoint, payload); err != nil {
		return DeliveryResult{}, err
	}

	options := defaultSendOptions()
	for _, opt := range opts {
		opt(options)
	}

	client := s.client
	if options.httpClient != nil {
		client = options.httpClient
	}

	if cb := options.circuitBreaker; cb != nil && !cb.Allow() {
		return DeliveryResult{Error: ErrCircuitOpen}, ErrCircuitOpen
	}

	result, err := s.deliver(ctx, client, endpoint, payload, options)

	if options.onDelivery != nil {
		options.onDelivery(result)
	}
	if cb := options.circuitBreaker; cb != nil {
		// a rejected request proves the endpoint is up
		if err == nil || errors.Is(err, ErrPermanentFailure) {
			cb.RecordSuccess()
		} else {
			cb.RecordFailure()
		}
	}

	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return result, nil
}

func validateInputs(endpoint string, payload []byte) error {
	if endpoint == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}

	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}
	return nil
}

func (s *Sender) deliver(ctx context.Context, client *http.Client, endpoint string, payload []byte, options *sendOptions) (DeliveryResult, error) {
	start := time.Now()
	var result DeliveryResult

	reqCtx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		result.Error = err
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	for k, v := range options.headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return result, fmt.Errorf("%w: %w", ErrTemporaryFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	result.Header = resp.Header
	result.Body, _ = io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

	if result.Success() {
		return result, nil
	}

	result.Error = statusError(resp.StatusCode, result.Body)
	if isPermanentStatus(resp.StatusCode) {
		return result, fmt.Errorf("%w: %w", ErrPermanentFailure, result.Error)
	}
	return result, fmt.Errorf("%w: %w", ErrTemporaryFailure, result.Error)
}

// statusError keeps a single-line excerpt of the body for logs
func statusError(status int, body []byte) error {
	msg := fmt.Sprintf("endpoint returned status %d", status)
	if len(body) > 0 {
		excerpt := strings.ReplaceAll(string(body), "\n", " ")
		if len(excerpt) > 200 {
			excerpt = excerpt[:200] + "..."
		}
		msg += ": " + excerpt
	}
	return errors.New(msg)
}

// isPermanentStatus reports 4xx codes other than timeouts and rate limits
func isPermanentStatus(status int) bool {
	if status < 400 || status >= 500 {
		return false
	}
	switch status {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	default:
		return true
	}
}
