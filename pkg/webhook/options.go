package webhook

import (
	"net/http"
	"time"
)

// DeliveryResult describes one request to a provider endpoint
type DeliveryResult struct {
	StatusCode int
	Duration   time.Duration
	// Body holds at most the first 64KB of the response
	Body   []byte
	Header http.Header
	Error  error
}

// Success reports a 2xx response
func (r DeliveryResult) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DeliveryHook is called after each request, successful or not
type DeliveryHook func(result DeliveryResult)

type sendOptions struct {
	timeout        time.Duration
	headers        map[string]string
	httpClient     *http.Client
	circuitBreaker *CircuitBreaker
	onDelivery     DeliveryHook
}

func defaultSendOptions() *sendOptions {
	return &sendOptions{
		timeout: 10 * time.Second,
		headers: make(map[string]string),
	}
}

// SendOption is a functional option for configuring a send
type SendOption func(*sendOptions)

// WithTimeout sets the request timeout. Default is 10 seconds.
func WithTimeout(timeout time.Duration) SendOption {
	return func(o *sendOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHeader adds a request header. Content-Type is always application/json.
func WithHeader(key, value string) SendOption {
	return func(o *sendOptions) {
		if key != "" && value != "" {
			o.headers[key] = value
		}
	}
}

// WithHeaders adds multiple request headers
func WithHeaders(headers map[string]string) SendOption {
	return func(o *sendOptions) {
		for k, v := range headers {
			if k != "" && v != "" {
				o.headers[k] = v
			}
		}
	}
}

// WithHTTPClient overrides the sender client for one request,
// e.g. an oauth2 client that injects bearer tokens
func WithHTTPClient(client *http.Client) SendOption {
	return func(o *sendOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithCircuitBreaker guards the endpoint. Share one breaker per provider.
func WithCircuitBreaker(cb *CircuitBreaker) SendOption {
	return func(o *sendOptions) {
		o.circuitBreaker = cb
	}
}

// WithOnDelivery sets a callback invoked after the request
func WithOnDelivery(hook DeliveryHook) SendOption {
	return func(o *sendOptions) {
		o.onDelivery = hook
	}
}
