package webhook_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/alertkit/pkg/webhook"
)

func TestSender_Send_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "alertkit/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "secret", r.Header.Get("authkey"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"template":"zappy_welcome_users"}`, string(body))

		w.Header().Set("X-Request-Id", "req-1")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"type":"success","request_id":"abc"}`))
	}))
	defer server.Close()

	var hooked []webhook.DeliveryResult
	res, err := webhook.NewSender().Send(context.Background(), server.URL,
		map[string]string{"template": "zappy_welcome_users"},
		webhook.WithHeader("authkey", "secret"),
		webhook.WithOnDelivery(func(r webhook.DeliveryResult) { hooked = append(hooked, r) }),
	)
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"type":"success","request_id":"abc"}`, string(res.Body))
	assert.Equal(t, "req-1", res.Header.Get("X-Request-Id"))
	require.Len(t, hooked, 1)
	assert.Equal(t, http.StatusOK, hooked[0].StatusCode)
}

func TestSender_Send_SingleAttempt(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("temporary\nerror"))
	}))
	defer server.Close()

	res, err := webhook.NewSender().Send(context.Background(), server.URL, map[string]int{"n": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, webhook.ErrDeliveryFailed)
	assert.ErrorIs(t, err, webhook.ErrTemporaryFailure)
	assert.False(t, webhook.IsPermanent(err))
	assert.Contains(t, err.Error(), "status 500: temporary error")
	assert.Equal(t, "temporary\nerror", string(res.Body))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestSender_Send_StatusClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		permanent bool
	}{
		{http.StatusBadRequest, true},
		{http.StatusUnauthorized, true},
		{http.StatusNotFound, true},
		{http.StatusRequestTimeout, false},
		{http.StatusTooEarly, false},
		{http.StatusTooManyRequests, false},
		{http.StatusBadGateway, false},
		{http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			res, err := webhook.NewSender().Send(context.Background(), server.URL, map[string]int{"n": 1})
			require.Error(t, err)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, tt.permanent, webhook.IsPermanent(err))
			assert.Equal(t, !tt.permanent, errors.Is(err, webhook.ErrTemporaryFailure))
		})
	}
}

func TestSender_Send_Timeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	_, err := webhook.NewSender().Send(context.Background(), server.URL, map[string]int{"n": 1},
		webhook.WithTimeout(20*time.Millisecond))
	assert.ErrorIs(t, err, webhook.ErrTimeout)
}

func TestSender_Send_ValidationErrors(t *testing.T) {
	t.Parallel()

	sender := webhook.NewSender()
	ctx := context.Background()

	tests := []struct {
		name string
		url  string
		data any
		want error
	}{
		{name: "empty url", url: "", data: map[string]int{}, want: webhook.ErrInvalidURL},
		{name: "ftp scheme", url: "ftp://example.com", data: map[string]int{}, want: webhook.ErrInvalidURL},
		{name: "no host", url: "http://", data: map[string]int{}, want: webhook.ErrInvalidURL},
		{name: "nil payload", url: "https://example.com", data: nil, want: webhook.ErrInvalidPayload},
		{name: "unmarshalable payload", url: "https://example.com", data: make(chan int), want: webhook.ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := sender.Send(ctx, tt.url, tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSender_Send_CircuitBreaker(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cb := webhook.NewCircuitBreaker("test", webhook.WithFailureThreshold(2), webhook.WithRecoveryTimeout(time.Hour))
	sender := webhook.NewSender()

	for range 2 {
		_, err := sender.Send(context.Background(), server.URL, map[string]int{"n": 1}, webhook.WithCircuitBreaker(cb))
		assert.ErrorIs(t, err, webhook.ErrTemporaryFailure)
	}
	assert.Equal(t, webhook.CircuitOpen, cb.State())

	_, err := sender.Send(context.Background(), server.URL, map[string]int{"n": 1}, webhook.WithCircuitBreaker(cb))
	assert.True(t, webhook.IsCircuitOpen(err))
	assert.Equal(t, int32(2), attempts.Load())
}

func TestSender_Send_RejectionKeepsCircuitClosed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	cb := webhook.NewCircuitBreaker("test", webhook.WithFailureThreshold(1))
	for range 3 {
		_, err := webhook.NewSender().Send(context.Background(), server.URL, map[string]int{"n": 1}, webhook.WithCircuitBreaker(cb))
		assert.True(t, webhook.IsPermanent(err))
	}
	assert.Equal(t, webhook.CircuitClosed, cb.State())
}

func TestSender_WithHTTPClient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		r.Header.Set("Authorization", "Bearer token-1")
		return http.DefaultTransport.RoundTrip(r)
	})}

	_, err := webhook.NewSender().Send(context.Background(), server.URL, map[string]int{"n": 1}, webhook.WithHTTPClient(client))
	assert.NoError(t, err)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
