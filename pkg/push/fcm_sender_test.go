package push_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/alertkit/pkg/push"
	"github.com/dmitrymomot/alertkit/pkg/webhook"
)

func newFCM(t *testing.T, handler http.HandlerFunc, opts ...push.FCMOption) *push.FCMSender {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]push.FCMOption{
		push.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})),
	}, opts...)
	s, err := push.NewFCMSender(context.Background(), push.Config{
		FCMProjectID: "zappy",
		FCMEndpoint:  server.URL,
	}, opts...)
	require.NoError(t, err)
	return s
}

func TestFCMSender_Send(t *testing.T) {
	t.Parallel()

	var got struct {
		Message struct {
			Token        string            `json:"token"`
			Notification map[string]string `json:"notification"`
			Data         map[string]string `json:"data"`
		} `json:"message"`
	}
	var (
		mu         sync.Mutex
		auth, path string
	)

	s := newFCM(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"projects/zappy/messages/0:123"}`))
	})

	id, err := s.Send(context.Background(), push.Message{
		Token: "device-1",
		Title: "Booking confirmed",
		Body:  "See you there",
		Data:  map[string]string{"bookingId": "B-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "projects/zappy/messages/0:123", id)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer test-token", auth)
	assert.Equal(t, "/v1/projects/zappy/messages:send", path)
	assert.Equal(t, "device-1", got.Message.Token)
	assert.Equal(t, "Booking confirmed", got.Message.Notification["title"])
	assert.Equal(t, "See you there", got.Message.Notification["body"])
	assert.Equal(t, "B-1", got.Message.Data["bookingId"])
}

func TestFCMSender_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       int
		body         string
		invalidToken bool
	}{
		{
			name:         "unregistered",
			status:       http.StatusNotFound,
			body:         `{"error":{"code":404,"status":"NOT_FOUND","details":[{"errorCode":"UNREGISTERED"}]}}`,
			invalidToken: true,
		},
		{
			name:         "invalid argument",
			status:       http.StatusBadRequest,
			body:         `{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"The registration token is not a valid FCM registration token"}}`,
			invalidToken: true,
		},
		{
			name:   "unavailable",
			status: http.StatusServiceUnavailable,
			body:   `{"error":{"code":503,"status":"UNAVAILABLE"}}`,
		},
		{
			name:   "quota",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED","details":[{"errorCode":"QUOTA_EXCEEDED"}]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newFCM(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := s.Send(context.Background(), push.Message{Token: "device-1", Title: "t"})
			require.Error(t, err)
			if tt.invalidToken {
				assert.ErrorIs(t, err, push.ErrInvalidToken)
			} else {
				assert.NotErrorIs(t, err, push.ErrInvalidToken)
				assert.ErrorIs(t, err, push.ErrSendFailed)
				assert.ErrorIs(t, err, webhook.ErrTemporaryFailure)
			}
		})
	}
}

func TestFCMSender_CircuitOpen(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	breaker := webhook.NewCircuitBreaker("fcm-test", webhook.WithFailureThreshold(2))
	s := newFCM(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, push.WithCircuitBreaker(breaker))

	for range 2 {
		_, err := s.Send(context.Background(), push.Message{Token: "d", Title: "t"})
		require.Error(t, err)
	}

	_, err := s.Send(context.Background(), push.Message{Token: "d", Title: "t"})
	assert.ErrorIs(t, err, webhook.ErrCircuitOpen)
	assert.ErrorIs(t, err, push.ErrSendFailed)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewFCMSender_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := push.NewFCMSender(context.Background(), push.Config{FCMCredentialsJSON: "{not json"})
	assert.ErrorIs(t, err, push.ErrNotConfigured)

	_, err = push.NewFCMSender(context.Background(), push.Config{},
		push.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"})))
	assert.ErrorIs(t, err, push.ErrNotConfigured)

}

func TestFCMSender_MissingToken(t *testing.T) {
	t.Parallel()

	s := newFCM(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := s.Send(context.Background(), push.Message{Title: "t"})
	assert.ErrorIs(t, err, push.ErrMissingToken)
}
