package whatsapp_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/alertkit/pkg/webhook"
	"github.com/dmitrymomot/alertkit/pkg/whatsapp"
)

func newMSG91(t *testing.T, handler http.HandlerFunc, opts ...whatsapp.MSG91Option) *whatsapp.MSG91Sender {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s, err := whatsapp.NewMSG91Sender(whatsapp.Config{
		Language:              "en",
		Namespace:             "ns-1",
		MSG91AuthKey:          "secret",
		MSG91IntegratedNumber: "918000000000",
		MSG91Endpoint:         server.URL + "/bulk/",
		SendTimeout:           time.Second,
	}, opts...)
	require.NoError(t, err)
	return s
}

func TestMSG91Sender_Send(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		authKey string
		body    map[string]any
	)
	s := newMSG91(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		authKey = r.Header.Get("authkey")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		_, _ = w.Write([]byte(`{"status":"success","hasError":false,"data":"queued","request_id":"abc123"}`))
	})

	id, err := s.Send(context.Background(), whatsapp.TemplateMessage{
		To:        "919876543210",
		Template:  whatsapp.TemplateBookingCancelled,
		Variables: []string{"Asha", "B-7"},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "secret", authKey)
	assert.Equal(t, "918000000000", body["integrated_number"])
	assert.Equal(t, "template", body["content_type"])

	payload := body["payload"].(map[string]any)
	assert.Equal(t, "whatsapp", payload["messaging_product"])
	tpl := payload["template"].(map[string]any)
	assert.Equal(t, whatsapp.TemplateBookingCancelled, tpl["name"])
	assert.Equal(t, "ns-1", tpl["namespace"])
	assert.Equal(t, map[string]any{"code": "en", "policy": "deterministic"}, tpl["language"])

	recipients := tpl["to_and_components"].([]any)
	require.Len(t, recipients, 1)
	recipient := recipients[0].(map[string]any)
	assert.Equal(t, []any{"919876543210"}, recipient["to"])
	assert.Equal(t, map[string]any{
		"body_1": map[string]any{"type": "text", "value": "Asha"},
		"body_2": map[string]any{"type": "text", "value": "B-7"},
	}, recipient["components"])
}

func TestMSG91Sender_JobLanguageWins(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		lang string
	)
	s := newMSG91(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Payload struct {
				Template struct {
					Language struct {
						Code string `json:"code"`
					} `json:"language"`
				} `json:"template"`
			} `json:"payload"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		lang = req.Payload.Template.Language.Code
		mu.Unlock()
		_, _ = w.Write([]byte(`{"status":"success","request_id":"r"}`))
	})

	_, err := s.Send(context.Background(), whatsapp.TemplateMessage{To: "919876543210", Template: "t", Language: "hi"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "hi", lang)
}

func TestMSG91Sender_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		permanent bool
	}{
		{name: "rejected in body", status: http.StatusOK, body: `{"status":"fail","hasError":true,"errors":"Template not found"}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"status":"fail","hasError":true,"errors":"Invalid authkey"}`, permanent: true},
		{name: "server error", status: http.StatusBadGateway, body: `bad gateway`},
		{name: "garbage", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newMSG91(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := s.Send(context.Background(), whatsapp.TemplateMessage{To: "919876543210", Template: "t"})
			require.Error(t, err)
			assert.ErrorIs(t, err, whatsapp.ErrSendFailed)
			assert.Equal(t, tt.permanent, webhook.IsPermanent(err))
		})
	}
}

func TestMSG91Sender_MissingTemplate(t *testing.T) {
	t.Parallel()

	s := newMSG91(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := s.Send(context.Background(), whatsapp.TemplateMessage{To: "919876543210"})
	assert.ErrorIs(t, err, whatsapp.ErrMissingTemplate)
}

func TestNewMSG91Sender_Config(t *testing.T) {
	t.Parallel()

	_, err := whatsapp.NewMSG91Sender(whatsapp.Config{MSG91IntegratedNumber: "1", MSG91Endpoint: "http://x"})
	assert.ErrorIs(t, err, whatsapp.ErrNotConfigured)

	_, err = whatsapp.NewMSG91Sender(whatsapp.Config{MSG91AuthKey: "k", MSG91Endpoint: "http://x"})
	assert.ErrorIs(t, err, whatsapp.ErrNotConfigured)

	cb := webhook.NewCircuitBreaker("shared")
	s, err := whatsapp.NewMSG91Sender(whatsapp.Config{MSG91AuthKey: "k", MSG91IntegratedNumber: "1", MSG91Endpoint: "http://x"},
		whatsapp.WithCircuitBreaker(cb))
	require.NoError(t, err)
	assert.NotNil(t, s)
}
