package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/alertkit/pkg/alert"
	"github.com/dmitrymomot/alertkit/pkg/api"
	"github.com/dmitrymomot/alertkit/pkg/httpserver"
	"github.com/dmitrymomot/alertkit/pkg/push"
	"github.com/dmitrymomot/alertkit/pkg/queue"
)

type published struct {
	eventType string
	channels  []string
	data      map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	calls  []published
	result error
}

func (p *fakePublisher) PublishEvent(_ context.Context, eventType string, channels []string, data map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result != nil {
		return p.result
	}
	// mirror the bus validation for unknown channels
	if _, err := alert.NewEvent(eventType, channels, data); err != nil {
		return err
	}
	p.calls = append(p.calls, published{eventType, channels, data})
	return nil
}

type env struct {
	router    http.Handler
	publisher *fakePublisher
	tokens    *push.MemoryTokenStore
	storage   *queue.MemoryStorage
}

func newEnv(t *testing.T, checks map[string]httpserver.CheckFunc) env {
	t.Helper()

	storage := queue.NewMemoryStorage()
	t.Cleanup(func() { _ = storage.Close() })

	e := env{
		publisher: &fakePublisher{},
		tokens:    push.NewMemoryTokenStore(),
		storage:   storage,
	}
	r, err := api.NewRouter(api.Deps{
		Publisher:   e.publisher,
		Tokens:      e.tokens,
		DeadLetters: storage,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "alertkit_up 1\n")
		}),
		Checks: checks,
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	e.router = r
	return e
}

func (e env) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, api.Response) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(method, target, reader))

	var resp api.Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

// deadLetter pushes one task through claim and dead-lettering
func deadLetter(t *testing.T, storage *queue.MemoryStorage, queueName string) queue.DeadLetter {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	task := &queue.Task{
		ID:          uuid.New(),
		Queue:       queueName,
		TaskName:    "email.Job",
		Payload:     []byte(`{"to":["a@b.com"]}`),
		Status:      queue.TaskStatusPending,
		MaxAttempts: 1,
		ScheduledAt: now,
		CreatedAt:   now,
	}
	require.NoError(t, storage.CreateTask(ctx, task))
	workerID := uuid.New()
	claimed, err := storage.ClaimTask(ctx, workerID, []string{queueName}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, storage.MoveToDLQ(ctx, claimed.ID, workerID, queue.ReasonPermanent, "boom"))

	items, err := storage.ListDeadLetters(ctx, queueName, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	return items[0]
}

func TestNewRouter_MissingDependencies(t *testing.T) {
	t.Parallel()

	_, err := api.NewRouter(api.Deps{})
	assert.ErrorIs(t, err, api.ErrMissingDependency)

	_, err = api.NewRouter(api.Deps{Publisher: &fakePublisher{}, Tokens: push.NewMemoryTokenStore()})
	assert.ErrorIs(t, err, api.ErrMissingDependency)
}

func TestPublishAlert(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, nil)

		rec, resp := e.do(t, http.MethodPost, "/v1/alerts",
			`{"event_type":"BOOKING_CREATED","channels":["email","whatsapp"],"data":{"bookingId":"B-1","amount":1200.5}}`)
		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "accepted", resp.Code)
		assert.NotEmpty(t, rec.Header().Get(api.RequestIDHeader))

		require.Len(t, e.publisher.calls, 1)
		call := e.publisher.calls[0]
		assert.Equal(t, alert.EventBookingCreated, call.eventType)
		assert.Equal(t, []string{"email", "whatsapp"}, call.channels)
		assert.Equal(t, json.Number("1200.5"), call.data["amount"])
	})

	tests := []struct {
		name   string
		body   string
		result error
		status int
		code   string
	}{
		{"malformed json", `{"event_type":`, nil, http.StatusBadRequest, "bad_request"},
		{"empty event type", `{"event_type":"  ","channels":["email"]}`, nil, http.StatusBadRequest, "bad_request"},
		{"unknown channel", `{"event_type":"USER_REGISTERED","channels":["sms"]}`, nil, http.StatusUnprocessableEntity, "unprocessable_entity"},
		{"bus closed", `{"event_type":"USER_REGISTERED","channels":["email"]}`, alert.ErrBusClosed, http.StatusServiceUnavailable, "service_unavailable"},
		{"unexpected", `{"event_type":"USER_REGISTERED","channels":["email"]}`, errors.New("disk on fire"), http.StatusInternalServerError, "internal_server_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEnv(t, nil)
			e.publisher.result = tt.result

			rec, resp := e.do(t, http.MethodPost, "/v1/alerts", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Empty(t, e.publisher.calls)
		})
	}

	t.Run("internal errors do not leak", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, nil)
		e.publisher.result = errors.New("dsn=postgres://secret")

		_, resp := e.do(t, http.MethodPost, "/v1/alerts", `{"event_type":"USER_REGISTERED","channels":["email"]}`)
		require.NotNil(t, resp.Error)
		assert.NotContains(t, resp.Error.Message, "secret")
	})
}

func TestRegisterToken(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, nil)

		rec, resp := e.do(t, http.MethodPost, "/v1/push/tokens", `{"user_id":"u1","token":"tok-1","platform":"iOS"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "created", resp.Code)

		tokens, err := e.tokens.GetActiveTokens(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"tok-1"}, tokens)
	})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed", `not json`, http.StatusBadRequest},
		{"bad platform", `{"user_id":"u1","token":"tok-1","platform":"symbian"}`, http.StatusUnprocessableEntity},
		{"missing user", `{"token":"tok-1","platform":"android"}`, http.StatusUnprocessableEntity},
		{"missing token", `{"user_id":"u1","platform":"web"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEnv(t, nil)

			rec, _ := e.do(t, http.MethodPost, "/v1/push/tokens", tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestDeadLetters(t *testing.T) {
	t.Parallel()

	t.Run("list and requeue", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, nil)
		dl := deadLetter(t, e.storage, "email")

		rec, resp := e.do(t, http.MethodGet, "/v1/dead-letters?queue=email&limit=10", "")
		require.Equal(t, http.StatusOK, rec.Code)
		items, ok := resp.Data.([]any)
		require.True(t, ok)
		require.Len(t, items, 1)
		assert.Equal(t, dl.ID.String(), items[0].(map[string]any)["id"])
		assert.Equal(t, "permanent", items[0].(map[string]any)["reason"])

		rec, resp = e.do(t, http.MethodPost, "/v1/dead-letters/"+dl.ID.String()+"/requeue", "")
		require.Equal(t, http.StatusAccepted, rec.Code)
		data, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, data["task_id"])
		assert.Equal(t, 1, e.storage.Len("email"))

		rec, resp = e.do(t, http.MethodGet, "/v1/dead-letters", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, resp.Data)
	})

	t.Run("queue filter", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, nil)
		deadLetter(t, e.storage, "push")

		_, resp := e.do(t, http.MethodGet, "/v1/dead-letters?queue=email", "")
		assert.Empty(t, resp.Data)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, nil)

		rec, _ := e.do(t, http.MethodGet, "/v1/dead-letters?limit=zero", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, _ = e.do(t, http.MethodPost, "/v1/dead-letters/not-a-uuid/requeue", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, resp := e.do(t, http.MethodPost, "/v1/dead-letters/"+uuid.NewString()+"/requeue", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "not_found", resp.Error.Code)
	})
}

func TestOpsEndpoints(t *testing.T) {
	t.Parallel()

	e := newEnv(t, map[string]httpserver.CheckFunc{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	rec, _ := e.do(t, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())

	rec, _ = e.do(t, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	rec, _ = e.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alertkit_up 1")
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	e := newEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(api.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(api.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(api.RequestIDHeader, "bad id with spaces")
	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	_, err := uuid.Parse(rec.Header().Get(api.RequestIDHeader))
	assert.NoError(t, err)

	extract := api.RequestIDExtractor()
	_, ok := extract(context.Background())
	assert.False(t, ok)
}
