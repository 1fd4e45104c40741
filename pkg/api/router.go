package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/alertkit/pkg/httpserver"
	"github.com/dmitrymomot/alertkit/pkg/logger"
	"github.com/dmitrymomot/alertkit/pkg/push"
	"github.com/dmitrymomot/alertkit/pkg/queue"
)

// Publisher accepts alert events, e.g. *notifier.Notifier
type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, channels []string, data map[string]any) error
}

// TokenRegistrar stores push device tokens
type TokenRegistrar interface {
	RegisterToken(ctx context.Context, userID, token string, platform push.Platform) error
}

// DeadLetters lists and requeues dead letters
type DeadLetters interface {
	ListDeadLetters(ctx context.Context, queue string, limit int) ([]queue.DeadLetter, error)
	RequeueDeadLetter(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// Deps are the collaborators of the ops API. Metrics and Checks are optional.
type Deps struct {
	Publisher   Publisher
	Tokens      TokenRegistrar
	DeadLetters DeadLetters

	// Metrics is mounted at /metrics when set
	Metrics http.Handler
	// Checks back /health/ready
	Checks       map[string]httpserver.CheckFunc
	CheckTimeout time.Duration

	Logger *slog.Logger
}

// NewRouter builds the ops router.
//
//	POST /v1/alerts                       publish an event
//	POST /v1/push/tokens                  register a device token
//	GET  /v1/dead-letters?queue=&limit=   list dead letters
//	POST /v1/dead-letters/{id}/requeue    requeue a dead letter
//	GET  /metrics, /health/live, /health/ready
func NewRouter(d Deps) (chi.Router, error) {
	switch {
	case d.Publisher == nil:
		return nil, fmt.Errorf("%w: publisher", ErrMissingDependency)
	case d.Tokens == nil:
		return nil, fmt.Errorf("%w: token registrar", ErrMissingDependency)
	case d.DeadLetters == nil:
		return nil, fmt.Errorf("%w: dead letters", ErrMissingDependency)
	}
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("api"))
	if d.CheckTimeout <= 0 {
		d.CheckTimeout = 2 * time.Second
	}

	h := &handlers{
		publisher:   d.Publisher,
		tokens:      d.Tokens,
		deadLetters: d.DeadLetters,
		logger:      log,
	}

	r := chi.NewRouter()
	r.Use(requestID, middleware.Recoverer)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, d.CheckTimeout, d.Checks))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(accessLog(log))
		v1.Post("/alerts", h.publishAlert)
		v1.Post("/push/tokens", h.registerToken)
		v1.Route("/dead-letters", func(dl chi.Router) {
			dl.Get("/", h.listDeadLetters)
			dl.Post("/{id}/requeue", h.requeueDeadLetter)
		})
	})

	return r, nil
}
