package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/alertkit/pkg/alert"
	"github.com/dmitrymomot/alertkit/pkg/ingest"
	"github.com/dmitrymomot/alertkit/pkg/logger"
	"github.com/dmitrymomot/alertkit/pkg/push"
	"github.com/dmitrymomot/alertkit/pkg/queue"
)

const (
	maxBodyBytes     = 1 << 20
	defaultListLimit = 50
	maxListLimit     = 500
)

type handlers struct {
	publisher   Publisher
	tokens      TokenRegistrar
	deadLetters DeadLetters
	logger      *slog.Logger
}

func (h *handlers) publishAlert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	msg, err := ingest.Decode(body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	err = h.publisher.PublishEvent(r.Context(), msg.EventType, msg.Channels, msg.Data)
	switch {
	case err == nil:
	case errors.Is(err, alert.ErrEmptyEventType), errors.Is(err, alert.ErrUnknownChannel):
		writeError(w, fmt.Errorf("%w: %w", ErrUnprocessableEntity, err))
		return
	case errors.Is(err, alert.ErrBusClosed):
		writeError(w, fmt.Errorf("%w: %w", ErrServiceUnavailable, err))
		return
	default:
		h.logger.ErrorContext(r.Context(), "publish event failed",
			logger.EventType(msg.EventType),
			logger.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, Response{Code: "accepted"})
}

type registerTokenRequest struct {
	UserID   string `json:"user_id"`
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (h *handlers) registerToken(w http.ResponseWriter, r *http.Request) {
	var req registerTokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	platform, err := push.ParsePlatform(req.Platform)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", ErrUnprocessableEntity, err))
		return
	}

	err = h.tokens.RegisterToken(r.Context(), req.UserID, req.Token, platform)
	switch {
	case err == nil:
	case errors.Is(err, push.ErrMissingUserID), errors.Is(err, push.ErrMissingToken):
		writeError(w, fmt.Errorf("%w: %w", ErrUnprocessableEntity, err))
		return
	default:
		h.logger.ErrorContext(r.Context(), "register push token failed",
			logger.UserID(req.UserID),
			logger.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, Response{Code: "created"})
}

func (h *handlers) listDeadLetters(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		limit = min(n, maxListLimit)
	}

	items, err := h.deadLetters.ListDeadLetters(r.Context(), r.URL.Query().Get("queue"), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list dead letters failed", logger.Error(err))
		writeError(w, err)
		return
	}
	if items == nil {
		items = []queue.DeadLetter{}
	}

	writeJSON(w, http.StatusOK, Response{Code: "ok", Data: items})
}

type requeueResponse struct {
	TaskID uuid.UUID `json:"task_id"`
}

func (h *handlers) requeueDeadLetter(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid dead letter id", ErrBadRequest))
		return
	}

	taskID, err := h.deadLetters.RequeueDeadLetter(r.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, queue.ErrDeadLetterNotFound):
		writeError(w, fmt.Errorf("%w: %w", ErrNotFound, err))
		return
	default:
		h.logger.ErrorContext(r.Context(), "requeue dead letter failed",
			slog.String("dead_letter_id", id.String()),
			logger.Error(err))
		writeError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dead letter requeued",
		slog.String("dead_letter_id", id.String()),
		logger.TaskID(taskID))
	writeJSON(w, http.StatusAccepted, Response{Code: "accepted", Data: requeueResponse{TaskID: taskID}})
}
