package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/alertkit/pkg/logger"
	"github.com/dmitrymomot/alertkit/pkg/queue"
)

// Worker delivers push jobs to every target device
type Worker struct {
	sender Sender
	tokens TokenStore
	logger *slog.Logger
}

// NewWorker creates a push worker. tokens resolves jobs without explicit
// device tokens and receives deactivations.
func NewWorker(sender Sender, tokens TokenStore, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		sender: sender,
		tokens: tokens,
		logger: log.With(logger.Component("push_worker")),
	}
}

// Process sends the job to each device. Invalid tokens are deactivated and do
// not fail the job. The job fails only when nothing was delivered and at least
// one device failed with a transient error.
func (w *Worker) Process(ctx context.Context, job Job) (Result, error) {
	tokens := job.DeviceTokens
	if len(tokens) == 0 && w.tokens != nil {
		var err error
		if tokens, err = w.tokens.GetActiveTokens(ctx, job.UserID); err != nil {
			return Result{}, fmt.Errorf("resolve device tokens: %w", err)
		}
	}
	if len(tokens) == 0 {
		w.logger.InfoContext(ctx, "push skipped, no active devices", logger.UserID(job.UserID))
		return Result{}, nil
	}

	var res Result
	var transient []error
	for _, token := range tokens {
		id, err := w.sender.Send(ctx, Message{
			Token: token,
			Title: job.Title,
			Body:  job.Body,
			Data:  job.Data,
		})
		switch {
		case err == nil:
			res.Sent++
			res.MessageIDs = append(res.MessageIDs, id)
		case errors.Is(err, ErrInvalidToken):
			res.Invalid++
			w.deactivate(ctx, job.UserID, token, err)
		default:
			res.Failed++
			transient = append(transient, err)
		}
	}

	if res.Sent == 0 && len(transient) > 0 {
		return res, errors.Join(transient...)
	}

	level := slog.LevelInfo
	if len(transient) > 0 {
		level = slog.LevelWarn
	}
	w.logger.Log(ctx, level, "push delivered",
		logger.UserID(job.UserID),
		slog.Int("sent", res.Sent),
		slog.Int("invalid", res.Invalid),
		slog.Int("failed", res.Failed))
	return res, nil
}

func (w *Worker) deactivate(ctx context.Context, userID, token string, cause error) {
	w.logger.WarnContext(ctx, "device token rejected by provider",
		logger.UserID(userID),
		logger.Error(cause))
	if w.tokens == nil {
		return
	}
	if err := w.tokens.DeactivateToken(ctx, token); err != nil && !errors.Is(err, ErrTokenNotFound) {
		w.logger.ErrorContext(ctx, "failed to deactivate device token",
			logger.UserID(userID),
			logger.Error(err))
	}
}

// Handler adapts the worker for registration on a queue.Worker
func (w *Worker) Handler() queue.Handler {
	return queue.NewTaskHandler(func(ctx context.Context, job Job) error {
		_, err := w.Process(ctx, job)
		return err
	})
}
