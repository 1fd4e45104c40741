package whatsapp

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/alertkit/pkg/logger"
	"github.com/dmitrymomot/alertkit/pkg/queue"
)

// Worker sends whatsapp jobs
type Worker struct {
	sender Sender
	logger *slog.Logger
}

// NewWorker creates a whatsapp worker sending through sender
func NewWorker(sender Sender, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		sender: sender,
		logger: log.With(logger.Component("whatsapp_worker")),
	}
}

// Process normalizes the recipient and sends the template.
// A number that cannot be normalized is permanent, provider errors are returned for retry.
func (w *Worker) Process(ctx context.Context, job Job) (Result, error) {
	to, err := NormalizePhone(job.To)
	if err != nil {
		w.logger.WarnContext(ctx, "whatsapp recipient rejected",
			logger.Template(job.Template),
			slog.String("dedupe_key", job.DedupeKey()),
			logger.Error(err))
		return Result{}, queue.Permanent(err)
	}

	id, err := w.sender.Send(ctx, TemplateMessage{
		To:        to,
		Template:  job.Template,
		Language:  job.Language,
		Namespace: job.Namespace,
		Variables: job.Variables,
	})
	if err != nil {
		return Result{}, err
	}

	w.logger.InfoContext(ctx, "whatsapp sent",
		logger.Template(job.Template),
		logger.MessageID(id),
		slog.String("dedupe_key", job.DedupeKey()))
	return Result{To: to, MessageID: id}, nil
}

// Handler adapts the worker for registration on a queue.Worker
func (w *Worker) Handler() queue.Handler {
	return queue.NewTaskHandler(func(ctx context.Context, job Job) error {
		_, err := w.Process(ctx, job)
		return err
	})
}
