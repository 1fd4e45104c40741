package email

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/alertkit/pkg/logger"
	"github.com/dmitrymomot/alertkit/pkg/queue"
)

// Worker renders and sends email jobs
type Worker struct {
	sender EmailSender
	logger *slog.Logger
}

// NewWorker creates an email worker sending through sender
func NewWorker(sender EmailSender, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		sender: sender,
		logger: log.With(logger.Component("email_worker")),
	}
}

// Process renders the job template and sends it.
// An unknown template is permanent, provider errors are returned for retry.
func (w *Worker) Process(ctx context.Context, job Job) (Result, error) {
	subject, body, err := job.Template.Render(job.Subject, job.Payload)
	if err != nil {
		if errors.Is(err, ErrUnknownTemplate) {
			return Result{}, queue.Permanent(err)
		}
		return Result{}, err
	}

	id, err := w.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   job.To,
		Subject:  subject,
		BodyHTML: body,
		Tag:      string(job.Template),
	})
	if err != nil {
		return Result{}, err
	}

	w.logger.InfoContext(ctx, "email sent",
		logger.Template(string(job.Template)),
		logger.MessageID(id),
		slog.Int("recipients", len(job.To)))
	return Result{MessageID: id}, nil
}

// Handler adapts the worker for registration on a queue.Worker
func (w *Worker) Handler() queue.Handler {
	return queue.NewTaskHandler(func(ctx context.Context, job Job) error {
		_, err := w.Process(ctx, job)
		return err
	})
}
