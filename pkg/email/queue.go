package email

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/alertkit/pkg/queue"
)

// QueueName is the queue all email jobs go to
const QueueName = "email"

var retryPolicy = queue.RetryPolicy{MaxAttempts: 5, Backoff: 5 * time.Second}

// RetryPolicy returns the policy stamped on every email task
func RetryPolicy() queue.RetryPolicy { return retryPolicy }

// Enqueuer accepts email jobs
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) (uuid.UUID, error)
}

// Queue is the email channel facade over a queue.Enqueuer
type Queue struct {
	enqueuer *queue.Enqueuer
}

// NewQueue creates the email queue facade on top of repo
func NewQueue(repo queue.EnqueuerRepository, opts ...queue.EnqueuerOption) (*Queue, error) {
	// channel queue and policy are applied last so callers cannot override them
	opts = append(opts,
		queue.WithDefaultQueue(QueueName),
		queue.WithRetryPolicy(retryPolicy),
	)

	e, err := queue.NewEnqueuer(repo, opts...)
	if err != nil {
		return nil, err
	}
	return &Queue{enqueuer: e}, nil
}

// Enqueue stores the job and returns the task id
func (q *Queue) Enqueue(ctx context.Context, job Job) (uuid.UUID, error) {
	return q.enqueuer.Enqueue(ctx, job)
}
