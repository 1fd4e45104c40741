package push

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/alertkit/pkg/queue"
)

// QueueName is the queue all push jobs go to
const QueueName = "push"

var retryPolicy = queue.RetryPolicy{MaxAttempts: 3, Backoff: 3 * time.Second}

// RetryPolicy returns the policy stamped on every push task
func RetryPolicy() queue.RetryPolicy { return retryPolicy }

// Enqueuer accepts push jobs
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) (uuid.UUID, error)
}

// Queue is the push channel facade. It refuses jobs that could reach no device.
type Queue struct {
	enqueuer *queue.Enqueuer
	tokens   TokenStore
}

// NewQueue creates the push queue facade on top of repo
func NewQueue(repo queue.EnqueuerRepository, tokens TokenStore, opts ...queue.EnqueuerOption) (*Queue, error) {
	if tokens == nil {
		return nil, fmt.Errorf("push queue: token store is required")
	}

	// channel queue and policy are applied last so callers cannot override them
	opts = append(opts,
		queue.WithDefaultQueue(QueueName),
		queue.WithRetryPolicy(retryPolicy),
	)

	e, err := queue.NewEnqueuer(repo, opts...)
	if err != nil {
		return nil, err
	}
	return &Queue{enqueuer: e, tokens: tokens}, nil
}

// Enqueue stores the job. Without explicit tokens the user must have at least
// one active token, otherwise ErrNoActiveTokens is returned and nothing is stored.
func (q *Queue) Enqueue(ctx context.Context, job Job) (uuid.UUID, error) {
	if len(job.DeviceTokens) == 0 {
		if job.UserID == "" {
			return uuid.Nil, ErrMissingUserID
		}
		tokens, err := q.tokens.GetActiveTokens(ctx, job.UserID)
		if err != nil {
			return uuid.Nil, err
		}
		if len(tokens) == 0 {
			return uuid.Nil, ErrNoActiveTokens
		}
	}
	return q.enqueuer.Enqueue(ctx, job)
}
