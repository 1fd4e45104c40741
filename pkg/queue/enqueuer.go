package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnqueuerRepository defines the interface for task creation
type EnqueuerRepository interface {
	CreateTask(ctx context.Context, task *Task) error
}

// Enqueuer handles task enqueueing.
// Every task it creates carries a copy of its retry policy.
type Enqueuer struct {
	repo         EnqueuerRepository
	defaultQueue string
	policy       RetryPolicy
	observer     Observer
}

// NewEnqueuer creates a new Enqueuer
func NewEnqueuer(repo EnqueuerRepository, opts ...EnqueuerOption) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &enqueuerOptions{
		defaultQueue: DefaultQueueName,
		policy:       DefaultRetryPolicy(),
		observer:     noopObserver{},
	}

	for _, opt := range opts {
		opt(options)
	}

	if err := options.policy.Validate(); err != nil {
		return nil, err
	}

	return &Enqueuer{
		repo:         repo,
		defaultQueue: options.defaultQueue,
		policy:       options.policy,
		observer:     options.observer,
	}, nil
}

// Queue returns the queue name used when no WithQueue option is given
func (e *Enqueuer) Queue() string {
	return e.defaultQueue
}

// RetryPolicy returns the policy copied into every new task
func (e *Enqueuer) RetryPolicy() RetryPolicy {
	return e.policy
}

// Enqueue adds a new task to the queue and returns its id.
// A successful return means the task is durably stored.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any, opts ...EnqueueOption) (uuid.UUID, error) {
	if payload == nil {
		return uuid.Nil, ErrPayloadNil
	}

	options := &enqueueOptions{
		queue: e.defaultQueue,
	}
	for _, opt := range opts {
		opt(options)
	}

	task, err := e.buildTask(payload, options)
	if err != nil {
		return uuid.Nil, err
	}

	if err := e.repo.CreateTask(ctx, task); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create task %q in queue %q: %w", task.TaskName, task.Queue, err)
	}

	e.observer.TaskEnqueued(task.Queue, task.TaskName)

	return task.ID, nil
}

// buildTask constructs a Task from payload and options
func (e *Enqueuer) buildTask(payload any, options *enqueueOptions) (*Task, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload of type %T: %w", payload, err)
	}

	taskName := options.taskName
	if taskName == "" {
		taskName = qualifiedStructName(payload)
	}

	now := time.Now()
	scheduledAt := now
	if options.delay > 0 {
		scheduledAt = now.Add(options.delay)
	}

	return &Task{
		ID:          uuid.New(),
		Queue:       options.queue,
		TaskName:    taskName,
		Payload:     payloadBytes,
		Status:      TaskStatusPending,
		Attempts:    0,
		MaxAttempts: e.policy.MaxAttempts,
		Backoff:     e.policy.Backoff,
		ScheduledAt: scheduledAt,
		CreatedAt:   now,
	}, nil
}
