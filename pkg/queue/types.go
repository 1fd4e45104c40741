package queue

import (
	"time"

	"github.com/google/uuid"
)

// DefaultQueueName is the default queue name used when no queue is specified
const DefaultQueueName = "default"

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
)

// DeadLetterReason explains why a task ended up in the dead letter queue
type DeadLetterReason string

const (
	// ReasonExhausted means every attempt failed with a retryable error
	ReasonExhausted DeadLetterReason = "exhausted"
	// ReasonPermanent means the handler returned an error wrapping ErrPermanent
	ReasonPermanent DeadLetterReason = "permanent"
	// ReasonNoHandler means no handler was registered for the task name
	ReasonNoHandler DeadLetterReason = "no_handler"
)

// Task represents a job envelope in the queue.
// A task is immutable once persisted except for the fields owned by the storage:
// Status, Attempts, ScheduledAt, lock fields and Error.
type Task struct {
	ID          uuid.UUID     `json:"id"`
	Queue       string        `json:"queue"`
	TaskName    string        `json:"task_name"`
	Payload     []byte        `json:"payload,omitempty"`
	Status      TaskStatus    `json:"status"`
	Attempts    int           `json:"attempts"`
	MaxAttempts int           `json:"max_attempts"`
	Backoff     time.Duration `json:"backoff"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	LockedUntil *time.Time    `json:"locked_until,omitempty"`
	LockedBy    *uuid.UUID    `json:"locked_by,omitempty"`
	Error       *string       `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// RetryPolicy returns the policy the task was enqueued with
func (t *Task) RetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: t.MaxAttempts, Backoff: t.Backoff}
}

// Exhausted reports whether the task has no attempts left
func (t *Task) Exhausted() bool {
	return t.Attempts >= t.MaxAttempts
}

// DeadLetter represents a task in the dead letter queue.
// Stores failed tasks for manual inspection and requeueing.
type DeadLetter struct {
	ID          uuid.UUID        `json:"id"`
	TaskID      uuid.UUID        `json:"task_id"`
	Queue       string           `json:"queue"`
	TaskName    string           `json:"task_name"`
	Payload     []byte           `json:"payload,omitempty"`
	Error       string           `json:"error"`
	Reason      DeadLetterReason `json:"reason"`
	Attempts    int              `json:"attempts"`
	MaxAttempts int              `json:"max_attempts"`
	Backoff     time.Duration    `json:"backoff"`
	FailedAt    time.Time        `json:"failed_at"`
	CreatedAt   time.Time        `json:"created_at"`
}
