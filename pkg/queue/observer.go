package queue

import "time"

// Observer receives task lifecycle notifications.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	TaskEnqueued(queue, taskName string)
	TaskCompleted(queue, taskName string, duration time.Duration)
	TaskFailed(queue, taskName string, attempt int)
	TaskDeadLettered(queue, taskName string, reason DeadLetterReason)
}

type noopObserver struct{}

func (noopObserver) TaskEnqueued(string, string)                       {}
func (noopObserver) TaskCompleted(string, string, time.Duration)       {}
func (noopObserver) TaskFailed(string, string, int)                    {}
func (noopObserver) TaskDeadLettered(string, string, DeadLetterReason) {}
