package queue

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrRepositoryNil is returned when a nil repository is provided
	ErrRepositoryNil = errors.New("repository cannot be nil")

	// ErrPayloadNil is returned when attempting to enqueue a nil payload
	ErrPayloadNil = errors.New("payload cannot be nil")

	// ErrInvalidRetryPolicy is returned when a retry policy is out of bounds
	ErrInvalidRetryPolicy = errors.New("invalid retry policy")

	// ErrHandlerNotFound is returned when no handler is registered for a task
	ErrHandlerNotFound = errors.New("no handler registered for task type")

	// ErrNoHandlers is returned when worker has no handlers registered
	ErrNoHandlers = errors.New("no task handlers registered")

	// ErrDuplicateHandler is returned when two handlers share a task name
	ErrDuplicateHandler = errors.New("handler already registered for task name")

	// ErrNoTaskToClaim is returned by ClaimTask when nothing is ready
	ErrNoTaskToClaim = errors.New("no task available to claim")

	// ErrTaskNotFound is returned when a task does not exist or is not in the expected state
	ErrTaskNotFound = errors.New("task not found")

	// ErrLockLost is returned when a worker reports on a task whose lock another worker now holds
	ErrLockLost = errors.New("task lock held by another worker")

	// ErrDeadLetterNotFound is returned when a dead letter does not exist
	ErrDeadLetterNotFound = errors.New("dead letter not found")

	// ErrWorkerAlreadyStarted is returned by Start on a running worker
	ErrWorkerAlreadyStarted = errors.New("worker already started")

	// ErrWorkerNotStarted is returned by Stop on a worker that is not running
	ErrWorkerNotStarted = errors.New("worker not started")

	// ErrJanitorNotConfigured is returned when the janitor has no retention rules
	ErrJanitorNotConfigured = errors.New("janitor has no retention rules")

	// ErrRetentionAlreadySet is returned when a queue retention is registered twice
	ErrRetentionAlreadySet = errors.New("retention already set for queue")

	// ErrPermanent marks a handler error that retrying cannot fix.
	// The worker moves such tasks straight to the dead letter queue.
	ErrPermanent = errors.New("permanent task failure")
)

// Permanent wraps err so the worker dead-letters the task without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPermanent) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}
