package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/alertkit/pkg/logger"
)

// WorkerRepository defines the interface for worker operations
type WorkerRepository interface {
	// ClaimTask atomically claims the next ready task and increments its attempt counter
	ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error)

	// CompleteTask removes a successfully processed task.
	// Returns ErrLockLost when workerID no longer holds the task lock.
	CompleteTask(ctx context.Context, taskID, workerID uuid.UUID) error

	// FailTask records the error and reschedules the task after
	// RetryPolicy.Delay(attempts). A task that spent its budget is moved to
	// the DLQ with ReasonExhausted in the same step.
	FailTask(ctx context.Context, taskID, workerID uuid.UUID, errorMsg string) error

	// MoveToDLQ moves task to dead letter queue. A processing task can only be
	// moved by the worker holding its lock.
	// An empty errorMsg keeps the error recorded by the last FailTask.
	MoveToDLQ(ctx context.Context, taskID, workerID uuid.UUID, reason DeadLetterReason, errorMsg string) error

	// ExtendLock extends the lock timeout for long-running tasks
	ExtendLock(ctx context.Context, taskID, workerID uuid.UUID, duration time.Duration) error
}

// Worker processes tasks from the queue
type Worker struct {
	repo     WorkerRepository
	handlers map[string]Handler
	queues   []string
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopMu   sync.Mutex // Protects stopping state and WaitGroup operations

	pullInterval time.Duration
	lockTimeout  time.Duration
	logger       *slog.Logger
	observer     Observer

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

// NewWorker creates a new task worker
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &workerOptions{
		queues:             []string{DefaultQueueName},
		pullInterval:       time.Second,
		lockTimeout:        5 * time.Minute,
		maxConcurrentTasks: 1,
		logger:             slog.Default(),
		observer:           noopObserver{},
	}

	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		repo:         repo,
		handlers:     make(map[string]Handler),
		queues:       options.queues,
		workerID:     uuid.New(),
		sem:          make(chan struct{}, options.maxConcurrentTasks),
		pullInterval: options.pullInterval,
		lockTimeout:  options.lockTimeout,
		logger:       options.logger,
		observer:     options.observer,
	}, nil
}

// RegisterHandler registers a single task handler
func (w *Worker) RegisterHandler(handler Handler) error {
	if handler == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.handlers[handler.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, handler.Name())
	}
	w.handlers[handler.Name()] = handler
	return nil
}

// RegisterHandlers registers multiple task handlers
func (w *Worker) RegisterHandlers(handlers ...Handler) error {
	for _, h := range handlers {
		if err := w.RegisterHandler(h); err != nil {
			return err
		}
	}
	return nil
}

// Start begins processing tasks in the background
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return ErrWorkerAlreadyStarted
	}

	if len(w.handlers) == 0 {
		w.mu.Unlock()
		return ErrNoHandlers
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.stopping.Store(false)

	go w.run()

	w.logger.Info("worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Any("queues", w.queues),
		slog.Int("max_concurrent", cap(w.sem)))

	return nil
}

// Stop gracefully shuts down the worker.
// In-flight tasks run to completion; tasks left in the store are picked up on restart.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return ErrWorkerNotStarted
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()

	w.logger.Info("worker stopping, waiting for active tasks to complete",
		slog.String("worker_id", w.workerID.String()))

	w.wg.Wait()

	w.logger.Info("worker stopped",
		slog.String("worker_id", w.workerID.String()))

	return nil
}

// Run starts the worker and returns a function suitable for errgroup
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return w.Stop()
	}
}

// run is the main processing loop
func (w *Worker) run() {
	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.fillSlots()
		}
	}
}

// fillSlots starts a drain goroutine for every free slot
func (w *Worker) fillSlots() {
	for {
		select {
		case w.sem <- struct{}{}:
		default:
			return
		}

		w.stopMu.Lock()
		if w.stopping.Load() {
			w.stopMu.Unlock()
			<-w.sem
			return
		}
		w.wg.Add(1)
		w.stopMu.Unlock()

		go func() {
			defer w.wg.Done()
			defer func() { <-w.sem }()
			w.drain()
		}()
	}
}

// drain keeps claiming tasks until the queues are empty or the worker stops
func (w *Worker) drain() {
	for !w.stopping.Load() {
		claimed, err := w.pullAndProcess()
		if err != nil {
			w.logger.Error("failed to process task",
				slog.String("worker_id", w.workerID.String()),
				logger.Error(err))
			return
		}
		if !claimed {
			return
		}
	}
}

// pullAndProcess pulls a task and processes it
func (w *Worker) pullAndProcess() (bool, error) {
	task, err := w.repo.ClaimTask(w.ctx, w.workerID, w.queues, w.lockTimeout)
	if err != nil {
		if errors.Is(err, ErrNoTaskToClaim) || errors.Is(err, context.Canceled) {
			return false, nil
		}
		return false, fmt.Errorf("failed to claim task: %w", err)
	}
	if task == nil {
		return false, nil
	}

	w.logger.Debug("claimed task",
		slog.String("worker_id", w.workerID.String()),
		slog.String("task_id", task.ID.String()),
		slog.String("task_name", task.TaskName),
		slog.String("queue", task.Queue),
		slog.Int("attempt", task.Attempts))

	return true, w.processTask(task)
}

// processTask executes a task with its handler
func (w *Worker) processTask(task *Task) (retErr error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("handler panicked",
				slog.String("worker_id", w.workerID.String()),
				slog.String("task_id", task.ID.String()),
				slog.String("task_name", task.TaskName),
				slog.Any("panic", r))
			retErr = w.handleTaskFailure(task, fmt.Errorf("panic in handler: %v", r), time.Since(start))
		}
	}()

	w.mu.RLock()
	handler, ok := w.handlers[task.TaskName]
	w.mu.RUnlock()

	if !ok {
		return w.handleMissingHandler(task)
	}

	// Handlers outlive worker shutdown so in-flight deliveries can finish.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(w.ctx), w.lockTimeout)
	defer cancel()

	err := handler.Handle(ctx, task.Payload)
	duration := time.Since(start)

	if err != nil {
		return w.handleTaskFailure(task, err, duration)
	}

	return w.handleTaskSuccess(task, duration)
}

// storeCtx is used for bookkeeping writes so they survive worker shutdown
func (w *Worker) storeCtx() context.Context {
	return context.WithoutCancel(w.ctx)
}

// handleMissingHandler moves tasks without a registered handler straight to the DLQ
func (w *Worker) handleMissingHandler(task *Task) error {
	w.logger.Error("no handler registered for task type",
		slog.String("worker_id", w.workerID.String()),
		slog.String("task_id", task.ID.String()),
		slog.String("task_name", task.TaskName))

	errorMsg := ErrHandlerNotFound.Error() + ": " + task.TaskName
	return w.deadLetter(task, ReasonNoHandler, errorMsg)
}

// handleTaskFailure records the failure and dead-letters the task when it
// cannot be retried
func (w *Worker) handleTaskFailure(task *Task, execErr error, duration time.Duration) error {
	w.logger.Error("task failed",
		slog.String("worker_id", w.workerID.String()),
		slog.String("task_id", task.ID.String()),
		slog.String("task_name", task.TaskName),
		slog.String("queue", task.Queue),
		slog.Int("attempt", task.Attempts),
		slog.Int("max_attempts", task.MaxAttempts),
		slog.Duration("duration", duration),
		logger.Error(execErr))

	w.observer.TaskFailed(task.Queue, task.TaskName, task.Attempts)

	if IsPermanent(execErr) {
		return w.deadLetter(task, ReasonPermanent, execErr.Error())
	}

	// The storage dead-letters an exhausted task itself, so a task is never
	// left both unretryable and outside the DLQ.
	if err := w.repo.FailTask(w.storeCtx(), task.ID, w.workerID, execErr.Error()); err != nil {
		return fmt.Errorf("failed to update task %s status to failed: %w", task.ID, err)
	}

	if task.Exhausted() {
		w.reportDeadLetter(task, ReasonExhausted)
	}

	return nil
}

func (w *Worker) deadLetter(task *Task, reason DeadLetterReason, errorMsg string) error {
	if err := w.repo.MoveToDLQ(w.storeCtx(), task.ID, w.workerID, reason, errorMsg); err != nil {
		return fmt.Errorf("failed to move task %s to DLQ: %w", task.ID, err)
	}

	w.reportDeadLetter(task, reason)
	return nil
}

func (w *Worker) reportDeadLetter(task *Task, reason DeadLetterReason) {
	w.observer.TaskDeadLettered(task.Queue, task.TaskName, reason)

	w.logger.Warn("task moved to dead letter queue",
		slog.String("worker_id", w.workerID.String()),
		slog.String("task_id", task.ID.String()),
		slog.String("task_name", task.TaskName),
		slog.String("queue", task.Queue),
		slog.String("reason", string(reason)),
		slog.Int("attempts", task.Attempts))
}

// handleTaskSuccess processes successful task completion
func (w *Worker) handleTaskSuccess(task *Task, duration time.Duration) error {
	if err := w.repo.CompleteTask(w.storeCtx(), task.ID, w.workerID); err != nil {
		return fmt.Errorf("failed to mark task %s as completed: %w", task.ID, err)
	}

	w.observer.TaskCompleted(task.Queue, task.TaskName, duration)

	w.logger.Info("task completed successfully",
		slog.String("worker_id", w.workerID.String()),
		slog.String("task_id", task.ID.String()),
		slog.String("task_name", task.TaskName),
		slog.String("queue", task.Queue),
		slog.Int("attempt", task.Attempts),
		slog.Duration("duration", duration))

	return nil
}

// ExtendLockForTask extends the lock timeout for a long-running task
func (w *Worker) ExtendLockForTask(ctx context.Context, taskID uuid.UUID, extension time.Duration) error {
	return w.repo.ExtendLock(ctx, taskID, w.workerID, extension)
}

// WorkerInfo returns information about the worker
func (w *Worker) WorkerInfo() (id string, hostname string, pid int) {
	hostname, _ = os.Hostname()
	return w.workerID.String(), hostname, os.Getpid()
}
