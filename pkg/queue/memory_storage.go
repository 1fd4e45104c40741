package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// errLockExpired is recorded for tasks whose last attempt never reported back
const errLockExpired = "lock expired: worker did not report task outcome"

// MemoryStorage implements all queue repository interfaces for testing and local development
type MemoryStorage struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task
	dlq   map[uuid.UUID]*DeadLetter

	// Indexes for efficient queries
	byQueue  map[string][]uuid.UUID
	byStatus map[TaskStatus][]uuid.UUID

	lockTicker *time.Ticker
	done       chan struct{}
	closeOnce  sync.Once
}

// NewMemoryStorage creates a new in-memory storage implementation
func NewMemoryStorage() *MemoryStorage {
	ms := &MemoryStorage{
		tasks:    make(map[uuid.UUID]*Task),
		dlq:      make(map[uuid.UUID]*DeadLetter),
		byQueue:  make(map[string][]uuid.UUID),
		byStatus: make(map[TaskStatus][]uuid.UUID),
		done:     make(chan struct{}),
	}

	ms.lockTicker = time.NewTicker(time.Second)
	go ms.lockExpirationManager()

	return ms
}

// Close stops the background goroutines
func (ms *MemoryStorage) Close() error {
	ms.closeOnce.Do(func() {
		close(ms.done)
		ms.lockTicker.Stop()
	})
	return nil
}

// Len returns the number of live tasks in the queue
func (ms *MemoryStorage) Len(queue string) int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.byQueue[queue])
}

// Task returns a copy of a live task
func (ms *MemoryStorage) Task(taskID uuid.UUID) (*Task, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	task, ok := ms.tasks[taskID]
	if !ok {
		return nil, false
	}
	taskCopy := *task
	return &taskCopy, true
}

// CreateTask implements EnqueuerRepository
func (ms *MemoryStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[task.ID]; exists {
		return fmt.Errorf("task with ID %s already exists", task.ID)
	}

	ms.insert(task)
	return nil
}

func (ms *MemoryStorage) insert(task *Task) {
	taskCopy := *task
	taskCopy.Payload = slices.Clone(task.Payload)
	ms.tasks[task.ID] = &taskCopy

	ms.byQueue[task.Queue] = append(ms.byQueue[task.Queue], task.ID)
	ms.byStatus[task.Status] = append(ms.byStatus[task.Status], task.ID)
}

// ClaimTask implements WorkerRepository.
// The oldest ready task across the requested queues wins.
func (ms *MemoryStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Task

	for _, taskID := range ms.byStatus[TaskStatusPending] {
		task := ms.tasks[taskID]

		if !slices.Contains(queues, task.Queue) {
			continue
		}
		if task.ScheduledAt.After(now) {
			continue
		}
		if task.Exhausted() {
			continue
		}

		if best == nil || task.ScheduledAt.Before(best.ScheduledAt) {
			best = task
		}
	}

	if best == nil {
		return nil, ErrNoTaskToClaim
	}

	lockUntil := now.Add(lockDuration)
	best.Status = TaskStatusProcessing
	best.Attempts++
	best.LockedUntil = &lockUntil
	best.LockedBy = &workerID

	ms.moveStatus(best.ID, TaskStatusPending, TaskStatusProcessing)

	taskCopy := *best
	return &taskCopy, nil
}

// CompleteTask implements WorkerRepository
func (ms *MemoryStorage) CompleteTask(ctx context.Context, taskID, workerID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, err := ms.lockedBy(taskID, workerID)
	if err != nil {
		return err
	}

	ms.remove(task)
	return nil
}

// FailTask implements WorkerRepository
func (ms *MemoryStorage) FailTask(ctx context.Context, taskID, workerID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, err := ms.lockedBy(taskID, workerID)
	if err != nil {
		return err
	}

	task.Error = &errorMsg
	task.LockedUntil = nil
	task.LockedBy = nil

	if task.Exhausted() {
		ms.deadLetter(task, ReasonExhausted, errorMsg)
		return nil
	}

	task.Status = TaskStatusPending
	task.ScheduledAt = time.Now().Add(task.RetryPolicy().Delay(task.Attempts))
	ms.moveStatus(taskID, TaskStatusProcessing, TaskStatusPending)

	return nil
}

// MoveToDLQ implements WorkerRepository
func (ms *MemoryStorage) MoveToDLQ(ctx context.Context, taskID, workerID uuid.UUID, reason DeadLetterReason, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if task.Status == TaskStatusProcessing && !ownedBy(task, workerID) {
		return fmt.Errorf("%w: %s", ErrLockLost, taskID)
	}

	ms.deadLetter(task, reason, errorMsg)
	return nil
}

func (ms *MemoryStorage) deadLetter(task *Task, reason DeadLetterReason, errorMsg string) {
	if errorMsg == "" && task.Error != nil {
		errorMsg = *task.Error
	}

	now := time.Now()
	entry := &DeadLetter{
		ID:          uuid.New(),
		TaskID:      task.ID,
		Queue:       task.Queue,
		TaskName:    task.TaskName,
		Payload:     task.Payload,
		Error:       errorMsg,
		Reason:      reason,
		Attempts:    task.Attempts,
		MaxAttempts: task.MaxAttempts,
		Backoff:     task.Backoff,
		FailedAt:    now,
		CreatedAt:   task.CreatedAt,
	}
	ms.dlq[entry.ID] = entry

	ms.remove(task)
}

// ExtendLock implements WorkerRepository
func (ms *MemoryStorage) ExtendLock(ctx context.Context, taskID, workerID uuid.UUID, duration time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, err := ms.lockedBy(taskID, workerID)
	if err != nil {
		return err
	}

	lockUntil := time.Now().Add(duration)
	task.LockedUntil = &lockUntil

	return nil
}

// ListDeadLetters implements DeadLetterRepository.
// Newest failures first; an empty queue lists every queue.
func (ms *MemoryStorage) ListDeadLetters(ctx context.Context, queue string, limit int) ([]DeadLetter, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]DeadLetter, 0, len(ms.dlq))
	for _, entry := range ms.dlq {
		if queue != "" && entry.Queue != queue {
			continue
		}
		result = append(result, *entry)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].FailedAt.After(result[j].FailedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// RequeueDeadLetter implements DeadLetterRepository.
// The new task keeps the payload and retry policy and starts with a fresh attempt budget.
func (ms *MemoryStorage) RequeueDeadLetter(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry, ok := ms.dlq[id]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrDeadLetterNotFound, id)
	}

	now := time.Now()
	task := &Task{
		ID:          uuid.New(),
		Queue:       entry.Queue,
		TaskName:    entry.TaskName,
		Payload:     entry.Payload,
		Status:      TaskStatusPending,
		MaxAttempts: entry.MaxAttempts,
		Backoff:     entry.Backoff,
		ScheduledAt: now,
		CreatedAt:   now,
	}
	ms.insert(task)
	delete(ms.dlq, id)

	return task.ID, nil
}

// PurgeDeadLetters implements DeadLetterRepository
func (ms *MemoryStorage) PurgeDeadLetters(ctx context.Context, queue string, before time.Time) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	purged := 0
	for id, entry := range ms.dlq {
		if entry.Queue == queue && entry.FailedAt.Before(before) {
			delete(ms.dlq, id)
			purged++
		}
	}
	return purged, nil
}

// DeadLetterStaleTasks implements DeadLetterRepository.
// Tasks whose final attempt lost its worker are moved to the DLQ instead of running again.
func (ms *MemoryStorage) DeadLetterStaleTasks(ctx context.Context) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.expireLocksLocked(), nil
}

// Helper methods

// lockedBy returns a processing task whose lock is held by workerID
func (ms *MemoryStorage) lockedBy(taskID, workerID uuid.UUID) (*Task, error) {
	task, exists := ms.tasks[taskID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if task.Status != TaskStatusProcessing {
		return nil, fmt.Errorf("%w: task %s is not in processing state", ErrTaskNotFound, taskID)
	}
	if !ownedBy(task, workerID) {
		return nil, fmt.Errorf("%w: %s", ErrLockLost, taskID)
	}
	return task, nil
}

func ownedBy(task *Task, workerID uuid.UUID) bool {
	return task.LockedBy != nil && *task.LockedBy == workerID
}

func (ms *MemoryStorage) remove(task *Task) {
	ms.removeFromStatusIndex(task.ID, task.Status)
	ms.removeFromQueueIndex(task.ID, task.Queue)
	delete(ms.tasks, task.ID)
}

func (ms *MemoryStorage) moveStatus(taskID uuid.UUID, from, to TaskStatus) {
	ms.removeFromStatusIndex(taskID, from)
	ms.byStatus[to] = append(ms.byStatus[to], taskID)
}

func (ms *MemoryStorage) removeFromStatusIndex(taskID uuid.UUID, status TaskStatus) {
	ms.byStatus[status] = slices.DeleteFunc(ms.byStatus[status], func(id uuid.UUID) bool {
		return id == taskID
	})
}

func (ms *MemoryStorage) removeFromQueueIndex(taskID uuid.UUID, queue string) {
	ms.byQueue[queue] = slices.DeleteFunc(ms.byQueue[queue], func(id uuid.UUID) bool {
		return id == taskID
	})
}

// lockExpirationManager recovers tasks from dead workers.
// Without it a task locked by a crashed worker would never run again.
func (ms *MemoryStorage) lockExpirationManager() {
	for {
		select {
		case <-ms.lockTicker.C:
			ms.mu.Lock()
			ms.expireLocksLocked()
			ms.mu.Unlock()
		case <-ms.done:
			return
		}
	}
}

// expireLocksLocked releases expired locks. Tasks with attempts left go back to
// pending; tasks that used their last attempt go to the DLQ.
// Caller must hold ms.mu.
func (ms *MemoryStorage) expireLocksLocked() int {
	now := time.Now()
	deadLettered := 0

	for _, taskID := range slices.Clone(ms.byStatus[TaskStatusProcessing]) {
		task := ms.tasks[taskID]
		if task.LockedUntil == nil || !task.LockedUntil.Before(now) {
			continue
		}

		task.LockedUntil = nil
		task.LockedBy = nil

		if task.Exhausted() {
			ms.deadLetter(task, ReasonExhausted, errLockExpired)
			deadLettered++
			continue
		}

		task.Status = TaskStatusPending
		ms.moveStatus(taskID, TaskStatusProcessing, TaskStatusPending)
	}

	return deadLettered
}
