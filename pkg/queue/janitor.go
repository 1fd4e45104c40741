package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/alertkit/pkg/logger"
)

// DeadLetterRepository defines the interface for dead letter inspection and maintenance
type DeadLetterRepository interface {
	// ListDeadLetters returns newest entries first; an empty queue lists all queues
	ListDeadLetters(ctx context.Context, queue string, limit int) ([]DeadLetter, error)

	// RequeueDeadLetter turns an entry back into a pending task with a fresh attempt budget
	RequeueDeadLetter(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	// PurgeDeadLetters deletes entries of the queue that failed before the given time
	PurgeDeadLetters(ctx context.Context, queue string, before time.Time) (int, error)

	// DeadLetterStaleTasks moves tasks whose final attempt lost its lock into the DLQ
	DeadLetterStaleTasks(ctx context.Context) (int, error)
}

// Janitor periodically enforces dead letter retention per queue
type Janitor struct {
	repo      DeadLetterRepository
	retention map[string]time.Duration
	mu        sync.RWMutex
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewJanitor creates a new dead letter janitor
func NewJanitor(repo DeadLetterRepository, opts ...JanitorOption) (*Janitor, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &janitorOptions{
		interval: time.Hour,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(options)
	}

	return &Janitor{
		repo:      repo,
		retention: make(map[string]time.Duration),
		interval:  options.interval,
		logger:    options.logger,
		now:       time.Now,
	}, nil
}

// SetRetention registers how long dead letters of a queue are kept
func (j *Janitor) SetRetention(queue string, retention time.Duration) error {
	if queue == "" || retention <= 0 {
		return fmt.Errorf("invalid retention %s for queue %q", retention, queue)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, exists := j.retention[queue]; exists {
		return fmt.Errorf("%w: %s", ErrRetentionAlreadySet, queue)
	}
	j.retention[queue] = retention

	j.logger.Info("registered dead letter retention",
		slog.String("queue", queue),
		slog.Duration("retention", retention))

	return nil
}

// Retention returns the configured retention of a queue
func (j *Janitor) Retention(queue string) (time.Duration, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	d, ok := j.retention[queue]
	return d, ok
}

// Start sweeps immediately and then on every interval until ctx is cancelled
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.RLock()
	rules := len(j.retention)
	j.mu.RUnlock()

	if rules == 0 {
		return ErrJanitorNotConfigured
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor shutting down")
			return ctx.Err()
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Run returns a function suitable for errgroup
func (j *Janitor) Run(ctx context.Context) func() error {
	return func() error {
		err := j.Start(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	}
}

// Sweep runs one maintenance pass: stale tasks first, then retention
func (j *Janitor) Sweep(ctx context.Context) {
	if n, err := j.repo.DeadLetterStaleTasks(ctx); err != nil {
		j.logger.Error("failed to dead-letter stale tasks",
			logger.Error(err))
	} else if n > 0 {
		j.logger.Warn("dead-lettered tasks with expired final attempt",
			slog.Int("count", n))
	}

	j.mu.RLock()
	rules := make(map[string]time.Duration, len(j.retention))
	for q, d := range j.retention {
		rules[q] = d
	}
	j.mu.RUnlock()

	now := j.now()
	for queue, retention := range rules {
		purged, err := j.repo.PurgeDeadLetters(ctx, queue, now.Add(-retention))
		if err != nil {
			j.logger.Error("failed to purge dead letters",
				slog.String("queue", queue),
				logger.Error(err))
			continue
		}
		if purged > 0 {
			j.logger.Info("purged dead letters",
				slog.String("queue", queue),
				slog.Int("count", purged))
		}
	}
}
