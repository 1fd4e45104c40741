package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxDB is the subset of *pgxpool.Pool used by PostgresStorage
type PgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStorage implements all queue repository interfaces on PostgreSQL.
// Claims use FOR UPDATE SKIP LOCKED so any number of workers can share the tables.
type PostgresStorage struct {
	db  PgxDB
	now func() time.Time
}

// NewPostgresStorage creates a storage backed by the queue_tasks and
// queue_dead_letters tables from internal/db/migrations
func NewPostgresStorage(db PgxDB) (*PostgresStorage, error) {
	if db == nil {
		return nil, ErrRepositoryNil
	}
	return &PostgresStorage{db: db, now: time.Now}, nil
}

const taskColumns = `id, queue, task_name, payload, status, attempts, max_attempts, backoff_ms,
	scheduled_at, locked_until, locked_by, error, created_at`

const deadLetterColumns = `id, task_id, queue, task_name, payload, error, reason, attempts,
	max_attempts, backoff_ms, failed_at, created_at`

// CreateTask implements EnqueuerRepository
func (s *PostgresStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	_, err := s.db.Exec(ctx, `INSERT INTO queue_tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		task.ID, task.Queue, task.TaskName, task.Payload, string(task.Status), task.Attempts,
		task.MaxAttempts, task.Backoff.Milliseconds(), task.ScheduledAt, task.LockedUntil,
		task.LockedBy, task.Error, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// ClaimTask implements WorkerRepository.
// Pending tasks and tasks with an expired lock and attempts left are both claimable.
func (s *PostgresStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	now := s.now()
	row := s.db.QueryRow(ctx, `UPDATE queue_tasks
		SET status = 'processing', attempts = attempts + 1, locked_until = $4, locked_by = $1
		WHERE id = (
			SELECT id FROM queue_tasks
			WHERE queue = ANY($2)
				AND attempts < max_attempts
				AND (
					(status = 'pending' AND scheduled_at <= $3)
					OR (status = 'processing' AND locked_until < $3)
				)
			ORDER BY scheduled_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+taskColumns,
		workerID, queues, now, now.Add(lockDuration),
	)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoTaskToClaim
		}
		return nil, fmt.Errorf("claim task: %w", err)
	}
	return task, nil
}

// CompleteTask implements WorkerRepository
func (s *PostgresStorage) CompleteTask(ctx context.Context, taskID, workerID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM queue_tasks
		WHERE id = $1 AND status = 'processing' AND locked_by = $2`, taskID, workerID)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lockError(ctx, s.db, taskID)
	}
	return nil
}

// FailTask implements WorkerRepository.
// The final attempt is dead-lettered inside the same transaction.
func (s *PostgresStorage) FailTask(ctx context.Context, taskID, workerID uuid.UUID, errorMsg string) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var attempts, maxAttempts int
		var backoffMs int64
		err := tx.QueryRow(ctx, `SELECT attempts, max_attempts, backoff_ms FROM queue_tasks
			WHERE id = $1 AND status = 'processing' AND locked_by = $2 FOR UPDATE`, taskID, workerID,
		).Scan(&attempts, &maxAttempts, &backoffMs)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return lockError(ctx, tx, taskID)
			}
			return fmt.Errorf("lock task: %w", err)
		}

		now := s.now()
		if attempts >= maxAttempts {
			_, err = tx.Exec(ctx, moveToDLQSQL,
				taskID, uuid.New(), errorMsg, string(ReasonExhausted), now, workerID)
		} else {
			policy := RetryPolicy{MaxAttempts: maxAttempts, Backoff: time.Duration(backoffMs) * time.Millisecond}
			_, err = tx.Exec(ctx, `UPDATE queue_tasks
				SET status = 'pending', error = $2, scheduled_at = $3, locked_until = NULL, locked_by = NULL
				WHERE id = $1`, taskID, errorMsg, now.Add(policy.Delay(attempts)))
		}
		if err != nil {
			return fmt.Errorf("fail task: %w", err)
		}
		return nil
	})
}

// moveToDLQSQL moves task $1 into the DLQ as entry $2.
// A processing task only moves when worker $6 holds its lock.
const moveToDLQSQL = `WITH moved AS (
		DELETE FROM queue_tasks
		WHERE id = $1 AND (status <> 'processing' OR locked_by = $6)
		RETURNING id, queue, task_name, payload, error, attempts, max_attempts, backoff_ms, created_at
	)
	INSERT INTO queue_dead_letters (` + deadLetterColumns + `)
	SELECT $2, id, queue, task_name, payload, COALESCE(NULLIF($3::text, ''), error, ''), $4,
		attempts, max_attempts, backoff_ms, $5, created_at
	FROM moved`

// MoveToDLQ implements WorkerRepository
func (s *PostgresStorage) MoveToDLQ(ctx context.Context, taskID, workerID uuid.UUID, reason DeadLetterReason, errorMsg string) error {
	tag, err := s.db.Exec(ctx, moveToDLQSQL,
		taskID, uuid.New(), errorMsg, string(reason), s.now(), workerID)
	if err != nil {
		return fmt.Errorf("move task to dlq: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lockError(ctx, s.db, taskID)
	}
	return nil
}

// ExtendLock implements WorkerRepository
func (s *PostgresStorage) ExtendLock(ctx context.Context, taskID, workerID uuid.UUID, duration time.Duration) error {
	tag, err := s.db.Exec(ctx, `UPDATE queue_tasks SET locked_until = $3
		WHERE id = $1 AND status = 'processing' AND locked_by = $2`, taskID, workerID, s.now().Add(duration))
	if err != nil {
		return fmt.Errorf("extend lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lockError(ctx, s.db, taskID)
	}
	return nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// lockError explains why an owner-filtered write matched no row
func lockError(ctx context.Context, q rowQuerier, taskID uuid.UUID) error {
	var status string
	err := q.QueryRow(ctx, `SELECT status FROM queue_tasks WHERE id = $1`, taskID).Scan(&status)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	case err != nil:
		return fmt.Errorf("lookup task: %w", err)
	case TaskStatus(status) == TaskStatusProcessing:
		return fmt.Errorf("%w: %s", ErrLockLost, taskID)
	default:
		return fmt.Errorf("%w: task %s is not in processing state", ErrTaskNotFound, taskID)
	}
}

// ListDeadLetters implements DeadLetterRepository
func (s *PostgresStorage) ListDeadLetters(ctx context.Context, queue string, limit int) ([]DeadLetter, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	rows, err := s.db.Query(ctx, `SELECT `+deadLetterColumns+` FROM queue_dead_letters
		WHERE ($1::text = '' OR queue = $1)
		ORDER BY failed_at DESC
		LIMIT $2`, queue, limitArg)
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (DeadLetter, error) {
		var (
			dl        DeadLetter
			reason    string
			backoffMs int64
		)
		err := row.Scan(&dl.ID, &dl.TaskID, &dl.Queue, &dl.TaskName, &dl.Payload, &dl.Error,
			&reason, &dl.Attempts, &dl.MaxAttempts, &backoffMs, &dl.FailedAt, &dl.CreatedAt)
		dl.Reason = DeadLetterReason(reason)
		dl.Backoff = time.Duration(backoffMs) * time.Millisecond
		return dl, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan dead letters: %w", err)
	}
	return result, nil
}

// RequeueDeadLetter implements DeadLetterRepository
func (s *PostgresStorage) RequeueDeadLetter(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	taskID := uuid.New()
	tag, err := s.db.Exec(ctx, `WITH dl AS (
			DELETE FROM queue_dead_letters WHERE id = $1
			RETURNING queue, task_name, payload, max_attempts, backoff_ms
		)
		INSERT INTO queue_tasks (id, queue, task_name, payload, status, attempts, max_attempts, backoff_ms, scheduled_at, created_at)
		SELECT $2, queue, task_name, payload, 'pending', 0, max_attempts, backoff_ms, $3, $3
		FROM dl`, id, taskID, s.now())
	if err != nil {
		return uuid.Nil, fmt.Errorf("requeue dead letter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrDeadLetterNotFound, id)
	}
	return taskID, nil
}

// PurgeDeadLetters implements DeadLetterRepository
func (s *PostgresStorage) PurgeDeadLetters(ctx context.Context, queue string, before time.Time) (int, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM queue_dead_letters WHERE queue = $1 AND failed_at < $2`, queue, before)
	if err != nil {
		return 0, fmt.Errorf("purge dead letters: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// DeadLetterStaleTasks implements DeadLetterRepository
func (s *PostgresStorage) DeadLetterStaleTasks(ctx context.Context) (int, error) {
	now := s.now()
	tag, err := s.db.Exec(ctx, `WITH moved AS (
			DELETE FROM queue_tasks
			WHERE status = 'processing' AND locked_until < $1 AND attempts >= max_attempts
			RETURNING id, queue, task_name, payload, attempts, max_attempts, backoff_ms, created_at
		)
		INSERT INTO queue_dead_letters (`+deadLetterColumns+`)
		SELECT gen_random_uuid(), id, queue, task_name, payload, $2, $3,
			attempts, max_attempts, backoff_ms, $1, created_at
		FROM moved`, now, errLockExpired, string(ReasonExhausted))
	if err != nil {
		return 0, fmt.Errorf("dead-letter stale tasks: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var (
		t         Task
		status    string
		backoffMs int64
	)
	err := row.Scan(&t.ID, &t.Queue, &t.TaskName, &t.Payload, &status, &t.Attempts, &t.MaxAttempts,
		&backoffMs, &t.ScheduledAt, &t.LockedUntil, &t.LockedBy, &t.Error, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = TaskStatus(status)
	t.Backoff = time.Duration(backoffMs) * time.Millisecond
	return &t, nil
}

// Compile-time interface checks
var (
	_ EnqueuerRepository   = (*PostgresStorage)(nil)
	_ WorkerRepository     = (*PostgresStorage)(nil)
	_ DeadLetterRepository = (*PostgresStorage)(nil)
	_ EnqueuerRepository   = (*MemoryStorage)(nil)
	_ WorkerRepository     = (*MemoryStorage)(nil)
	_ DeadLetterRepository = (*MemoryStorage)(nil)
)
