package queue_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/alertkit/pkg/queue"
)

func TestJanitor(t *testing.T) {
	t.Parallel()

	t.Run("nil repository", func(t *testing.T) {
		t.Parallel()

		j, err := queue.NewJanitor(nil)
		assert.ErrorIs(t, err, queue.ErrRepositoryNil)
		assert.Nil(t, j)
	})

	t.Run("start without retention rules", func(t *testing.T) {
		t.Parallel()

		j, err := queue.NewJanitor(newStorage(t), queue.WithJanitorLogger(discardLogger()))
		require.NoError(t, err)
		assert.ErrorIs(t, j.Start(context.Background()), queue.ErrJanitorNotConfigured)
	})

	t.Run("retention validation", func(t *testing.T) {
		t.Parallel()

		j, err := queue.NewJanitor(newStorage(t), queue.WithJanitorLogger(discardLogger()))
		require.NoError(t, err)

		require.NoError(t, j.SetRetention("email", 14*24*time.Hour))
		assert.ErrorIs(t, j.SetRetention("email", time.Hour), queue.ErrRetentionAlreadySet)
		assert.Error(t, j.SetRetention("", time.Hour))
		assert.Error(t, j.SetRetention("push", 0))

		d, ok := j.Retention("email")
		assert.True(t, ok)
		assert.Equal(t, 14*24*time.Hour, d)
	})

	t.Run("sweep purges expired entries per queue", func(t *testing.T) {
		t.Parallel()

		storage := newStorage(t)
		for _, q := range []string{"email", "push"} {
			task := newTask(q, 1, 0)
			require.NoError(t, storage.CreateTask(context.Background(), task))
			require.NoError(t, storage.MoveToDLQ(context.Background(), task.ID, uuid.Nil, queue.ReasonPermanent, "bad"))
		}

		j, err := queue.NewJanitor(storage, queue.WithJanitorLogger(discardLogger()))
		require.NoError(t, err)
		require.NoError(t, j.SetRetention("push", 5*time.Millisecond))
		require.NoError(t, j.SetRetention("email", time.Hour))

		time.Sleep(10 * time.Millisecond)
		j.Sweep(context.Background())

		push, err := storage.ListDeadLetters(context.Background(), "push", 0)
		require.NoError(t, err)
		assert.Empty(t, push)

		email, err := storage.ListDeadLetters(context.Background(), "email", 0)
		require.NoError(t, err)
		assert.Len(t, email, 1)
	})

	t.Run("run returns nil on cancel", func(t *testing.T) {
		t.Parallel()

		j, err := queue.NewJanitor(newStorage(t),
			queue.WithJanitorInterval(5*time.Millisecond),
			queue.WithJanitorLogger(discardLogger()))
		require.NoError(t, err)
		require.NoError(t, j.SetRetention("email", time.Hour))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- j.Run(ctx)() }()

		time.Sleep(20 * time.Millisecond)
		cancel()
		assert.NoError(t, <-done)
	})
}

// failingSweepStorage fails every stale-task sweep
type failingSweepStorage struct {
	*queue.MemoryStorage
}

func (failingSweepStorage) DeadLetterStaleTasks(context.Context) (int, error) {
	return 0, errors.New("connection reset")
}

func TestJanitor_SweepLogsErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	j, err := queue.NewJanitor(failingSweepStorage{MemoryStorage: newStorage(t)}, queue.WithJanitorLogger(log))
	require.NoError(t, err)
	j.Sweep(context.Background())

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "failed to dead-letter stale tasks", record["msg"])
	assert.Equal(t, "connection reset", record["error"])
}
