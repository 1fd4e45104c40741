// Package queue provides a repository-agnostic durable task queue with
// bounded retries and a dead letter queue.
//
// The package is organised around three main components:
//
//   - Enqueuer  adds tasks to a named queue with a fixed retry policy
//   - Worker    claims ready tasks and dispatches them to a registered Handler
//   - Janitor   purges dead letters older than a per-queue retention
//
// Components interact only through small repository interfaces, keeping the
// business logic decoupled from persistence. MemoryStorage backs tests and
// single-process deployments; PostgresStorage backs production.
//
// # Delivery semantics
//
// Delivery is at-least-once. A task runs at most MaxAttempts times. After a
// failed attempt the task becomes ready again after RetryPolicy.Delay. When the
// budget is spent, or the handler returns an error wrapped with Permanent, the
// task moves to the dead letter queue together with its last error. Outcome
// writes are accepted only from the worker holding the task lock; a worker
// that overran its lock gets ErrLockLost.
//
// # Usage
//
//	type SendEmail struct {
//	    To string
//	}
//
//	storage := queue.NewMemoryStorage()
//	enq, _ := queue.NewEnqueuer(storage,
//	    queue.WithDefaultQueue("email"),
//	    queue.WithRetryPolicy(queue.RetryPolicy{MaxAttempts: 5, Backoff: 5 * time.Second}),
//	)
//	id, err := enq.Enqueue(ctx, SendEmail{To: "a@example.com"})
//
//	w, _ := queue.NewWorker(storage, queue.WithQueues("email"))
//	_ = w.RegisterHandler(queue.NewTaskHandler(func(ctx context.Context, p SendEmail) error {
//	    return send(ctx, p.To)
//	}))
//	go w.Start(ctx)
//
// # Error Handling
//
// Package-level sentinel errors (e.g. ErrInvalidRetryPolicy, ErrNoHandlers) signal
// violations of business invariants and can be checked with errors.Is.
package queue
