package queue

import "time"

// Config holds the worker settings shared by all channel queues
type Config struct {
	PollInterval       time.Duration `env:"QUEUE_POLL_INTERVAL" envDefault:"1s"`
	LockTimeout        time.Duration `env:"QUEUE_LOCK_TIMEOUT" envDefault:"5m"`
	MaxConcurrentTasks int           `env:"QUEUE_MAX_CONCURRENT_TASKS" envDefault:"5"`
	JanitorInterval    time.Duration `env:"QUEUE_JANITOR_INTERVAL" envDefault:"1h"`
}

// WorkerOptions converts the config into worker options
func (c Config) WorkerOptions() []WorkerOption {
	return []WorkerOption{
		WithPullInterval(c.PollInterval),
		WithLockTimeout(c.LockTimeout),
		WithMaxConcurrentTasks(c.MaxConcurrentTasks),
	}
}
