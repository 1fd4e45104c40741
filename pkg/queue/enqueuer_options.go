package queue

import "time"

// EnqueuerOption is a functional option for configuring an Enqueuer
type EnqueuerOption func(*enqueuerOptions)

type enqueuerOptions struct {
	defaultQueue string
	policy       RetryPolicy
	observer     Observer
}

// WithDefaultQueue sets the default queue name
func WithDefaultQueue(queue string) EnqueuerOption {
	return func(o *enqueuerOptions) {
		if queue != "" {
			o.defaultQueue = queue
		}
	}
}

// WithRetryPolicy sets the retry policy stamped on every enqueued task.
// NewEnqueuer rejects policies that fail Validate.
func WithRetryPolicy(policy RetryPolicy) EnqueuerOption {
	return func(o *enqueuerOptions) {
		o.policy = policy
	}
}

// WithEnqueuerObserver reports enqueued tasks to the given observer
func WithEnqueuerObserver(observer Observer) EnqueuerOption {
	return func(o *enqueuerOptions) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// EnqueueOption is a functional option for the Enqueue method
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	queue    string
	delay    time.Duration
	taskName string
}

// WithQueue sets the queue for the task
func WithQueue(queue string) EnqueueOption {
	return func(o *enqueueOptions) {
		if queue != "" {
			o.queue = queue
		}
	}
}

// WithDelay sets a delay before the task can be processed
func WithDelay(delay time.Duration) EnqueueOption {
	return func(o *enqueueOptions) {
		if delay > 0 {
			o.delay = delay
		}
	}
}

// WithTaskName sets a custom task name
func WithTaskName(name string) EnqueueOption {
	return func(o *enqueueOptions) {
		if name != "" {
			o.taskName = name
		}
	}
}
