package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/alertkit/pkg/alert"
	"github.com/dmitrymomot/alertkit/pkg/queue"
	"github.com/dmitrymomot/alertkit/pkg/webhook"
)

const namespace = "alertkit"

// Collector exports pipeline metrics. It is a queue.Observer, an
// alert.BusObserver and a webhook breaker state hook at once, so one value is
// threaded through every component.
type Collector struct {
	gatherer prometheus.Gatherer

	eventsPublished  *prometheus.CounterVec
	eventFanout      *prometheus.CounterVec
	tasksEnqueued    *prometheus.CounterVec
	tasksCompleted   *prometheus.CounterVec
	taskDuration     *prometheus.HistogramVec
	taskFailures     *prometheus.CounterVec
	tasksDeadLetter  *prometheus.CounterVec
	circuitState     *prometheus.GaugeVec
	circuitChanges   *prometheus.CounterVec
	ingestedMessages *prometheus.CounterVec
}

var (
	_ queue.Observer    = (*Collector)(nil)
	_ alert.BusObserver = (*Collector)(nil)
)

// Option configures a Collector
type Option func(*options)

type options struct {
	registry       *prometheus.Registry
	runtimeMetrics bool
}

// WithRegistry registers the collectors on reg instead of a fresh registry
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithRuntimeMetrics adds the Go runtime and process collectors
func WithRuntimeMetrics() Option {
	return func(o *options) { o.runtimeMetrics = true }
}

// New creates the collector and registers every metric
func New(opts ...Option) (*Collector, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}

	c := &Collector{
		gatherer: o.registry,
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events accepted by the alert bus.",
		}, []string{"event_type"}),
		eventFanout: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_channels_total",
			Help:      "Channels addressed by published events.",
		}, []string{"channel"}),
		tasksEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_enqueued_total",
			Help:      "Tasks accepted by a channel queue.",
		}, []string{"queue", "task"}),
		tasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Tasks delivered successfully.",
		}, []string{"queue", "task"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Duration of successful task runs.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"queue"}),
		taskFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_failures_total",
			Help:      "Failed task attempts that will be retried.",
		}, []string{"queue", "task", "attempt"}),
		tasksDeadLetter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_dead_lettered_total",
			Help:      "Tasks moved to the dead letter queue.",
		}, []string{"queue", "reason"}),
		circuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_state",
			Help:      "Provider circuit breaker state: 0 closed, 1 open, 2 half-open.",
		}, []string{"breaker"}),
		circuitChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_transitions_total",
			Help:      "Provider circuit breaker transitions.",
		}, []string{"breaker", "to"}),
		ingestedMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_messages_total",
			Help:      "Messages read from the ingestion topic.",
		}, []string{"topic", "result"}),
	}

	cs := []prometheus.Collector{
		c.eventsPublished,
		c.eventFanout,
		c.tasksEnqueued,
		c.tasksCompleted,
		c.taskDuration,
		c.taskFailures,
		c.tasksDeadLetter,
		c.circuitState,
		c.circuitChanges,
		c.ingestedMessages,
	}
	if o.runtimeMetrics {
		cs = append(cs,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	var errs []error
	for _, col := range cs {
		if err := o.registry.Register(col); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, errors.Join(ErrRegister, err)
	}
	return c, nil
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// EventPublished implements alert.BusObserver
func (c *Collector) EventPublished(eventType string, channels []alert.Channel) {
	c.eventsPublished.WithLabelValues(eventType).Inc()
	for _, ch := range channels {
		c.eventFanout.WithLabelValues(string(ch)).Inc()
	}
}

// TaskEnqueued implements queue.Observer
func (c *Collector) TaskEnqueued(queueName, taskName string) {
	c.tasksEnqueued.WithLabelValues(queueName, taskName).Inc()
}

// TaskCompleted implements queue.Observer
func (c *Collector) TaskCompleted(queueName, taskName string, duration time.Duration) {
	c.tasksCompleted.WithLabelValues(queueName, taskName).Inc()
	c.taskDuration.WithLabelValues(queueName).Observe(duration.Seconds())
}

// TaskFailed implements queue.Observer
func (c *Collector) TaskFailed(queueName, taskName string, attempt int) {
	c.taskFailures.WithLabelValues(queueName, taskName, strconv.Itoa(attempt)).Inc()
}

// TaskDeadLettered implements queue.Observer
func (c *Collector) TaskDeadLettered(queueName, _ string, reason queue.DeadLetterReason) {
	c.tasksDeadLetter.WithLabelValues(queueName, string(reason)).Inc()
}

// CircuitStateChanged matches webhook.StateChangeHook
func (c *Collector) CircuitStateChanged(name string, _, to webhook.CircuitState) {
	c.circuitState.WithLabelValues(name).Set(float64(to))
	c.circuitChanges.WithLabelValues(name, to.String()).Inc()
}

// MessageIngested counts one consumed message with result "published" or "rejected"
func (c *Collector) MessageIngested(topic, result string) {
	c.ingestedMessages.WithLabelValues(topic, result).Inc()
}
