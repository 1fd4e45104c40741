package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/alertkit/pkg/alert"
	"github.com/dmitrymomot/alertkit/pkg/email"
	"github.com/dmitrymomot/alertkit/pkg/logger"
	"github.com/dmitrymomot/alertkit/pkg/push"
	"github.com/dmitrymomot/alertkit/pkg/queue"
	"github.com/dmitrymomot/alertkit/pkg/whatsapp"
)

// Storage is everything the pipeline needs from the task store.
// queue.MemoryStorage and queue.PostgresStorage implement it.
type Storage interface {
	queue.EnqueuerRepository
	queue.WorkerRepository
	queue.DeadLetterRepository
}

// Observer receives bus and queue notifications, e.g. *metrics.Collector
type Observer interface {
	queue.Observer
	alert.BusObserver
}

// Deps are the collaborators built by the caller
type Deps struct {
	Storage Storage
	Tokens  push.TokenStore

	EmailSender    email.EmailSender
	PushSender     push.Sender
	WhatsAppSender whatsapp.Sender

	// Observer is optional
	Observer Observer
	Logger   *slog.Logger
}

// Notifier wires the alert bus to the three channel queues and their workers
type Notifier struct {
	bus      *alert.Bus
	storage  Storage
	tokens   push.TokenStore
	workers  map[alert.Channel]*queue.Worker
	janitor  *queue.Janitor
	sweeping bool
	logger   *slog.Logger
}

// New builds routers, queues, workers and the dead letter janitor
func New(deps Deps, cfg Config) (*Notifier, error) {
	if deps.Storage == nil {
		return nil, ErrMissingStorage
	}
	if deps.Tokens == nil {
		return nil, ErrMissingTokens
	}
	if deps.EmailSender == nil || deps.PushSender == nil || deps.WhatsAppSender == nil {
		return nil, ErrMissingSender
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	var enqOpts []queue.EnqueuerOption
	if deps.Observer != nil {
		enqOpts = append(enqOpts, queue.WithEnqueuerObserver(deps.Observer))
	}

	emailQueue, err := email.NewQueue(deps.Storage, enqOpts...)
	if err != nil {
		return nil, fmt.Errorf("email queue: %w", err)
	}
	pushQueue, err := push.NewQueue(deps.Storage, deps.Tokens, enqOpts...)
	if err != nil {
		return nil, fmt.Errorf("push queue: %w", err)
	}
	whatsappQueue, err := whatsapp.NewQueue(deps.Storage, enqOpts...)
	if err != nil {
		return nil, fmt.Errorf("whatsapp queue: %w", err)
	}

	emailRouter, err := email.NewRouter(emailQueue, cfg.AdminEmails, log)
	if err != nil {
		return nil, fmt.Errorf("email router: %w", err)
	}
	pushRouter, err := push.NewRouter(pushQueue, log)
	if err != nil {
		return nil, fmt.Errorf("push router: %w", err)
	}
	whatsappRouter, err := whatsapp.NewRouter(whatsappQueue, log)
	if err != nil {
		return nil, fmt.Errorf("whatsapp router: %w", err)
	}

	busOpts := []alert.BusOption{alert.WithBusLogger(log)}
	if deps.Observer != nil {
		busOpts = append(busOpts, alert.WithBusObserver(deps.Observer))
	}
	bus, err := alert.NewBus([]alert.Listener{emailRouter, pushRouter, whatsappRouter}, busOpts...)
	if err != nil {
		return nil, fmt.Errorf("alert bus: %w", err)
	}

	handlers := map[alert.Channel]queue.Handler{
		alert.ChannelEmail:    email.NewWorker(deps.EmailSender, log).Handler(),
		alert.ChannelPush:     push.NewWorker(deps.PushSender, deps.Tokens, log).Handler(),
		alert.ChannelWhatsApp: whatsapp.NewWorker(deps.WhatsAppSender, log).Handler(),
	}
	workers := make(map[alert.Channel]*queue.Worker, len(handlers))
	for channel, h := range handlers {
		opts := append(cfg.Queue.WorkerOptions(),
			queue.WithQueues(string(channel)),
			queue.WithWorkerLogger(log.With(logger.Channel(string(channel)))),
		)
		if deps.Observer != nil {
			opts = append(opts, queue.WithObserver(deps.Observer))
		}
		w, err := queue.NewWorker(deps.Storage, opts...)
		if err != nil {
			return nil, fmt.Errorf("%s worker: %w", channel, err)
		}
		if err := w.RegisterHandler(h); err != nil {
			return nil, fmt.Errorf("%s worker: %w", channel, err)
		}
		workers[channel] = w
	}

	janitor, err := queue.NewJanitor(deps.Storage,
		queue.WithJanitorInterval(cfg.Queue.JanitorInterval),
		queue.WithJanitorLogger(log))
	if err != nil {
		return nil, fmt.Errorf("janitor: %w", err)
	}
	retention := map[string]time.Duration{
		email.QueueName:    cfg.EmailRetention,
		push.QueueName:     cfg.PushRetention,
		whatsapp.QueueName: cfg.WhatsAppRetention,
	}
	sweeping := false
	for q, d := range retention {
		if d <= 0 {
			continue
		}
		if err := janitor.SetRetention(q, d); err != nil {
			return nil, fmt.Errorf("janitor: %w", err)
		}
		sweeping = true
	}

	return &Notifier{
		bus:      bus,
		storage:  deps.Storage,
		tokens:   deps.Tokens,
		workers:  workers,
		janitor:  janitor,
		sweeping: sweeping,
		logger:   log.With(logger.Component("notifier")),
	}, nil
}

// Bus returns the alert bus event producers publish to
func (n *Notifier) Bus() *alert.Bus { return n.bus }

// DeadLetters exposes dead letter inspection and requeueing
func (n *Notifier) DeadLetters() queue.DeadLetterRepository { return n.storage }

// Tokens returns the push token store
func (n *Notifier) Tokens() push.TokenStore { return n.tokens }

// PublishEvent validates and publishes one event
func (n *Notifier) PublishEvent(ctx context.Context, eventType string, channels []string, data map[string]any) error {
	return n.bus.PublishEvent(ctx, eventType, channels, data)
}

// Run starts the channel workers and the janitor and blocks until ctx is
// cancelled. Workers finish their in-flight tasks before Run returns.
func (n *Notifier) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range n.workers {
		g.Go(w.Run(ctx))
	}

	// the janitor refuses to start without a retention rule
	if n.sweeping {
		g.Go(n.janitor.Run(ctx))
	}

	n.logger.InfoContext(ctx, "notifier running", slog.Int("workers", len(n.workers)))
	return g.Wait()
}

// Close stops accepting events and waits for in-flight bus dispatches.
// Call it before cancelling Run so accepted events still reach their queues.
func (n *Notifier) Close(ctx context.Context) error {
	return n.bus.Close(ctx)
}
