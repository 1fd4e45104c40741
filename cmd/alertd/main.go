// Command alertd runs the alert pipeline: channel workers, the ops HTTP API
// and, when KAFKA_BROKERS is set, the Kafka ingestion consumer.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/alertkit/pkg/api"
	"github.com/dmitrymomot/alertkit/pkg/config"
	"github.com/dmitrymomot/alertkit/pkg/httpserver"
	"github.com/dmitrymomot/alertkit/pkg/ingest"
	"github.com/dmitrymomot/alertkit/pkg/logger"
	"github.com/dmitrymomot/alertkit/pkg/metrics"
	"github.com/dmitrymomot/alertkit/pkg/notifier"
)

// drainTimeout bounds how long shutdown waits for in-flight bus dispatches
const drainTimeout = 10 * time.Second

type appConfig struct {
	// QueueStorage is "postgres" or "memory"
	QueueStorage string `env:"QUEUE_STORAGE" envDefault:"postgres"`
	// TokenStore is "redis" or "memory"
	TokenStore     string `env:"PUSH_TOKEN_STORE" envDefault:"redis"`
	RuntimeMetrics bool   `env:"METRICS_RUNTIME" envDefault:"true"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logCfg, err := config.Load[logger.Config]()
	if err != nil {
		slog.Error("load logger config", logger.Error(err))
		os.Exit(1)
	}
	log, err := logger.FromConfig(logCfg, logger.WithContextExtractors(api.RequestIDExtractor()))
	if err != nil {
		slog.Error("build logger", logger.Error(err))
		os.Exit(1)
	}
	logger.SetAsDefault(log)

	if err := run(ctx, log); err != nil {
		log.Error("alertd stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("alertd stopped")
}

func run(ctx context.Context, log *slog.Logger) error {
	app, err := config.Load[appConfig]()
	if err != nil {
		return err
	}
	notifierCfg, err := config.Load[notifier.Config]()
	if err != nil {
		return err
	}
	serverCfg, err := config.Load[httpserver.Config]()
	if err != nil {
		return err
	}
	ingestCfg, err := config.Load[ingest.Config]()
	if err != nil {
		return err
	}

	metricOpts := []metrics.Option{}
	if app.RuntimeMetrics {
		metricOpts = append(metricOpts, metrics.WithRuntimeMetrics())
	}
	collector, err := metrics.New(metricOpts...)
	if err != nil {
		return err
	}

	var res resources
	defer res.close(log)

	storage, err := res.openStorage(ctx, app.QueueStorage, log)
	if err != nil {
		return err
	}
	tokens, err := res.openTokenStore(ctx, app.TokenStore)
	if err != nil {
		return err
	}
	senders, err := buildSenders(ctx, collector, log)
	if err != nil {
		return err
	}

	n, err := notifier.New(notifier.Deps{
		Storage:        storage,
		Tokens:         tokens,
		EmailSender:    senders.email,
		PushSender:     senders.push,
		WhatsAppSender: senders.whatsapp,
		Observer:       collector,
		Logger:         log,
	}, notifierCfg)
	if err != nil {
		return err
	}

	router, err := api.NewRouter(api.Deps{
		Publisher:   n,
		Tokens:      n.Tokens(),
		DeadLetters: n.DeadLetters(),
		Metrics:     collector.Handler(),
		Checks:      res.checks,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	server := httpserver.NewFromConfig(serverCfg, httpserver.WithLogger(log))

	g, gctx := errgroup.WithContext(ctx)

	// Workers outlive gctx until the bus has drained, so events accepted
	// right before shutdown still reach their queues.
	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(gctx))
	defer stopWorkers()

	g.Go(func() error { return n.Run(workerCtx) })
	g.Go(func() error {
		<-gctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		err := n.Close(drainCtx)
		stopWorkers()
		return err
	})
	g.Go(func() error { return server.Run(gctx, router) })

	if ingestCfg.Enabled() {
		reader, err := ingest.NewReader(ingestCfg)
		if err != nil {
			return err
		}
		consumer := ingest.NewConsumer(reader, n.Bus(),
			ingest.WithLogger(log),
			ingest.WithObserver(collector))
		g.Go(func() error {
			defer func() { _ = consumer.Close() }()
			return consumer.Run(gctx)
		})
	} else {
		log.Info("kafka ingestion disabled, KAFKA_BROKERS is empty")
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
