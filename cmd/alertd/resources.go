package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/alertkit/internal/db/migrations"
	"github.com/dmitrymomot/alertkit/pkg/config"
	"github.com/dmitrymomot/alertkit/pkg/httpserver"
	"github.com/dmitrymomot/alertkit/pkg/logger"
	"github.com/dmitrymomot/alertkit/pkg/notifier"
	"github.com/dmitrymomot/alertkit/pkg/pg"
	"github.com/dmitrymomot/alertkit/pkg/push"
	"github.com/dmitrymomot/alertkit/pkg/queue"
	redisconn "github.com/dmitrymomot/alertkit/pkg/redis"
)

// resources tracks opened connections and their readiness checks
type resources struct {
	checks  map[string]httpserver.CheckFunc
	closers []func() error
}

func (r *resources) addCheck(name string, check httpserver.CheckFunc) {
	if r.checks == nil {
		r.checks = make(map[string]httpserver.CheckFunc)
	}
	r.checks[name] = check
}

func (r *resources) close(log *slog.Logger) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			log.Error("close resource", logger.Error(err))
		}
	}
}

func (r *resources) openStorage(ctx context.Context, kind string, log *slog.Logger) (notifier.Storage, error) {
	switch kind {
	case "memory":
		log.Warn("using in-memory queue storage, tasks are lost on restart")
		storage := queue.NewMemoryStorage()
		r.closers = append(r.closers, storage.Close)
		return storage, nil
	case "postgres":
		cfg, err := config.Load[pg.Config]()
		if err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, func() error { pool.Close(); return nil })
		r.addCheck("postgres", pg.Healthcheck(pool))

		if err := pg.Migrate(ctx, pool, cfg, migrations.FS, log); err != nil {
			return nil, err
		}
		storage, err := queue.NewPostgresStorage(pool)
		if err != nil {
			return nil, err
		}
		return storage, nil
	default:
		return nil, fmt.Errorf("unknown QUEUE_STORAGE %q", kind)
	}
}

func (r *resources) openTokenStore(ctx context.Context, kind string) (push.TokenStore, error) {
	switch kind {
	case "memory":
		return push.NewMemoryTokenStore(), nil
	case "redis":
		cfg, err := config.Load[redisconn.Config]()
		if err != nil {
			return nil, err
		}
		client, err := redisconn.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, client.Close)
		r.addCheck("redis", redisconn.Healthcheck(client))
		return push.NewRedisTokenStore(client, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown PUSH_TOKEN_STORE %q", kind)
	}
}
