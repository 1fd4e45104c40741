// Package pg bootstraps the PostgreSQL layer used by the durable queue storage:
// a retrying pgx pool constructor, goose migrations served from an fs.FS and a
// readiness probe.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, migrations.FS, slog.Default()); err != nil {
//	    return err
//	}
package pg
