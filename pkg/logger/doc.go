// Package logger builds the service's *slog.Logger and keeps attribute names
// consistent across packages.
//
//	log, err := logger.FromConfig(cfg)
//	if err != nil {
//	    return err
//	}
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "job enqueued",
//	    logger.Channel("email"),
//	    logger.TaskID(id),
//	)
//
// Helpers such as Error and UserID return an empty attribute for zero input,
// so callers can pass them without a nil check.
package logger
