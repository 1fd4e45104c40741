package queue

import (
	"log/slog"
	"time"
)

// JanitorOption is a functional option for configuring a janitor
type JanitorOption func(*janitorOptions)

type janitorOptions struct {
	interval time.Duration
	logger   *slog.Logger
}

// WithJanitorInterval sets how often the janitor sweeps
func WithJanitorInterval(d time.Duration) JanitorOption {
	return func(o *janitorOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithJanitorLogger sets the logger for the janitor
func WithJanitorLogger(logger *slog.Logger) JanitorOption {
	return func(o *janitorOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
