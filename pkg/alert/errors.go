package alert

import "errors"

var (
	ErrNoRouters       = errors.New("alert: no routers registered")
	ErrDuplicateRouter = errors.New("alert: router already registered for channel")
	ErrUnknownChannel  = errors.New("alert: unknown channel")
	ErrEmptyEventType  = errors.New("alert: event type is required")
	ErrBusClosed       = errors.New("alert: bus is closed")
)
