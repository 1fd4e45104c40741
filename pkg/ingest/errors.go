package ingest

import "errors"

var (
	ErrNotConfigured  = errors.New("ingest: kafka brokers, topic and group id are required")
	ErrInvalidMessage = errors.New("ingest: invalid alert message")
	ErrPublish        = errors.New("ingest: failed to publish alert message")
)
