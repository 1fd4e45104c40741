package notifier

import "errors"

var (
	ErrMissingStorage = errors.New("notifier: storage is required")
	ErrMissingSender  = errors.New("notifier: a sender is required for every channel")
	ErrMissingTokens  = errors.New("notifier: push token store is required")
)
