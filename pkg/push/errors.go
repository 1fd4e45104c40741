package push

import "errors"

var (
	// ErrNoActiveTokens is returned by Queue.Enqueue when the user has no device to notify
	ErrNoActiveTokens = errors.New("push: no active device tokens")

	// ErrInvalidToken is returned by a Sender when the provider rejected the
	// device token itself. The worker deactivates such tokens.
	ErrInvalidToken = errors.New("push: invalid device token")

	ErrMissingUserID   = errors.New("push: user id is required")
	ErrMissingToken    = errors.New("push: device token is required")
	ErrInvalidPlatform = errors.New("push: invalid platform")
	ErrTokenNotFound   = errors.New("push: token not found")
	ErrNotConfigured   = errors.New("push: provider not configured")
	ErrUnknownProvider = errors.New("push: unknown provider")
	ErrSendFailed      = errors.New("push: send failed")
)
