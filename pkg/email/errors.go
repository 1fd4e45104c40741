package email

import "errors"

var (
	ErrFailedToSendEmail = errors.New("email: failed to send email")
	ErrInvalidConfig     = errors.New("email: invalid config")
	ErrInvalidParams     = errors.New("email: invalid send params")
	ErrNotConfigured     = errors.New("email: provider not configured")
	ErrUnknownProvider   = errors.New("email: unknown provider")
	ErrUnknownTemplate   = errors.New("email: unknown template")
	ErrRenderTemplate    = errors.New("email: failed to render template")
)
