package whatsapp

import "errors"

var (
	ErrInvalidPhone    = errors.New("whatsapp: phone number cannot be normalized")
	ErrMissingTemplate = errors.New("whatsapp: template name is required")
	ErrNotConfigured   = errors.New("whatsapp: provider not configured")
	ErrUnknownProvider = errors.New("whatsapp: unknown provider")
	ErrSendFailed      = errors.New("whatsapp: failed to send template message")
)
