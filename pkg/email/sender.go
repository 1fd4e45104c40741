package email

import (
	"context"
	"fmt"
	"strings"
)

// NewSender builds the sender selected by cfg.Provider
func NewSender(ctx context.Context, cfg Config) (EmailSender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderPostmark:
		return NewPostmarkClient(cfg)
	case ProviderSMTP:
		if err := validateIdentity(cfg); err != nil {
			return nil, err
		}
		return NewSMTPSender(cfg), nil
	case ProviderSES:
		return NewSESSender(ctx, cfg)
	case ProviderDev, "":
		return NewDevSender(cfg.DevDir), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
