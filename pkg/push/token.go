package push

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Platform is the device family a token belongs to
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
)

// ParsePlatform validates a platform name
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformAndroid, PlatformIOS, PlatformWeb:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPlatform, s)
	}
}

// DeviceToken is a registered device
type DeviceToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Platform  Platform  `json:"platform"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenStore keeps the device tokens of every user.
// A token belongs to at most one user; registering it again moves it.
type TokenStore interface {
	GetActiveTokens(ctx context.Context, userID string) ([]string, error)
	RegisterToken(ctx context.Context, userID, token string, platform Platform) error
	DeactivateToken(ctx context.Context, token string) error
}

func validateRegistration(userID, token string, platform Platform) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUserID
	}
	if strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}
	_, err := ParsePlatform(string(platform))
	return err
}
