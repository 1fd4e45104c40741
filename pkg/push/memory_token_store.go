package push

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryTokenStore is an in-memory TokenStore for development and tests
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]DeviceToken
}

// NewMemoryTokenStore creates an empty store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]DeviceToken)}
}

// GetActiveTokens returns the user's active tokens, sorted
func (s *MemoryTokenStore) GetActiveTokens(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, t := range s.tokens {
		if t.UserID == userID && t.Active {
			out = append(out, t.Token)
		}
	}
	slices.Sort(out)
	return out, nil
}

// RegisterToken stores or reactivates a token for the user
func (s *MemoryTokenStore) RegisterToken(ctx context.Context, userID, token string, platform Platform) error {
	if err := validateRegistration(userID, token, platform); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = DeviceToken{
		Token:     token,
		UserID:    userID,
		Platform:  platform,
		Active:    true,
		UpdatedAt: time.Now(),
	}
	return nil
}

// DeactivateToken marks the token inactive. Unknown tokens return ErrTokenNotFound.
func (s *MemoryTokenStore) DeactivateToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok {
		return ErrTokenNotFound
	}
	t.Active = false
	t.UpdatedAt = time.Now()
	s.tokens[token] = t
	return nil
}

// Token returns a stored token, active or not
func (s *MemoryTokenStore) Token(token string) (DeviceToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[token]
	return t, ok
}
