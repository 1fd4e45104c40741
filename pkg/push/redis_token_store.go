package push

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenStore keeps a set of active tokens per user and a hash per token
// holding its owner, platform and state.
type RedisTokenStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisTokenStore creates a store writing keys under prefix
func NewRedisTokenStore(client redis.UniversalClient, prefix string) *RedisTokenStore {
	if prefix == "" {
		prefix = "alertkit"
	}
	return &RedisTokenStore{client: client, prefix: prefix}
}

func (s *RedisTokenStore) userKey(userID string) string {
	return fmt.Sprintf("%s:push:user:%s", s.prefix, userID)
}

func (s *RedisTokenStore) tokenKey(token string) string {
	return fmt.Sprintf("%s:push:token:%s", s.prefix, token)
}

// GetActiveTokens returns the user's active tokens, sorted
func (s *RedisTokenStore) GetActiveTokens(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	tokens, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get tokens of user %s: %w", userID, err)
	}
	slices.Sort(tokens)
	return tokens, nil
}

// RegisterToken stores or reactivates a token, moving it away from a previous owner
func (s *RedisTokenStore) RegisterToken(ctx context.Context, userID, token string, platform Platform) error {
	if err := validateRegistration(userID, token, platform); err != nil {
		return err
	}

	previous, err := s.owner(ctx, token)
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if previous != "" && previous != userID {
			pipe.SRem(ctx, s.userKey(previous), token)
		}
		pipe.HSet(ctx, s.tokenKey(token),
			"user_id", userID,
			"platform", string(platform),
			"active", "1",
			"updated_at", time.Now().UTC().Format(time.RFC3339),
		)
		pipe.SAdd(ctx, s.userKey(userID), token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("register token: %w", err)
	}
	return nil
}

// DeactivateToken removes the token from its owner's active set
func (s *RedisTokenStore) DeactivateToken(ctx context.Context, token string) error {
	userID, err := s.owner(ctx, token)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.tokenKey(token),
			"active", "0",
			"updated_at", time.Now().UTC().Format(time.RFC3339),
		)
		pipe.SRem(ctx, s.userKey(userID), token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deactivate token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) owner(ctx context.Context, token string) (string, error) {
	userID, err := s.client.HGet(ctx, s.tokenKey(token), "user_id").Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup token owner: %w", err)
	}
	return userID, nil
}
