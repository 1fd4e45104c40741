package push_test

import (
	"context"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/alertkit/pkg/push"
)

// exerciseTokenStore runs the TokenStore contract against any implementation
func exerciseTokenStore(t *testing.T, store push.TokenStore) {
	t.Helper()
	ctx := context.Background()

	tokens, err := store.GetActiveTokens(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, tokens)

	require.NoError(t, store.RegisterToken(ctx, "u1", "tok-b", push.PlatformAndroid))
	require.NoError(t, store.RegisterToken(ctx, "u1", "tok-a", push.PlatformIOS))
	require.NoError(t, store.RegisterToken(ctx, "u1", "tok-a", push.PlatformIOS))

	tokens, err = store.GetActiveTokens(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-a", "tok-b"}, tokens)

	require.NoError(t, store.DeactivateToken(ctx, "tok-b"))
	tokens, err = store.GetActiveTokens(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-a"}, tokens)

	// registering again reactivates
	require.NoError(t, store.RegisterToken(ctx, "u1", "tok-b", push.PlatformAndroid))
	tokens, err = store.GetActiveTokens(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-a", "tok-b"}, tokens)

	// a token moves to its newest owner
	require.NoError(t, store.RegisterToken(ctx, "u2", "tok-a", push.PlatformWeb))
	tokens, err = store.GetActiveTokens(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-b"}, tokens)
	tokens, err = store.GetActiveTokens(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-a"}, tokens)

	assert.ErrorIs(t, store.DeactivateToken(ctx, "missing"), push.ErrTokenNotFound)
	assert.ErrorIs(t, store.RegisterToken(ctx, "", "tok", push.PlatformIOS), push.ErrMissingUserID)
	assert.ErrorIs(t, store.RegisterToken(ctx, "u1", " ", push.PlatformIOS), push.ErrMissingToken)
	assert.ErrorIs(t, store.RegisterToken(ctx, "u1", "tok", "blackberry"), push.ErrInvalidPlatform)
	_, err = store.GetActiveTokens(ctx, "")
	assert.ErrorIs(t, err, push.ErrMissingUserID)
}

func TestMemoryTokenStore(t *testing.T) {
	t.Parallel()

	store := push.NewMemoryTokenStore()
	exerciseTokenStore(t, store)

	tok, ok := store.Token("tok-a")
	require.True(t, ok)
	assert.Equal(t, "u2", tok.UserID)
	assert.Equal(t, push.PlatformWeb, tok.Platform)
}

func TestRedisTokenStore_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/15"
	}
	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)
	client := goredis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping integration test: Redis not available: %v", err)
	}

	prefix := "alertkit-test-" + t.Name()
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	})

	exerciseTokenStore(t, push.NewRedisTokenStore(client, prefix))
}

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	p, err := push.ParsePlatform(" Android ")
	require.NoError(t, err)
	assert.Equal(t, push.PlatformAndroid, p)

	_, err = push.ParsePlatform("symbian")
	assert.ErrorIs(t, err, push.ErrInvalidPlatform)
}
