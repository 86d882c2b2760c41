package credstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copratrack/sessionkit/pkg/credstore"
)

// redisClient connects to the Redis instance named by CREDSTORE_REDIS_URL,
// skipping the test when the variable is unset.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()

	url := os.Getenv("CREDSTORE_REDIS_URL")
	if url == "" {
		t.Skip("CREDSTORE_REDIS_URL not set, skipping Redis integration test")
	}

	client, err := credstore.Connect(context.Background(), credstore.RedisConfig{
		ConnectionURL:  url,
		RetryAttempts:  1,
		RetryInterval:  time.Second,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedisStore(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	store := credstore.NewRedisStore(client, "sessionkit-test:")

	t.Run("absent key returns empty without error", func(t *testing.T) {
		value, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "auth.access_token", "T1"))

		value, err := store.Get(ctx, "auth.access_token")
		require.NoError(t, err)
		assert.Equal(t, "T1", value)

		require.NoError(t, store.Delete(ctx, "auth.access_token"))
		require.NoError(t, store.Delete(ctx, "auth.access_token"))

		value, err = store.Get(ctx, "auth.access_token")
		require.NoError(t, err)
		assert.Empty(t, value)
	})
}

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := credstore.Connect(context.Background(), credstore.RedisConfig{
		ConnectionURL:  "not-a-url",
		RetryAttempts:  1,
		RetryInterval:  time.Millisecond,
		ConnectTimeout: time.Second,
	})
	assert.ErrorIs(t, err, credstore.ErrFailedToParseRedisConnString)
}
