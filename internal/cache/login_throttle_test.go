package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boma/internal/config"
	"boma/internal/ids"
)

func TestLoginThrottle(t *testing.T) {
	addr := os.Getenv("BOMA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BOMA_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr})
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	throttle := NewLoginThrottle(client, 3, time.Minute)
	key := "user-" + ids.New() + "@example.com"
	t.Cleanup(func() { _ = throttle.Reset(context.Background(), key) })

	for i := 0; i < 3; i++ {
		blocked, err := throttle.Blocked(ctx, key)
		require.NoError(t, err)
		assert.False(t, blocked, "attempt %d", i)
		require.NoError(t, throttle.RecordFailure(ctx, key))
	}

	blocked, err := throttle.Blocked(ctx, key)
	require.NoError(t, err)
	assert.True(t, blocked)

	ttl, err := client.TTL(ctx, throttleKey(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, throttle.Reset(ctx, key))
	blocked, err = throttle.Blocked(ctx, key)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestLoginThrottleDisabled(t *testing.T) {
	throttle := NewLoginThrottle(nil, 0, time.Minute)
	blocked, err := throttle.Blocked(context.Background(), "anyone")
	require.NoError(t, err)
	assert.False(t, blocked)
}
