package queue

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boma/internal/events"
	"boma/internal/ids"
)

type flakyHandler struct {
	mu       sync.Mutex
	failures int
	seen     []events.Event
}

func (h *flakyHandler) Handle(_ context.Context, ev events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failures > 0 {
		h.failures--
		return errors.New("transient")
	}
	h.seen = append(h.seen, ev)
	return nil
}

func (h *flakyHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("BOMA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BOMA_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestConsumerDeliversAndReclaims(t *testing.T) {
	client := testClient(t)
	stream := "boma:test:" + ids.New()
	t.Cleanup(func() { client.Del(context.Background(), stream) })

	handler := &flakyHandler{failures: 1}
	c := NewConsumer(client, stream, "g", "c1", 100*time.Millisecond, zerolog.Nop(), handler)
	c.block = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.EnsureGroup(ctx))
	require.NoError(t, c.EnsureGroup(ctx), "second create is a no-op")

	pub := events.NewRedisPublisher(client, stream)
	require.NoError(t, pub.Publish(ctx, events.Event{Type: events.ReviewCreated, ListingID: "l1"}))
	require.NoError(t, pub.Publish(ctx, events.Event{Type: events.ListingDeleted, ListingID: "l2"}))
	// Entries without a type are dropped, not retried.
	require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: map[string]any{"junk": "1"}}).Err())

	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	assert.Eventually(t, func() bool { return handler.count() == 2 }, 5*time.Second, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		summary, err := client.XPending(ctx, stream, "g").Result()
		return err == nil && summary.Count == 0
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
