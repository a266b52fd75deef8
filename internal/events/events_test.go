package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesDecodeRoundTrip(t *testing.T) {
	ev := Event{
		Type:       ReviewCreated,
		ListingID:  "listing-1",
		OccurredAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	// Redis hands field values back as strings.
	values := map[string]interface{}{}
	for k, v := range ev.Values() {
		values[k] = v
	}
	assert.NotContains(t, values, "userId")

	got, err := Decode(values)
	require.NoError(t, err)
	assert.Equal(t, ev.Type, got.Type)
	assert.Equal(t, ev.ListingID, got.ListingID)
	assert.True(t, ev.OccurredAt.Equal(got.OccurredAt))
}

func TestDecodeRejectsMissingType(t *testing.T) {
	_, err := Decode(map[string]interface{}{"listingId": "x"})
	assert.Error(t, err)
}

type handlerFunc func(context.Context, Event) error

func (f handlerFunc) Handle(ctx context.Context, ev Event) error { return f(ctx, ev) }

func TestInlinePublisher(t *testing.T) {
	var got Event
	p := NewInlinePublisher(handlerFunc(func(_ context.Context, ev Event) error {
		got = ev
		return nil
	}))

	require.NoError(t, p.Publish(context.Background(), Event{Type: UserDeleted, UserID: "u1"}))
	assert.Equal(t, UserDeleted, got.Type)
	assert.Equal(t, "u1", got.UserID)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestRedisPublisher(t *testing.T) {
	addr := os.Getenv("BOMA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BOMA_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	stream := "boma:test:" + t.Name()
	t.Cleanup(func() { client.Del(context.Background(), stream) })

	p := NewRedisPublisher(client, stream)
	require.NoError(t, p.Publish(ctx, Event{Type: ListingDeleted, ListingID: "l1"}))

	msgs, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	ev, err := Decode(msgs[0].Values)
	require.NoError(t, err)
	assert.Equal(t, ListingDeleted, ev.Type)
	assert.Equal(t, "l1", ev.ListingID)
}
