// Package events carries domain events from the API to the worker over a redis stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Type string

const (
	ReviewCreated    Type = "review.created"
	ReviewDeleted    Type = "review.deleted"
	ListingDeleted   Type = "listing.deleted"
	UserDeleted      Type = "user.deleted"
	RatingsReconcile Type = "ratings.reconcile"
)

type Event struct {
	Type       Type      `json:"type"`
	ListingID  string    `json:"listingId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// Values flattens ev into stream entry fields.
func (ev Event) Values() map[string]any {
	values := map[string]any{
		"type":       string(ev.Type),
		"occurredAt": ev.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if ev.ListingID != "" {
		values["listingId"] = ev.ListingID
	}
	if ev.UserID != "" {
		values["userId"] = ev.UserID
	}
	return values
}

// Decode rebuilds an event from stream entry fields.
func Decode(values map[string]interface{}) (Event, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return Event{}, err
	}
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("decode event: missing type")
	}
	return ev, nil
}

// RedisPublisher appends events to a stream with XADD.
type RedisPublisher struct {
	client *redis.Client
	stream string
	now    func() time.Time
}

func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream, now: time.Now}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = p.now()
	}
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: ev.Values(),
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

// InlinePublisher hands events straight to a handler in the caller's goroutine.
// It is used when no redis is configured.
type InlinePublisher struct {
	handler Handler
}

func NewInlinePublisher(h Handler) *InlinePublisher {
	return &InlinePublisher{handler: h}
}

func (p *InlinePublisher) Publish(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	return p.handler.Handle(ctx, ev)
}

// Recorder keeps published events in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
