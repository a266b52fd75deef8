package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed logins per key inside a fixed window.
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func throttleKey(key string) string {
	return "login:fail:" + key
}

func (t *LoginThrottle) Blocked(ctx context.Context, key string) (bool, error) {
	if t.maxAttempts <= 0 {
		return false, nil
	}
	n, err := t.client.Get(ctx, throttleKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle get: %w", err)
	}
	return n >= t.maxAttempts, nil
}

// RecordFailure increments the counter and starts the window on the first failure.
func (t *LoginThrottle) RecordFailure(ctx context.Context, key string) error {
	k := throttleKey(key)
	n, err := t.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("throttle incr: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, k, t.window).Err(); err != nil {
			return fmt.Errorf("throttle expire: %w", err)
		}
	}
	return nil
}

func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, throttleKey(key)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}
