// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/corven-io/corven/internal/platform/constants"
)

// AttemptStore tracks failed login attempts per username.
type AttemptStore interface {
	// Record increments the failure count and returns the new total. The
	// first failure in a window arms the expiry.
	Record(ctx context.Context, username string, window time.Duration) (int, error)

	// Count returns the current failure count, zero when the window expired.
	Count(ctx context.Context, username string) (int, error)

	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, username string) error
}

// RedisAttemptStore implements [AttemptStore] on Redis with one counter
// key per username and a sliding expiry on the first failure.
type RedisAttemptStore struct {
	client *redis.Client
}

// NewRedisAttemptStore creates a Redis-backed login attempt counter.
func NewRedisAttemptStore(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{client: client}
}

func attemptKey(username string) string {
	return constants.RedisPrefixLoginAttempts + username
}

func (store *RedisAttemptStore) Record(ctx context.Context, username string, window time.Duration) (int, error) {
	key := attemptKey(username)

	count, err := store.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_login_attempt_incr_failed: %w", err)
	}

	if count == 1 {
		if err := store.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("redis_login_attempt_expire_failed: %w", err)
		}
	}

	return int(count), nil
}

func (store *RedisAttemptStore) Count(ctx context.Context, username string) (int, error) {
	count, err := store.client.Get(ctx, attemptKey(username)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis_login_attempt_get_failed: %w", err)
	}
	return count, nil
}

func (store *RedisAttemptStore) Reset(ctx context.Context, username string) error {
	if err := store.client.Del(ctx, attemptKey(username)).Err(); err != nil {
		return fmt.Errorf("redis_login_attempt_del_failed: %w", err)
	}
	return nil
}
