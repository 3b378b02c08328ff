// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/constants"
)

// # Login Throttle

// RedisThrottle implements [Throttle] with one expiring counter per key.
type RedisThrottle struct {
	client      redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

// NewRedisThrottle creates a Redis-backed [Throttle].
func NewRedisThrottle(client redis.UniversalClient, maxAttempts int, window time.Duration) *RedisThrottle {
	return &RedisThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

/*
Check reports whether key has used up its attempts.

Returns:
  - error: apperr.RateLimited with the remaining lockout, or connectivity errors
*/
func (throttle *RedisThrottle) Check(context context.Context, key string) error {
	redisKey := constants.RedisPrefixLoginAttempts + key

	attempts, err := throttle.client.Get(context, redisKey).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis_login_attempts_get_failed: %w", err)
	}

	if attempts < throttle.maxAttempts {
		return nil
	}

	remaining, err := throttle.client.TTL(context, redisKey).Result()
	if err != nil {
		return fmt.Errorf("redis_login_attempts_ttl_failed: %w", err)
	}
	return apperr.RateLimited(retryAfter(remaining, throttle.window))
}

/*
RecordFailure increments the counter for key.

Description: The window starts at the first failure and is not extended by
later ones.
*/
func (throttle *RedisThrottle) RecordFailure(context context.Context, key string) error {
	redisKey := constants.RedisPrefixLoginAttempts + key

	_, err := throttle.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Incr(context, redisKey)
		pipe.ExpireNX(context, redisKey, throttle.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_login_attempts_incr_failed: %w", err)
	}
	return nil
}

// Reset removes the counter for key.
func (throttle *RedisThrottle) Reset(context context.Context, key string) error {
	if err := throttle.client.Del(context, constants.RedisPrefixLoginAttempts+key).Err(); err != nil {
		return fmt.Errorf("redis_login_attempts_delete_failed: %w", err)
	}
	return nil
}

// retryAfter converts a key TTL into whole seconds. Keys without an expiry
// (-1) or already gone (-2) fall back to the full window.
func retryAfter(remaining, window time.Duration) int {
	if remaining <= 0 {
		remaining = window
	}
	seconds := int((remaining + time.Second - 1) / time.Second)
	return max(seconds, 1)
}
