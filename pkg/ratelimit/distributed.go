package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Limiter defines rate limiting behavior.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Remaining(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Config defines rate limiter configuration.
type Config struct {
	// Limit is the maximum number of requests allowed per window.
	Limit int64

	// Window is the sliding time window for the limit.
	Window time.Duration

	// KeyPrefix is prepended to all Redis keys.
	KeyPrefix string
}

// DistributedLimiter implements sliding-window rate limiting backed by
// a Redis sorted set, so limits hold across replicas.
type DistributedLimiter struct {
	redis  redis.UniversalClient
	config Config
	logger *zap.Logger
}

// NewDistributedLimiter creates a Redis-backed rate limiter.
func NewDistributedLimiter(client redis.UniversalClient, config Config, logger *zap.Logger) *DistributedLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "ratelimit"
	}
	return &DistributedLimiter{
		redis:  client,
		config: config,
		logger: logger,
	}
}

// Allow records one request for key and reports whether it fits the window.
func (l *DistributedLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.makeKey(key)
	now := time.Now()
	windowStart := now.Add(-l.config.Window)

	pipe := l.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCount(ctx, redisKey, fmt.Sprintf("%d", windowStart.UnixNano()), "+inf")
	pipe.ZAdd(ctx, redisKey, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, redisKey, l.config.Window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("Failed to execute rate limit pipeline",
			zap.Error(err),
			zap.String("key", key))
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	allowed := countCmd.Val() < l.config.Limit
	if !allowed {
		l.logger.Debug("Rate limit exceeded",
			zap.String("key", key),
			zap.Int64("current", countCmd.Val()),
			zap.Int64("limit", l.config.Limit))
	}
	return allowed, nil
}

// Remaining returns the quota still available for key in the current window.
func (l *DistributedLimiter) Remaining(ctx context.Context, key string) (int64, error) {
	redisKey := l.makeKey(key)
	windowStart := time.Now().Add(-l.config.Window)

	count, err := l.redis.ZCount(ctx, redisKey,
		fmt.Sprintf("%d", windowStart.UnixNano()), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get remaining quota: %w", err)
	}

	remaining := l.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Reset clears the recorded requests for key.
func (l *DistributedLimiter) Reset(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, l.makeKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}

func (l *DistributedLimiter) makeKey(key string) string {
	return fmt.Sprintf("%s:%s", l.config.KeyPrefix, key)
}

// PerUserLimiter creates a limiter keyed by authenticated user.
func PerUserLimiter(client redis.UniversalClient, limit int64, window time.Duration, logger *zap.Logger) *DistributedLimiter {
	return NewDistributedLimiter(client, Config{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "ratelimit:user",
	}, logger)
}

// PerIPLimiter creates a limiter keyed by client IP.
func PerIPLimiter(client redis.UniversalClient, limit int64, window time.Duration, logger *zap.Logger) *DistributedLimiter {
	return NewDistributedLimiter(client, Config{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "ratelimit:ip",
	}, logger)
}
