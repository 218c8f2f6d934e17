package health

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisChecker probes Redis connectivity with a ping and a round-trip write.
type RedisChecker struct {
	client  redis.UniversalClient
	timeout time.Duration
}

// NewRedisChecker creates a Redis health checker.
func NewRedisChecker(client redis.UniversalClient, timeout time.Duration) *RedisChecker {
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	return &RedisChecker{client: client, timeout: timeout}
}

// Check pings Redis and verifies a SET/GET round trip.
func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return Unhealthy("redis", err).WithDuration(time.Since(start))
	}

	key := "__health_check__"
	value := time.Now().UnixNano()
	if err := c.client.Set(ctx, key, value, 10*time.Second).Err(); err != nil {
		return Unhealthy("redis", err).WithDuration(time.Since(start))
	}

	got, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		return Unhealthy("redis", err).WithDuration(time.Since(start))
	}
	if got != value {
		return Degraded("redis", "round-trip value mismatch").WithDuration(time.Since(start))
	}
	c.client.Del(ctx, key)

	return Healthy("redis", "connected").WithDuration(time.Since(start))
}

// Name returns the checker name.
func (c *RedisChecker) Name() string {
	return "redis"
}
