package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter throttles calculate-total calls per client using a Redis sorted
// set per key: one member per request, scored by nanosecond timestamp, so
// the window slides instead of resetting on a fixed boundary. All API
// replicas share the same Redis, so the limit is global.
type Limiter struct {
	Client *redis.Client
	Prefix string
}

// Allow records a request under key and reports whether it fits inside the
// window. A zero-value Limiter, or a non-positive window or max, disables
// throttling and lets everything through.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error) {
	if l.Client == nil || max <= 0 || window <= 0 {
		return true, max, time.Now().Add(window), nil
	}

	now := time.Now()
	reset = now.Add(window)
	windowStart := strconv.FormatInt(now.Add(-window).UnixNano(), 10)
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()

	setKey := l.Prefix + key
	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, setKey, "0", windowStart)
	pipe.ZAdd(ctx, setKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(ctx, setKey)
	// The set expires with its newest member, keeping idle clients out of
	// Redis memory.
	pipe.Expire(ctx, setKey, window)
	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, reset, err
	}

	used := int(count.Val())
	remaining = max - used
	if remaining < 0 {
		remaining = 0
	}
	return used <= max, remaining, reset, nil
}
