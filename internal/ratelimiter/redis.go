package ratelimiter

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares rate-limit counters across server instances using a
// simple INCR-then-EXPIRE fixed window per (key, kind), grounded on the same
// atomic-script-for-multi-step-mutation approach used by internal/queue.
type RedisLimiter struct {
	rdb    *redis.Client
	prefix string
	bounds map[Kind]Bound
	sha    string
}

const incrWithExpiryLua = `
local key, ttlMs = KEYS[1], tonumber(ARGV[1])
local n = redis.call('INCR', key)
if n == 1 then
	redis.call('PEXPIRE', key, ttlMs)
end
return n
`

// NewRedisLimiter creates a RedisLimiter and preloads its counting script.
func NewRedisLimiter(ctx context.Context, rdb *redis.Client, keyPrefix string, bounds map[Kind]Bound) (*RedisLimiter, error) {
	if bounds == nil {
		bounds = DefaultBounds
	}
	sha, err := rdb.ScriptLoad(ctx, incrWithExpiryLua).Result()
	if err != nil {
		return nil, fmt.Errorf("ratelimiter: load script: %w", err)
	}
	return &RedisLimiter{rdb: rdb, prefix: keyPrefix, bounds: bounds, sha: sha}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, kind Kind) (bool, error) {
	bound, ok := l.bounds[kind]
	if !ok {
		return true, nil
	}

	redisKey := fmt.Sprintf("%sratelimit:%s:%s", l.prefix, kind, key)
	n, err := l.rdb.EvalSha(ctx, l.sha, []string{redisKey}, bound.Window).Int()
	if err != nil {
		return false, fmt.Errorf("ratelimiter: incr: %w", err)
	}
	return n <= bound.N, nil
}
