package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// One sorted set per client, scored by request time in milliseconds.
// Returns {allowed, count, oldestMillis}.
var redisAdmitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local count = redis.call("ZCARD", key)
local allowed = 0
if count < limit then
  redis.call("ZADD", key, now, ARGV[4])
  redis.call("PEXPIRE", key, window)
  count = count + 1
  allowed = 1
end

local first = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
local oldest = 0
if first[2] then
  oldest = tonumber(first[2])
end
return {allowed, count, oldest}
`)

// RedisStore is a sliding-window store shared across gateway replicas.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore constructs a RedisStore. Keys are written as prefix:client.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: strings.TrimSpace(prefix),
	}
}

func (s *RedisStore) Admit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (StoreResult, error) {
	res, err := redisAdmitScript.Run(ctx, s.client, []string{s.buildKey(key)},
		now.UnixMilli(), window.Milliseconds(), limit, now.Format(time.RFC3339Nano)+"-"+uuid.NewString(),
	).Slice()
	if err != nil {
		return StoreResult{}, err
	}
	if len(res) != 3 {
		return StoreResult{}, errors.New("rate limit redis: unexpected response shape")
	}

	allowed, ok1 := res[0].(int64)
	count, ok2 := res[1].(int64)
	oldestMs, ok3 := res[2].(int64)
	if !ok1 || !ok2 || !ok3 {
		return StoreResult{}, errors.New("rate limit redis: unexpected response type")
	}

	result := StoreResult{
		Allowed: allowed == 1,
		Count:   int(count),
	}
	if oldestMs > 0 {
		result.Oldest = time.UnixMilli(oldestMs)
	}
	return result, nil
}

// Sweep is a no-op; every key carries an expiry equal to the window.
func (s *RedisStore) Sweep(context.Context, time.Duration, time.Time) (int, error) {
	return 0, nil
}

// Close is a no-op; the caller owns the client.
func (s *RedisStore) Close() error {
	return nil
}

func (s *RedisStore) buildKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}
