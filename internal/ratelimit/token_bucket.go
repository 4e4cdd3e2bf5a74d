package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
  ts = now
else
  local delta = now - ts
  if delta < 0 then
    delta = 0
  end
  tokens = math.min(burst, tokens + (delta / 1000) * rate)
  ts = now
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HMSET", KEYS[1], "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", KEYS[1], ttl)

return {allowed, tostring(tokens)}
`

// TokenBucket is a redis-backed bucket shared by every replica.
type TokenBucket struct {
	client *redis.Client
	script *redis.Script
	rate   float64
	burst  int
}

func NewTokenBucket(client *redis.Client, rate float64, burst int) (*TokenBucket, error) {
	if client == nil {
		return nil, errors.New("rate limiter redis client is required")
	}
	if rate <= 0 || burst <= 0 {
		return nil, ErrInvalidLimit
	}
	return &TokenBucket{
		client: client,
		script: redis.NewScript(tokenBucketScript),
		rate:   rate,
		burst:  burst,
	}, nil
}

func (t *TokenBucket) Allow(ctx context.Context, key string) (Decision, error) {
	if key == "" {
		return Decision{}, ErrEmptyKey
	}

	res, err := t.script.Run(ctx, t.client, []string{keyPrefix + key},
		t.rate,
		t.burst,
		int64(bucketTTL(t.rate, t.burst)/time.Millisecond),
	).Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(res) < 2 {
		return Decision{}, errors.New("invalid rate limit script response")
	}

	allowed, _ := res[0].(int64)
	remaining := parseTokens(res[1])
	return decide(allowed == 1, remaining, t.rate), nil
}

func bucketTTL(rate float64, burst int) time.Duration {
	seconds := math.Ceil((float64(burst) / rate) * 2)
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

func parseTokens(v any) float64 {
	switch val := v.(type) {
	case int64:
		return float64(val)
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return 0
}
