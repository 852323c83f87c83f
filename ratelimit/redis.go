package ratelimit

import (
	"context"
	"fmt"
	"time"

	"findata-mcp/internal/apperr"
	"findata-mcp/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript runs prune, count and append atomically on the server.
// Scores are unix microseconds. Returns {admitted, retry_after_us}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local budget = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= budget then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	return {0, tonumber(oldest[2]) + window - now}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, ARGV[5])
return {1, 0}
`)

// Redis is a sliding window limiter shared by every replica pointed at the
// same Redis. Keys expire after one idle window.
type Redis struct {
	cfg    Config
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis-backed limiter
func NewRedis(client redis.UniversalClient, cfg Config) (*Redis, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Redis{cfg: cfg, client: client, prefix: "findata:ratelimit:"}, nil
}

// NewRedisFromURL parses a redis:// URL and pings the server
func NewRedisFromURL(ctx context.Context, url string, cfg Config) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}
	return NewRedis(client, cfg)
}

// Admit runs the window script for key. A Redis failure is reported as an
// UpstreamError so the call is refused rather than silently unmetered.
func (r *Redis) Admit(ctx context.Context, key string, now time.Time) error {
	nowUs := now.UnixMicro()
	windowUs := r.cfg.Window.Microseconds()
	ttlMs := max(r.cfg.Window.Milliseconds(), 1)
	member := fmt.Sprintf("%d-%s", nowUs, uuid.NewString())

	res, err := slidingWindowScript.Run(ctx, r.client, []string{r.prefix + key},
		nowUs, windowUs, r.cfg.Budget, member, ttlMs).Int64Slice()
	if err != nil {
		observability.WithError(err).Error("rate limit script failed", "key", key)
		return apperr.Upstream(fmt.Errorf("rate limit backend: %w", err))
	}
	if len(res) != 2 {
		return apperr.Upstream(fmt.Errorf("rate limit backend: unexpected reply %v", res))
	}
	if res[0] == 1 {
		return nil
	}

	observability.GetMetrics().RecordRateLimitRejection("redis")
	return &apperr.RateLimitError{RetryAfter: time.Duration(res[1]) * time.Microsecond}
}

// Close closes the underlying client
func (r *Redis) Close() error {
	return r.client.Close()
}
