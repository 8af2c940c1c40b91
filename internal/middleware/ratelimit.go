package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/optitask/internal/config"
)

// takeToken refills the caller's bucket by whole intervals, then takes one
// token. KEYS[1] is the bucket; ARGV is now_ms, capacity, refill, every_ms,
// ttl_s. It returns {allowed, tokens_left, wait_ms}.
var takeToken = redis.NewScript(`
local now, capacity, refill, every, ttl =
	tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])

local bucket = redis.call('HMGET', KEYS[1], 'tokens', 'at')
local tokens, at = tonumber(bucket[1]), tonumber(bucket[2])
if not tokens or not at then
	tokens, at = capacity, now
end

local steps = math.floor(math.max(0, now - at) / every)
if steps > 0 then
	tokens = math.min(capacity, tokens + steps * refill)
	at = at + steps * every
end

local allowed, wait = 0, 0
if tokens > 0 then
	allowed, tokens = 1, tokens - 1
else
	wait = math.max(0, every - (now - at))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'at', at)
redis.call('EXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// verdict is the outcome of taking one token.
type verdict struct {
	allowed bool
	left    int64
	wait    time.Duration
}

type tokenBucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
}

func (b tokenBucket) take(ctx context.Context, key string) (verdict, error) {
	res, err := takeToken.Run(ctx, b.rdb, []string{key},
		time.Now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return verdict{}, err
	}
	if len(res) != 3 {
		return verdict{}, redis.Nil
	}
	return verdict{allowed: res[0] == 1, left: res[1], wait: time.Duration(res[2]) * time.Millisecond}, nil
}

// NewTokenBucket limits each caller with a token bucket kept in Redis. It
// runs after Identity, so buckets are per user, optionally split by route.
// It is a no-op when disabled or when rdb is nil, and it lets requests
// through whenever Redis fails.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	b := tokenBucket{cfg: cfg, rdb: rdb}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := bucketKey(cfg, c)
			v, err := b.take(c.Request().Context(), key)
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("rate limit bucket %s unavailable: %v", key, err)
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.left, 10))
			if !v.allowed {
				h.Set("Retry-After", strconv.Itoa(retryAfterSeconds(v.wait)))
				if cfg.Debug {
					c.Logger().Infof("rate limited %s for %s", key, v.wait)
				}
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded. Try again later.")
			}
			return next(c)
		}
	}
}

// retryAfterSeconds rounds a wait up to whole seconds.
func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// bucketKey is prefix:user, plus the route template under the user_route
// scope. Requests without an identity share the "anon" bucket.
func bucketKey(cfg config.RateLimitConfig, c echo.Context) string {
	user := "anon"
	if id, ok := UserID(c); ok {
		user = id.String()
	}
	key := cfg.Prefix + ":" + user
	if cfg.KeyStrategy == config.RateKeyUserRoute {
		key += ":" + c.Request().Method + " " + c.Path()
	}
	return key
}
