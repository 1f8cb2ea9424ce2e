package middleware

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/rs/zerolog"

    "github.com/iliyamo/seating-designer/internal/config"
    "github.com/iliyamo/seating-designer/internal/logging"
)

// takeScript refills the bucket for whole elapsed intervals, then takes one
// token.  It returns {allowed, remaining, retry_after_ms}.
var takeScript = redis.NewScript(`
local capacity, refill, interval, now, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last = tonumber(redis.call('HGET', KEYS[1], 'last'))
if tokens == nil or last == nil then
    tokens, last = capacity, now
end
local steps = math.floor(math.max(0, now - last) / interval)
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    last = last + steps * interval
end
local allowed, wait = 0, 0
if tokens > 0 then
    allowed, tokens = 1, tokens - 1
else
    wait = math.max(0, interval - (now - last))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'last', last)
redis.call('PEXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// bucket is one limiter configuration bound to a Redis client.
type bucket struct {
    cfg config.RateLimitConfig
    rdb redis.Scripter
    log zerolog.Logger
}

// decision is the outcome of one take.
type decision struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

func (b *bucket) take(ctx context.Context, key string, now time.Time) (decision, error) {
    res, err := takeScript.Run(ctx, b.rdb, []string{key},
        b.cfg.Capacity,
        b.cfg.RefillTokens,
        b.cfg.RefillInterval.Milliseconds(),
        now.UnixMilli(),
        b.cfg.TTL.Milliseconds(),
    ).Int64Slice()
    if err != nil {
        return decision{}, err
    }
    if len(res) != 3 {
        return decision{}, redis.Nil
    }
    return decision{
        allowed:   res[0] == 1,
        remaining: res[1],
        retry:     time.Duration(res[2]) * time.Millisecond,
    }, nil
}

// NewTokenBucket returns a Redis-backed token bucket limiter.  The bucket
// is updated atomically by a Lua script so every server instance shares the
// same budget.  With the limiter disabled or no Redis the middleware is a
// no-op; Redis errors at request time let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return (&bucket{cfg: cfg, rdb: rdb, log: logging.Component("ratelimit")}).middleware()
}

// middleware answers 429 with Retry-After once the caller's bucket is empty.
func (b *bucket) middleware() echo.MiddlewareFunc {
    cfg := b.cfg
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            d, err := b.take(c.Request().Context(), key, time.Now())
            if err != nil {
                b.log.Warn().Err(err).Str("key", key).Msg("limiter unavailable")
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if d.allowed {
                return next(c)
            }

            secs := int((d.retry + time.Second - 1) / time.Second) // round up
            h.Set("Retry-After", strconv.Itoa(secs))
            if cfg.Debug {
                b.log.Info().Str("key", key).Dur("retry", d.retry).Msg("blocked")
            }
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "rate limit exceeded",
                "retry_after": secs,
            })
        }
    }
}

// buildRateKey composes the bucket key from the parts named by the
// strategy, e.g. "ip_user" keys on client address and subject.  Unknown
// strategies fall back to user_route.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    values := map[string]string{
        "ip":    ip,
        "user":  UserID(c),
        "route": c.Request().Method + " " + c.Path(),
    }

    strategy := strings.ToLower(cfg.KeyStrategy)
    var parts []string
    for _, name := range strings.Split(strategy, "_") {
        v, ok := values[name]
        if !ok {
            parts = nil
            break
        }
        parts = append(parts, name, v)
    }
    if len(parts) == 0 {
        parts = []string{"user", values["user"], "route", values["route"]}
    }
    return cfg.Prefix + ":" + strings.Join(parts, ":")
}
