package middleware

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/exam-seat-allocation/internal/config"
)

// takeToken refills the bucket in whole intervals, then takes one token.
// Returns {allowed, remaining, retry_after_ms}.
var takeToken = redis.NewScript(`
local key      = KEYS[1]
local now      = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill   = tonumber(ARGV[3])
local every    = tonumber(ARGV[4])
local ttl      = tonumber(ARGV[5])

local st = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(st[1]) or capacity
local ts = tonumber(st[2]) or now

if every > 0 then
    local n = math.floor(math.max(0, now - ts) / every)
    if n > 0 then
        tokens = math.min(capacity, tokens + n * refill)
        ts = ts + n * every
    end
end

local allowed, wait = 0, 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    wait = math.max(0, every - (now - ts))
end

redis.call('HSET', key, 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', key, ttl)
return { allowed, tokens, wait }
`)

// Decision is the outcome of one token request.
type Decision struct {
    Allowed    bool
    Remaining  int64
    RetryAfter time.Duration
}

// TokenBucket is a Redis-backed bucket shared by every server instance.
type TokenBucket struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
}

// Take removes one token from the bucket stored under key.
func (b *TokenBucket) Take(ctx context.Context, key string, now time.Time) (Decision, error) {
    vals, err := takeToken.Run(ctx, b.rdb, []string{key},
        now.UnixMilli(),
        b.cfg.Capacity,
        b.cfg.RefillTokens,
        b.cfg.RefillInterval.Milliseconds(),
        int64(b.cfg.TTL/time.Second),
    ).Result()
    if err != nil {
        return Decision{}, err
    }
    return parseDecision(vals)
}

func parseDecision(vals interface{}) (Decision, error) {
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        return Decision{}, fmt.Errorf("unexpected script result %#v", vals)
    }
    return Decision{
        Allowed:    asInt64(arr[0]) == 1,
        Remaining:  asInt64(arr[1]),
        RetryAfter: time.Duration(asInt64(arr[2])) * time.Millisecond,
    }, nil
}

// NewTokenBucket limits seat lookups per client.  Redis errors fail open:
// a cache outage must not stop students from finding their rooms.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    bucket := &TokenBucket{cfg: cfg, rdb: rdb}

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            d, err := bucket.Take(c.Request().Context(), key, time.Now())
            if err != nil {
                if cfg.Debug {
                    c.Logger().Warnf("[ratelimit] key=%s: %v", key, err)
                }
                return next(c)
            }
            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if d.Allowed {
                return next(c)
            }
            secs := retrySeconds(d.RetryAfter)
            h.Set("Retry-After", strconv.Itoa(secs))
            return c.JSON(http.StatusTooManyRequests, map[string]any{
                "message":     "Too many lookups, try again shortly",
                "retry_after": secs,
            })
        }
    }
}

// retrySeconds rounds up so clients never retry before a token exists.
func retrySeconds(d time.Duration) int {
    if d <= 0 {
        return 0
    }
    return int((d + time.Second - 1) / time.Second)
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

// buildRateKey groups requests into buckets.  Lookups are anonymous, so the
// client IP is the main discriminator; admin callers are keyed by subject.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "route":
        parts = append(parts, "route", route)
    case "subject_route":
        parts = append(parts, "sub", currentSubject(c), "route", route)
    default: // "ip_route"
        parts = append(parts, "ip", ip, "route", route)
    }
    return strings.Join(parts, ":")
}

// currentSubject returns the authenticated subject set by AdminAuth/JWTAuth,
// or "anon".  JWT numeric claims arrive as float64, so any value is printed.
func currentSubject(c echo.Context) string {
    if v := c.Get("user_id"); v != nil {
        if s := fmt.Sprint(v); s != "" {
            return s
        }
    }
    return "anon"
}
