package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/gym-membership-api/internal/config"
)

// limiterKey builds the counter key for one client in one window.
// The window number changes every cfg.Window, so the counter key
// rotates and expired keys vanish with their TTL.
func limiterKey(prefix, ip string, window time.Duration, now time.Time) string {
	return fmt.Sprintf("%s:%s:%d", prefix, ip, now.UnixMilli()/window.Milliseconds())
}

// NewRateLimit returns a fixed-window limiter backed by Redis. Each
// client IP gets cfg.Limit requests per cfg.Window; the counter lives
// in a single INCR-ed key that expires with the window. The limiter
// runs before authentication, so the key is IP-based only. When Redis
// is unavailable the middleware lets requests through rather than
// failing closed.
func NewRateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := limiterKey(cfg.Prefix, ip, cfg.Window, time.Now())

			ctx := c.Request().Context()
			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c) // fail open on Redis errors
			}
			if n == 1 {
				rdb.Expire(ctx, key, cfg.Window)
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				retry := int(cfg.Window/time.Second) + 1
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": retry,
				})
			}
			return next(c)
		}
	}
}
