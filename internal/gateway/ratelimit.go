package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/orderhub/platform/internal/api/metrics"
	"github.com/orderhub/platform/internal/api/response"
)

// CounterStore increments a per-window request counter and returns the new
// count. The increment must be atomic across concurrent requests; keys expire
// after the window so stale counters do not accumulate.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitConfig configures the fixed-window rate limiter.
type RateLimitConfig struct {
	Store  CounterStore
	Limit  int           // max requests per caller per window
	Window time.Duration // fixed window length
	// Skipper bypasses the limiter (local routes like /health). Optional.
	Skipper func(echo.Context) bool
	Logger  zerolog.Logger
}

// RateLimit caps each caller, keyed by client address, to cfg.Limit requests
// per fixed window. Requests over the cap are rejected with 429 RATE_LIMITED
// before reaching routing logic. A counter-store failure fails open: the
// request proceeds and the error is logged.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			now := time.Now()
			windowStart := now.Truncate(cfg.Window)
			key := fmt.Sprintf("ratelimit:%s:%d", c.RealIP(), windowStart.Unix())

			count, err := cfg.Store.Incr(c.Request().Context(), key, cfg.Window)
			if err != nil {
				cfg.Logger.Warn().Err(err).Msg("rate limit counter unavailable, failing open")
				return next(c)
			}

			if count > int64(cfg.Limit) {
				metrics.GatewayRateLimitedTotal.Inc()
				retryAfter := windowStart.Add(cfg.Window).Sub(now)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				return response.NewError(http.StatusTooManyRequests, response.CodeRateLimited, "rate limit exceeded")
			}

			return next(c)
		}
	}
}
