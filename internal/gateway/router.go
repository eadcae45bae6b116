// Package gateway implements the API gateway: path classification,
// authorization, rate limiting, and request forwarding to the backend
// services.
//
// The gateway verifies bearer tokens on protected paths and forwards the
// caller's identity as X-User-* headers, but backends never rely on those
// alone: each service re-verifies the token itself. The gateway does not
// retry failed backend calls and does not cancel an in-flight backend call
// when the client disconnects.
package gateway

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"

	_ "github.com/orderhub/platform/docs"
	"github.com/orderhub/platform/internal/api"
	"github.com/orderhub/platform/internal/api/handler"
	"github.com/orderhub/platform/internal/api/metrics"
	"github.com/orderhub/platform/internal/api/middleware"
	"github.com/orderhub/platform/internal/api/response"
	"github.com/orderhub/platform/internal/auth"
	redisdb "github.com/orderhub/platform/internal/infrastructure/db/redis"
)

// Identity headers added to forwarded requests after a successful guard pass.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
	HeaderUserRoles = "X-User-Roles"
)

// publicPaths is the fixed allow-list of exact paths that bypass the
// authorization guard.
var publicPaths = map[string]struct{}{
	"/v1/users/register": {},
	"/v1/users/login":    {},
	"/health":            {},
}

// localPrefixes are served by the gateway itself and never forwarded.
var localPrefixes = []string{"/health", "/metrics", "/swagger"}

// Config carries the gateway's routing table and rate-limit policy.
type Config struct {
	UserServiceURL  *url.URL
	OrderServiceURL *url.URL
	RateLimit       int
	RateLimitWindow time.Duration
}

// NewRouter builds the gateway's Echo instance.
func NewRouter(cfg Config, jwtSecret string, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	// Reuse an inbound X-Request-ID or synthesize one, and mirror it onto
	// the outbound backend request so one id traces every hop.
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			c.Request().Header.Set(echo.HeaderXRequestID, id)
		},
	}))
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("gateway"))
	e.Use(RateLimit(RateLimitConfig{
		Store:   redisdb.NewCounterStore(rdb),
		Limit:   cfg.RateLimit,
		Window:  cfg.RateLimitWindow,
		Skipper: func(c echo.Context) bool { return isLocal(c.Request().URL.Path) },
		Logger:  log,
	}))

	// --- Local routes ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", readiness(rdb))
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Guarded forwarding ---
	tokens := auth.NewService(jwtSecret)
	guard := middleware.AuthWithConfig(middleware.AuthConfig{
		Verifier: tokens,
		Skipper:  func(c echo.Context) bool { return isPublic(c.Request().URL.Path) },
	})

	users := e.Group("/v1/users")
	users.Use(guard, forwardIdentity, proxyTo("users", cfg.UserServiceURL))

	orders := e.Group("/v1/orders")
	orders.Use(guard, forwardIdentity, proxyTo("orders", cfg.OrderServiceURL))

	return e
}

// isPublic reports whether a path bypasses the authorization guard.
func isPublic(path string) bool {
	_, ok := publicPaths[path]
	return ok
}

// isLocal reports whether a path is served by the gateway itself.
func isLocal(path string) bool {
	for _, prefix := range localPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// forwardIdentity strips any inbound identity headers and, when the guard
// attached an identity, re-adds them from the verified claims. Inbound
// X-User-* headers are never trusted.
func forwardIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Request().Header
		h.Del(HeaderUserID)
		h.Del(HeaderUserEmail)
		h.Del(HeaderUserRoles)

		if identity, ok := c.Get(middleware.IdentityKey).(auth.Identity); ok {
			h.Set(HeaderUserID, identity.UserID)
			h.Set(HeaderUserEmail, identity.Email)
			h.Set(HeaderUserRoles, strings.Join(identity.Roles, ","))
		}
		return next(c)
	}
}

// proxyTo forwards requests to a single backend, preserving method, path and
// headers. Backend failures surface as 502 UPSTREAM_ERROR; there are no
// retries and no circuit breaking.
func proxyTo(backend string, target *url.URL) echo.MiddlewareFunc {
	return echomiddleware.ProxyWithConfig(echomiddleware.ProxyConfig{
		Balancer: echomiddleware.NewRoundRobinBalancer([]*echomiddleware.ProxyTarget{
			{URL: target},
		}),
		ErrorHandler: func(c echo.Context, err error) error {
			metrics.GatewayUpstreamErrorsTotal.WithLabelValues(backend).Inc()
			return response.NewError(http.StatusBadGateway, response.CodeUpstreamError, "upstream request failed")
		},
	})
}

// readiness reports whether the rate-limit counter store is reachable.
func readiness(rdb *redis.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := rdb.Ping(c.Request().Context()).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
