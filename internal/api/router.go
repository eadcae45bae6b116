// Package api assembles the HTTP routers for the user and order services.
// Each service builds its own authorization guard from the shared secret and
// re-verifies every bearer token it receives, whether or not the gateway
// already checked it.
package api

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/orderhub/platform/internal/api/handler"
	"github.com/orderhub/platform/internal/api/middleware"
	"github.com/orderhub/platform/internal/auth"
	"github.com/orderhub/platform/internal/core/domain"
	"github.com/orderhub/platform/internal/core/service"
	"github.com/orderhub/platform/internal/infrastructure/db/postgres"
)

// NewUserRouter builds the Echo instance for the user service.
func NewUserRouter(pool *pgxpool.Pool, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := newEcho("user_service", log)

	// --- Dependencies ---
	tokens := auth.NewService(jwtSecret)
	userRepo := postgres.NewUserRepository(pool)
	userService := service.NewUserService(userRepo, tokens, log)
	userHandler := handler.NewUserHandler(userService)
	guard := middleware.Auth(tokens)

	// --- Routes ---
	users := e.Group("/v1/users")
	users.POST("/register", userHandler.Register)
	users.POST("/login", userHandler.Login)
	users.GET("/me", userHandler.Me, guard)
	users.PATCH("/me", userHandler.UpdateMe, guard)
	users.GET("", userHandler.List, guard, middleware.RequireRoles(domain.RoleAdmin))

	registerHealth(e, pool)
	return e
}

// NewOrderRouter builds the Echo instance for the order service.
func NewOrderRouter(pool *pgxpool.Pool, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := newEcho("order_service", log)

	// --- Dependencies ---
	tokens := auth.NewService(jwtSecret)
	orderRepo := postgres.NewOrderRepository(pool)
	orderService := service.NewOrderService(orderRepo, log)
	orderHandler := handler.NewOrderHandler(orderService)
	guard := middleware.Auth(tokens)

	// --- Routes (all protected) ---
	orders := e.Group("/v1/orders", guard)
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.PATCH("/:id", orderHandler.UpdateStatus)

	registerHealth(e, pool)
	return e
}

func newEcho(subsystem string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware(subsystem))

	e.GET("/metrics", echoprometheus.NewHandler())
	return e
}

func registerHealth(e *echo.Echo, pool *pgxpool.Pool) {
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(pool)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – is the store up?
}
