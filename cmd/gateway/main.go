package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orderhub/platform/internal/gateway"
	"github.com/orderhub/platform/internal/infrastructure/config"
	redisdb "github.com/orderhub/platform/internal/infrastructure/db/redis"
	"github.com/orderhub/platform/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	userURL, err := url.Parse(cfg.Gateway.UserServiceURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid user service url")
	}
	orderURL, err := url.Parse(cfg.Gateway.OrderServiceURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid order service url")
	}

	ctx := context.Background()
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	e := gateway.NewRouter(gateway.Config{
		UserServiceURL:  userURL,
		OrderServiceURL: orderURL,
		RateLimit:       cfg.Gateway.RateLimit,
		RateLimitWindow: cfg.Gateway.RateLimitWindow,
	}, cfg.JWTSecret, rdb, log)

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("user_service", userURL.String()).
			Str("order_service", orderURL.String()).
			Msg("gateway starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("gateway shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
