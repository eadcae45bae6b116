// Package config loads service configuration from the environment. The JWT
// secret must be identical across the gateway and both backend services:
// they form one trust domain.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Postgres PostgresConfig
	Redis    RedisConfig
	Gateway  GatewayConfig
}

type PostgresConfig struct {
	URL string `env:"DATABASE_URL, default=postgres://localhost:5432/orderhub"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// GatewayConfig carries the static routing table and rate-limit policy.
// Backend URLs are external configuration; there is no service discovery.
type GatewayConfig struct {
	UserServiceURL  string        `env:"USER_SERVICE_URL,  default=http://localhost:8081"`
	OrderServiceURL string        `env:"ORDER_SERVICE_URL, default=http://localhost:8082"`
	RateLimit       int           `env:"RATE_LIMIT,        default=200"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW, default=60s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
