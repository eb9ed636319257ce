// Package config loads process configuration from the environment
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/KirkDiggler/spell-planner/internal/errors"
)

// Store backends
const (
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config is the full planner configuration
type Config struct {
	Catalog CatalogConfig `envPrefix:"CATALOG_"`
	Store   StoreConfig   `envPrefix:"STORE_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	Server  ServerConfig  `envPrefix:"SERVER_"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// CatalogConfig selects where class catalogs come from
type CatalogConfig struct {
	// BaseURL serves <class>.json; Dir is used when BaseURL is empty
	BaseURL string        `env:"BASE_URL"`
	Dir     string        `env:"DIR" envDefault:"assets"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Classes []string      `env:"CLASSES" envSeparator:","`
}

// StoreConfig selects the character store backend
type StoreConfig struct {
	Backend    string `env:"BACKEND" envDefault:"sqlite"`
	Key        string `env:"KEY" envDefault:"eq2-spell-planner-data"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"spell-planner.db"`
}

// RedisConfig holds connection settings for the redis backend
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	UseTLS   bool   `env:"TLS"`
}

// ServerConfig holds listener ports
type ServerConfig struct {
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`
	GRPCPort int `env:"GRPC_PORT" envDefault:"50051"`
}

// Load reads an optional .env file and parses PLANNER_ prefixed variables
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "PLANNER_"}); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("store.backend", c.Store.Backend, []string{StoreRedis, StoreSQLite, StoreMemory}, vb)
	errors.ValidateRequired("store.key", c.Store.Key, vb)
	if c.Catalog.BaseURL == "" && c.Catalog.Dir == "" {
		vb.Field("catalog", "base url or directory is required")
	}
	if c.Catalog.Timeout <= 0 {
		vb.Field("catalog.timeout", "must be positive")
	}
	errors.ValidateRange("server.http_port", c.Server.HTTPPort, 1, 65535, vb)
	errors.ValidateRange("server.grpc_port", c.Server.GRPCPort, 0, 65535, vb)
	if _, ok := parseLevel(c.LogLevel); !ok {
		vb.Fieldf("log_level", "unknown level %q", c.LogLevel)
	}
	return vb.Build()
}

// SlogLevel returns the configured log level
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, false
	}
	return level, true
}
