// Package config reads the service settings from the environment, loading a
// .env file first when one is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends accepted in STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds every setting the service needs at startup.
type Config struct {
	HTTPAddr       string
	Env            string
	StoreBackend   string
	StorePath      string
	StoreKeyPrefix string
	RedisAddr      string
	DatabaseURL    string
	CORSOrigins    []string
}

// Load reads the configuration. files are optional .env files; a missing
// file is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Config{
		HTTPAddr:       envOr("HTTP_ADDR", ":8081"),
		Env:            envOr("APP_ENV", "production"),
		StoreBackend:   strings.ToLower(envOr("STORE_BACKEND", BackendFile)),
		StorePath:      envOr("STORE_PATH", "./data"),
		StoreKeyPrefix: os.Getenv("STORE_KEY_PREFIX"),
		RedisAddr:      envOr("REDIS_ADDRESS", "localhost:6379"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CORSOrigins:    splitList(envOr("CORS_ORIGINS", "*")),
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendFile, BackendRedis:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for the %s store backend", BackendPostgres)
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	return cfg, nil
}

// Development reports whether APP_ENV asks for development behaviour.
func (c Config) Development() bool {
	return c.Env == "development"
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
