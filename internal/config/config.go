// Package config reads roam's settings from the environment, after an
// optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/naveenspark/roam/internal/kv"
)

// Config carries environment-driven settings for the client and the mock
// auth server.
type Config struct {
	// APIURL is the auth/API base URL. Empty selects the in-process mock.
	APIURL     string
	APITimeout time.Duration
	MockDelay  time.Duration

	Store kv.Options

	LogLevel  slog.Level
	LogFile   string
	TraceFile string

	AuthdAddr      string
	AuthdJWTSecret string
	AuthdJWTTTL    time.Duration
}

// UseMock reports whether no API URL is configured.
func (c Config) UseMock() bool {
	return c.APIURL == ""
}

// Load reads .env (if present) and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		APIURL:         strings.TrimRight(strings.TrimSpace(os.Getenv("ROAM_API_URL")), "/"),
		LogFile:        strings.TrimSpace(os.Getenv("ROAM_LOG_FILE")),
		TraceFile:      strings.TrimSpace(os.Getenv("ROAM_TRACE_FILE")),
		AuthdAddr:      envDefault("ROAM_AUTHD_ADDR", "127.0.0.1:8787"),
		AuthdJWTSecret: strings.TrimSpace(os.Getenv("ROAM_AUTHD_JWT_SECRET")),
		Store: kv.Options{
			Backend:     strings.ToLower(envDefault("ROAM_STORE", kv.BackendFile)),
			FilePath:    strings.TrimSpace(os.Getenv("ROAM_STORE_PATH")),
			SQLitePath:  strings.TrimSpace(os.Getenv("ROAM_SQLITE_PATH")),
			RedisAddr:   envDefault("ROAM_REDIS_ADDR", "localhost:6379"),
			RedisPrefix: envDefault("ROAM_REDIS_PREFIX", kv.DefaultRedisPrefix),
		},
	}

	var err error
	if cfg.APITimeout, err = durationEnv("ROAM_API_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MockDelay, err = durationEnv("ROAM_MOCK_DELAY", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.AuthdJWTTTL, err = durationEnv("ROAM_AUTHD_JWT_TTL", 15*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.APITimeout <= 0 {
		return Config{}, fmt.Errorf("ROAM_API_TIMEOUT must be positive")
	}

	switch cfg.Store.Backend {
	case kv.BackendFile, kv.BackendMemory, kv.BackendSQLite, kv.BackendRedis:
	default:
		return Config{}, fmt.Errorf("ROAM_STORE must be one of file, sqlite, redis, memory (got %q)", cfg.Store.Backend)
	}

	if raw := strings.TrimSpace(os.Getenv("ROAM_LOG_LEVEL")); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, fmt.Errorf("ROAM_LOG_LEVEL: %w", err)
		}
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a non-negative duration like 5s (got %q)", key, raw)
	}
	return d, nil
}
