package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port   string
	Env    string
	DBPath string

	// JWTSecret signs session tokens. Required in production.
	JWTSecret     string
	TokenDuration time.Duration

	// SettleKey guards the privileged settlement endpoint. The regular
	// client-facing routes never see it; only the trusted caller does.
	SettleKey string

	// IdleTimeout is how long a room may sit without a balance change
	// before a read sweeps it into settlement.
	IdleTimeout time.Duration
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		DBPath:        getEnv("DB_PATH", "./data/scoreroom.db"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-do-not-use"),
		TokenDuration: getDuration("TOKEN_DURATION", 24*time.Hour),
		SettleKey:     os.Getenv("SETTLE_KEY"),
		IdleTimeout:   getDuration("ROOM_IDLE_TIMEOUT", 3*time.Hour),
	}

	if cfg.Env == "production" {
		if os.Getenv("JWT_SECRET") == "" {
			panic("JWT_SECRET is required in production")
		}
		if cfg.SettleKey == "" {
			panic("SETTLE_KEY is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Accept plain seconds too.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
