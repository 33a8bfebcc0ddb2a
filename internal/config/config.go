// Package config provides configuration management for the engine server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Game     GameRuntimeConfig
	Seeds    SeedServiceConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret         string
	TokenExpiry       time.Duration
	SessionTimeout    time.Duration
	MaxFailedAttempts int
	LockoutDuration   time.Duration
}

// GameRuntimeConfig holds game-related runtime settings. Game math
// itself (reels, paytables, weights) lives in per-game YAML files, see
// LoadGame.
type GameRuntimeConfig struct {
	DefaultCurrency string
	GamesDir        string
}

// SeedServiceConfig holds connection settings for the external
// randomness supply. An empty BaseURL disables the remote source and
// all draws come from the local generator.
type SeedServiceConfig struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	SiteCode   string
	RetryCount int
}

// Load loads configuration from environment with defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("CASCATA_PORT", "8080"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: getEnv("CASCATA_DB_DRIVER", "postgres"),
			DSN:    getEnv("CASCATA_DB_DSN", "host=localhost dbname=cascata sslmode=disable"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("CASCATA_JWT_SECRET", "cascata-dev-secret-change-in-production"),
			TokenExpiry:       24 * time.Hour,
			SessionTimeout:    30 * time.Minute,
			MaxFailedAttempts: 3,
			LockoutDuration:   30 * time.Minute,
		},
		Game: GameRuntimeConfig{
			DefaultCurrency: getEnv("CASCATA_CURRENCY", "USD"),
			GamesDir:        getEnv("CASCATA_GAMES_DIR", "configs"),
		},
		Seeds: SeedServiceConfig{
			BaseURL:    getEnv("CASCATA_SEEDS_URL", ""),
			APIKey:     getEnv("CASCATA_SEEDS_API_KEY", ""),
			APISecret:  getEnv("CASCATA_SEEDS_API_SECRET", ""),
			SiteCode:   getEnv("CASCATA_SEEDS_SITE_CODE", ""),
			RetryCount: getEnvInt("CASCATA_SEEDS_RETRIES", 2),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
