package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the theseus CLI.
type Config struct {
	DatabaseURL   string
	RedisURL      string
	ProjectRoot   string
	GridWidth     int
	GridHeight    int
	MaxPathLength int // 0 means GridWidth * GridHeight
	RepairEnabled bool
	LockTTL       time.Duration
	EventsMaxLen  int64
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is loaded first if present;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	projectRoot, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	cfg := &Config{
		DatabaseURL: getEnv("THESEUS_DATABASE_URL", "postgres://localhost:5432/theseus?sslmode=disable"),
		RedisURL:    getEnv("THESEUS_REDIS_URL", "redis://localhost:6379/0"),
		ProjectRoot: getEnv("THESEUS_PROJECT_ROOT", projectRoot),
	}
	if cfg.GridWidth, err = getEnvInt("THESEUS_GRID_WIDTH", 11); err != nil {
		return nil, err
	}
	if cfg.GridHeight, err = getEnvInt("THESEUS_GRID_HEIGHT", 11); err != nil {
		return nil, err
	}
	if cfg.MaxPathLength, err = getEnvInt("THESEUS_MAX_PATH_LENGTH", 0); err != nil {
		return nil, err
	}
	if cfg.RepairEnabled, err = getEnvBool("THESEUS_REPAIR_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.LockTTL, err = getEnvDuration("THESEUS_LOCK_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	maxLen, err := getEnvInt("THESEUS_EVENTS_MAX_LEN", 10000)
	if err != nil {
		return nil, err
	}
	cfg.EventsMaxLen = int64(maxLen)

	if cfg.GridWidth <= 0 || cfg.GridHeight <= 0 {
		return nil, fmt.Errorf("grid must be at least 1x1, got %dx%d", cfg.GridWidth, cfg.GridHeight)
	}
	if cfg.MaxPathLength < 0 {
		return nil, fmt.Errorf("THESEUS_MAX_PATH_LENGTH must not be negative, got %d", cfg.MaxPathLength)
	}
	return cfg, nil
}

// PathLimit is the path buffer capacity.
func (c *Config) PathLimit() int {
	if c.MaxPathLength > 0 {
		return c.MaxPathLength
	}
	return c.GridWidth * c.GridHeight
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
