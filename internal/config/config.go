// Package config provides environment-aware configuration management.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// Config holds all engine configuration, loaded from the environment.
type Config struct {
	Env Environment

	// Repository
	RepoMaxSize int

	// Ledger
	LedgerBasePath   string
	HotMaxSizeBytes  int64
	HotMaxAgeSeconds int
	WarmRetentionDays int
	ColdRetentionDays int
	DeleteAfterDays   int

	// Durable storage path (RISKCAST_DB_PATH). cmd/omen-engine always builds
	// the in-memory repository and does not read this field.
	DBPath string

	// Hot-path / reconciliation consumer
	ConsumerURL               string
	ReconcileIntervalSeconds  int

	// Logging
	LogLevel  string
	LogFormat string

	// Metrics
	MetricsEnabled bool
	MetricsPort    int
}

// Load loads configuration based on the OMEN_ENV environment variable,
// optionally overlaying a local .env file.
func Load() (*Config, error) {
	envStr := os.Getenv("OMEN_ENV")
	if envStr == "" {
		envStr = string(Development)
	}
	env := Environment(envStr)
	switch env {
	case Development, Testing, Production:
	default:
		return nil, fmt.Errorf("invalid OMEN_ENV: %s (must be development, testing, or production)", envStr)
	}

	if err := godotenv.Load(); err != nil {
		// .env is optional; only warn on errors other than "file not found"
		// to avoid noisy logs in CI and production containers.
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Printf("Warning: could not load .env: %v\n", err)
		}
	}

	cfg := &Config{Env: env}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() error {
	c.RepoMaxSize = getIntEnv("REPO_MAX_SIZE", 10000)

	c.LedgerBasePath = getEnv("LEDGER_BASE_PATH", "./data/ledger")
	c.HotMaxSizeBytes = getInt64Env("HOT_MAX_SIZE_BYTES", 64*1024*1024)
	c.HotMaxAgeSeconds = getIntEnv("HOT_MAX_AGE_SECONDS", 3600)
	c.WarmRetentionDays = getIntEnv("WARM_RETENTION_DAYS", 7)
	c.ColdRetentionDays = getIntEnv("COLD_RETENTION_DAYS", 30)
	c.DeleteAfterDays = getIntEnv("DELETE_AFTER_DAYS", 365)

	c.DBPath = getEnv("RISKCAST_DB_PATH", "")

	c.ConsumerURL = getEnv("CONSUMER_URL", "http://localhost:8090")
	c.ReconcileIntervalSeconds = getIntEnv("RECONCILE_INTERVAL_SECONDS", 300)

	c.LogLevel = getEnv("LOG_LEVEL", "info")
	c.LogFormat = getEnv("LOG_FORMAT", "json")

	c.MetricsEnabled = getBoolEnv("METRICS_ENABLED", c.Env != Production)
	c.MetricsPort = getIntEnv("METRICS_PORT", 9090)

	return nil
}

// IsProduction returns true if running in the production environment.
func (c *Config) IsProduction() bool { return c.Env == Production }

// ReconcileInterval is ReconcileIntervalSeconds as a time.Duration.
func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalSeconds) * time.Second
}

// HotMaxAge is HotMaxAgeSeconds as a time.Duration.
func (c *Config) HotMaxAge() time.Duration {
	return time.Duration(c.HotMaxAgeSeconds) * time.Second
}

// Validate rejects out-of-range configuration values.
func (c *Config) Validate() error {
	if c.RepoMaxSize <= 0 {
		return fmt.Errorf("REPO_MAX_SIZE must be positive, got %d", c.RepoMaxSize)
	}
	if c.HotMaxSizeBytes <= 0 {
		return fmt.Errorf("HOT_MAX_SIZE_BYTES must be positive, got %d", c.HotMaxSizeBytes)
	}
	if c.HotMaxAgeSeconds <= 0 {
		return fmt.Errorf("HOT_MAX_AGE_SECONDS must be positive, got %d", c.HotMaxAgeSeconds)
	}
	if c.WarmRetentionDays <= 0 || c.ColdRetentionDays <= 0 || c.DeleteAfterDays <= 0 {
		return fmt.Errorf("retention windows must be positive (warm=%d cold=%d delete=%d)", c.WarmRetentionDays, c.ColdRetentionDays, c.DeleteAfterDays)
	}
	if c.ColdRetentionDays < c.WarmRetentionDays {
		return fmt.Errorf("COLD_RETENTION_DAYS (%d) must be >= WARM_RETENTION_DAYS (%d)", c.ColdRetentionDays, c.WarmRetentionDays)
	}
	if c.DeleteAfterDays < c.ColdRetentionDays {
		return fmt.Errorf("DELETE_AFTER_DAYS (%d) must be >= COLD_RETENTION_DAYS (%d)", c.DeleteAfterDays, c.ColdRetentionDays)
	}
	if c.ConsumerURL == "" {
		return fmt.Errorf("CONSUMER_URL is required")
	}
	if c.ReconcileIntervalSeconds <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL_SECONDS must be positive, got %d", c.ReconcileIntervalSeconds)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
