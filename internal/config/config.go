// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aristath/cropwatch/internal/utils"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	Port        int
	Version     string // Reported by /health; set by the release build
	LogLevel    string
	DevMode     bool
	CORSOrigins []string // Browser origins allowed to call the API and open the stream

	CatalogPath   string // YAML catalog file; empty uses the built-in catalog
	DefaultCrop   string // Empty selects the first catalog crop
	DefaultRegion string // Empty selects the first catalog region

	FetchDelay          time.Duration
	Seed                uint64 // 0 seeds from the clock
	MovingAveragePeriod int

	LiveSchedule     string // Empty disables the live refresh job
	RolloverSchedule string // Empty disables the month rollover job
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnvAsInt("CROPWATCH_PORT", 8080),
		Version:             getEnv("VERSION", "dev"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		CORSOrigins:         utils.ParseCSV(getEnv("CROPWATCH_CORS_ORIGINS", "*")),
		CatalogPath:         getEnv("CROPWATCH_CATALOG_PATH", ""),
		DefaultCrop:         getEnv("CROPWATCH_DEFAULT_CROP", ""),
		DefaultRegion:       getEnv("CROPWATCH_DEFAULT_REGION", ""),
		FetchDelay:          getEnvAsDuration("CROPWATCH_FETCH_DELAY", 600*time.Millisecond),
		Seed:                getEnvAsUint64("CROPWATCH_SEED", 0),
		MovingAveragePeriod: getEnvAsInt("CROPWATCH_MA_PERIOD", 3),
		LiveSchedule:        getEnv("CROPWATCH_LIVE_SCHEDULE", "@every 30m"),
		RolloverSchedule:    getEnv("CROPWATCH_ROLLOVER_SCHEDULE", "0 0 0 1 * *"),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration values are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.FetchDelay < 0 {
		return fmt.Errorf("fetch delay must not be negative, got %s", c.FetchDelay)
	}
	if c.MovingAveragePeriod < 1 || c.MovingAveragePeriod > 12 {
		return fmt.Errorf("moving average period must be between 1 and 12, got %d", c.MovingAveragePeriod)
	}

	// Same parser the scheduler uses
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, schedule := range map[string]string{
		"CROPWATCH_LIVE_SCHEDULE":     c.LiveSchedule,
		"CROPWATCH_ROLLOVER_SCHEDULE": c.RolloverSchedule,
	} {
		if schedule == "" {
			continue
		}
		if _, err := parser.Parse(schedule); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, schedule, err)
		}
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

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintVal, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("600ms") or plain milliseconds ("600")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
