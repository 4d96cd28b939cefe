// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ExecutionModeSimulated records orders locally after an artificial delay
	ExecutionModeSimulated = "simulated"
	// ExecutionModeBroker forwards orders to the Moment trading endpoint
	ExecutionModeBroker = "broker"
)

// Config holds application configuration
type Config struct {
	Port      int
	LogLevel  string
	LogPretty bool
	DevMode   bool

	MomentBaseURL     string
	MomentAPIKey      string
	MomentHTTPTimeout time.Duration

	InstrumentStatus string
	InstrumentLimit  int

	ExecutionMode     string
	SimulatedDelayMin time.Duration
	SimulatedDelayMax time.Duration
	DefaultUserID     string

	SyncSchedule string // cron spec for the catalog refresh job, empty disables it
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	apiKey := getEnv("MOMENT_API_KEY", "")
	if apiKey == "" {
		apiKey = getEnv("API_KEY", "")
	}

	cfg := &Config{
		Port:      getEnvAsInt("PORT", 8000),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
		DevMode:   getEnvAsBool("DEV_MODE", false),

		MomentBaseURL:     strings.TrimRight(getEnv("MOMENT_API_BASE_URL", "https://paper.moment-api.com"), "/"),
		MomentAPIKey:      apiKey,
		MomentHTTPTimeout: time.Duration(getEnvAsInt("MOMENT_HTTP_TIMEOUT_SECONDS", 30)) * time.Second,

		InstrumentStatus: getEnv("INSTRUMENT_STATUS", "outstanding"),
		InstrumentLimit:  getEnvAsInt("INSTRUMENT_LIMIT", 100),

		ExecutionMode:     strings.ToLower(getEnv("ORDER_EXECUTION_MODE", ExecutionModeSimulated)),
		SimulatedDelayMin: time.Duration(getEnvAsInt("SIMULATED_DELAY_MIN_MS", 1000)) * time.Millisecond,
		SimulatedDelayMax: time.Duration(getEnvAsInt("SIMULATED_DELAY_MAX_MS", 3000)) * time.Millisecond,
		DefaultUserID:     getEnv("DEFAULT_USER_ID", "demo_user"),

		SyncSchedule: getEnvAllowEmpty("SYNC_SCHEDULE", "@every 30m"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.ExecutionMode {
	case ExecutionModeSimulated, ExecutionModeBroker:
	default:
		return fmt.Errorf("invalid ORDER_EXECUTION_MODE %q (want %s or %s)", c.ExecutionMode, ExecutionModeSimulated, ExecutionModeBroker)
	}

	if c.InstrumentLimit <= 0 {
		return fmt.Errorf("INSTRUMENT_LIMIT must be positive, got %d", c.InstrumentLimit)
	}

	if c.SimulatedDelayMin < 0 || c.SimulatedDelayMin > c.SimulatedDelayMax {
		return fmt.Errorf("simulated delay range invalid: min %s, max %s", c.SimulatedDelayMin, c.SimulatedDelayMax)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}

	// Credentials are optional; upstream calls fail without them.
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an explicitly empty variable from an unset one
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
