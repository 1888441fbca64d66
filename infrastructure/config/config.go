// Package config loads process configuration from the environment, with
// an optional YAML overrides file that can be hot-reloaded.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// BreakerConfig tunes the store circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32  `yaml:"maxRequests"`
	IntervalSeconds  int     `yaml:"intervalSeconds"`
	TimeoutSeconds   int     `yaml:"timeoutSeconds"`
	FailureThreshold float64 `yaml:"failureThreshold"`
	MinRequests      uint32  `yaml:"minRequests"`
}

// Config holds all process configuration.
type Config struct {
	Environment string

	// Store configuration. StoreBackend selects "dynamodb" or "memory";
	// the in-memory backend exists for tests and local development.
	StoreBackend  string
	AWSRegion     string
	DynamoDBTable string

	LogLevel string

	// OverridesFile optionally points at a YAML file of runtime-tunable
	// settings watched for changes.
	OverridesFile string

	Breaker BreakerConfig
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		StoreBackend:  getEnv("STORE_BACKEND", "dynamodb"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", "mosaic"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		OverridesFile: getEnv("OVERRIDES_FILE", ""),
		Breaker: BreakerConfig{
			MaxRequests:      uint32(getEnvInt("BREAKER_MAX_REQUESTS", 5)),
			IntervalSeconds:  getEnvInt("BREAKER_INTERVAL_SECONDS", 30),
			TimeoutSeconds:   getEnvInt("BREAKER_TIMEOUT_SECONDS", 60),
			FailureThreshold: getEnvFloat("BREAKER_FAILURE_THRESHOLD", 0.8),
			MinRequests:      uint32(getEnvInt("BREAKER_MIN_REQUESTS", 5)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and coherent.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "dynamodb":
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required for the dynamodb backend")
		}
	case "memory":
		if c.Environment == "production" {
			return fmt.Errorf("the memory store backend is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	return nil
}

// IsDevelopment reports whether this is a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
