// Package config loads application configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/crewplane/crewd/pkg/observability"
)

// Bus backends
const (
	BusLocal = "local"
	BusRedis = "redis"
)

// State store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Bus           BusConfig
	Store         StoreConfig
	Features      FeaturesConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// BusConfig selects and configures the event bus transport
type BusConfig struct {
	Type          string // local or redis
	RedisURL      string
	RedisPassword string
	RedisDB       int
}

// StoreConfig selects and configures the feature state store
type StoreConfig struct {
	Type        string // memory or postgres
	PostgresURL string
}

// FeaturesConfig holds feature registry settings
type FeaturesConfig struct {
	// MatrixFile optionally overrides the built-in permission matrix
	MatrixFile string

	// ReconcileInterval is how often the background sweep re-runs feature
	// initialization; zero disables the reconciler
	ReconcileInterval time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("CREW_HOST", "0.0.0.0"),
			Port:            getEnv("CREW_PORT", "8080"),
			ReadTimeout:     getEnvDuration("CREW_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("CREW_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("CREW_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("CREW_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Bus: BusConfig{
			Type:          getEnv("CREW_BUS_TYPE", BusLocal),
			RedisURL:      getEnv("CREW_REDIS_URL", ""),
			RedisPassword: getEnv("CREW_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("CREW_REDIS_DB", 0),
		},
		Store: StoreConfig{
			Type:        getEnv("CREW_STORE_TYPE", StoreMemory),
			PostgresURL: getEnv("CREW_POSTGRES_URL", ""),
		},
		Features: FeaturesConfig{
			MatrixFile:        getEnv("CREW_MATRIX_FILE", ""),
			ReconcileInterval: getEnvDuration("CREW_RECONCILE_INTERVAL", 5*time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.ParseLogLevel(getEnv("CREW_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("CREW_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Bus.Type {
	case BusLocal:
	case BusRedis:
		if c.Bus.RedisURL == "" {
			return fmt.Errorf("redis URL is required for the redis bus")
		}
	default:
		return fmt.Errorf("invalid bus type: %s (must be local or redis)", c.Bus.Type)
	}

	switch c.Store.Type {
	case StoreMemory:
	case StorePostgres:
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("invalid store type: %s (must be memory or postgres)", c.Store.Type)
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
