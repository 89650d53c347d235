// Package config provides configuration loading and validation for the
// command service. Configuration is layered: built-in defaults, then
// base.yaml, then {profile}.yaml, then APP_ environment variables.
package config

import "time"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRemote = "remote"
)

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Routing   RoutingConfig   `koanf:"routing"`
	Store     StoreConfig     `koanf:"store"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	IdleTimeout    time.Duration `koanf:"idle_timeout"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

// RoutingConfig controls how handler routes are built for aggregates and
// how batches are dispatched.
type RoutingConfig struct {
	// MaxDepth bounds the nesting depth of entities; 0 means unlimited.
	MaxDepth int `koanf:"max_depth"`

	// StrictTargetProperties rejects routed commands whose payload lacks a
	// target property at startup instead of failing them at dispatch.
	StrictTargetProperties bool `koanf:"strict_target_properties"`

	// BatchWorkers is the number of orders processed concurrently by a
	// batch dispatch.
	BatchWorkers int `koanf:"batch_workers"`
}

// StoreConfig selects and configures the order repository.
type StoreConfig struct {
	Driver string       `koanf:"driver"`
	SQLite SQLiteConfig `koanf:"sqlite"`
	Remote ClientConfig `koanf:"remote"`
}

// SQLiteConfig holds settings for the embedded SQLite store.
type SQLiteConfig struct {
	Path        string        `koanf:"path"`
	BusyTimeout time.Duration `koanf:"busy_timeout"`
}

// ClientConfig holds settings for the remote order store HTTP client.
type ClientConfig struct {
	BaseURL        string               `koanf:"base_url"`
	Timeout        time.Duration        `koanf:"timeout"`
	RateLimit      float64              `koanf:"rate_limit"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// RetryConfig holds retry policy settings with exponential backoff.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`
	Multiplier      float64       `koanf:"multiplier"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}
