// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables (optionally layered over a YAML
// file) with sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Hunter    HunterConfig    `yaml:"hunter"`
	Search    SearchConfig    `yaml:"search"`
	Artifacts ArtifactConfig  `yaml:"artifacts"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Rate      RateLimitConfig `yaml:"rate"`
	Security  SecurityConfig  `yaml:"security"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `yaml:"host" env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 5000)
	Port int `yaml:"port" env:"SERVER_PORT" default:"5000"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 60s)
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 45s)
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" default:"45s"`
}

// HunterConfig holds settings for the domain-search API client.
type HunterConfig struct {
	// APIKey authenticates against the domain-search API. Optional at startup:
	// searches report a configuration error until it is set.
	APIKey string `yaml:"api_key" env:"HUNTER_API_KEY"`

	// BaseURL is the API root (default: https://api.hunter.io/v2)
	BaseURL string `yaml:"base_url" env:"HUNTER_BASE_URL" default:"https://api.hunter.io/v2"`

	// Timeout bounds a single upstream call (default: 15s)
	Timeout time.Duration `yaml:"timeout" env:"HUNTER_TIMEOUT" default:"15s"`

	// RequestsPerSecond throttles outbound calls (default: 5)
	RequestsPerSecond int `yaml:"requests_per_second" env:"HUNTER_REQUESTS_PER_SECOND" default:"5"`

	// Burst is the number of calls allowed back to back (default: 5)
	Burst int `yaml:"burst" env:"HUNTER_BURST" default:"5"`
}

// SearchConfig holds search orchestration settings.
type SearchConfig struct {
	// MaxConcurrent is the maximum number of in-flight searches (default: 4)
	MaxConcurrent int `yaml:"max_concurrent" env:"SEARCH_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a search waits for a free slot (default: 10s)
	MaxWaitTime time.Duration `yaml:"max_wait_time" env:"SEARCH_MAX_WAIT_TIME" default:"10s"`
}

// ArtifactConfig holds CSV output settings.
type ArtifactConfig struct {
	// Dir is the root under which per-company CSV directories are created (default: output)
	Dir string `yaml:"dir" env:"OUTPUT_DIR" default:"output"`
}

// CatalogConfig selects where search records are indexed.
type CatalogConfig struct {
	// Driver is one of memory, sqlite, postgres (default: memory)
	Driver string `yaml:"driver" env:"CATALOG_DRIVER" default:"memory"`

	// DSN is the sqlite file path or PostgreSQL connection string.
	// For sqlite an empty DSN resolves to the XDG data directory.
	DSN string `yaml:"dsn" env:"CATALOG_DSN" envAlt:"DATABASE_URL"`

	// MaxConns caps the PostgreSQL pool size (default: 4)
	MaxConns int `yaml:"max_conns" env:"CATALOG_MAX_CONNS" default:"4"`
}

// RateLimitConfig holds inbound rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `yaml:"requests_per_minute" env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// SearchLimit is search submissions per minute per IP (default: 10)
	SearchLimit int `yaml:"search_limit" env:"RATE_LIMIT_SEARCH" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `yaml:"enable_csp" env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey guards the /api routes with X-API-Key (default: false)
	RequireAPIKey bool `yaml:"require_api_key" env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted X-API-Key values
	APIKeys []string `yaml:"api_keys" env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
