// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Parse    ParseConfig
	Cache    CacheConfig
	Census   CensusConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: all interfaces)
	Host string `env:"SERVER_HOST"`

	// Port is the port to listen on (default: 3232)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"3232"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including waiting for parses (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DataConfig locates the CSV files the server may load.
type DataConfig struct {
	// Dir is the root every loaded file must live under (default: data/resources)
	Dir string `env:"DATA_DIR" default:"data/resources"`

	// MaxLoadedFiles caps the loaded-file registry (default: 100)
	MaxLoadedFiles int `env:"DATA_MAX_LOADED_FILES" default:"100"`

	// PreloadManifest is an optional YAML file listing files to load at startup
	PreloadManifest string `env:"DATA_PRELOAD_MANIFEST"`
}

// ParseConfig bounds concurrent parsing work.
type ParseConfig struct {
	// MaxConcurrent is the number of files parsed at once (default: 4)
	MaxConcurrent int `env:"PARSE_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a parse slot (default: 10s)
	MaxWaitTime time.Duration `env:"PARSE_MAX_WAIT_TIME" default:"10s"`
}

// CacheConfig sizes the in-memory LRU caches.
type CacheConfig struct {
	BroadbandMaxEntries int `env:"CACHE_BROADBAND_MAX_ENTRIES" default:"100"`
	IndexMaxEntries     int `env:"CACHE_INDEX_MAX_ENTRIES" default:"32"`
}

// CensusConfig configures the ACS datasource client.
type CensusConfig struct {
	BaseURL string        `env:"CENSUS_BASE_URL" default:"https://api.census.gov"`
	APIKey  string        `env:"CENSUS_API_KEY"`
	Timeout time.Duration `env:"CENSUS_TIMEOUT" default:"10s"`

	// RequestsPerMinute throttles outbound calls; 0 disables throttling (default: 120)
	RequestsPerMinute int `env:"CENSUS_REQUESTS_PER_MINUTE" default:"120"`
	Burst             int `env:"CENSUS_BURST" default:"5"`
}

// RateLimitConfig holds inbound per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained rate per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// Burst is the number of requests allowed at once (default: 20)
	Burst int `env:"RATE_LIMIT_BURST" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// AllowedOrigin is sent as Access-Control-Allow-Origin (default: *)
	AllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" default:"*"`

	// RequireAPIKey enables X-API-Key checks on /api routes
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
