package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3232 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 3232)
	}
	if cfg.Data.Dir != "data/resources" {
		t.Errorf("Data.Dir = %q, want %q", cfg.Data.Dir, "data/resources")
	}
	if cfg.Data.MaxLoadedFiles != 100 {
		t.Errorf("Data.MaxLoadedFiles = %d, want %d", cfg.Data.MaxLoadedFiles, 100)
	}
	if cfg.Cache.BroadbandMaxEntries != 100 || cfg.Cache.IndexMaxEntries != 32 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Parse.MaxConcurrent != 4 || cfg.Parse.MaxWaitTime != 10*time.Second {
		t.Errorf("Parse = %+v", cfg.Parse)
	}
	if cfg.Census.BaseURL != "https://api.census.gov" {
		t.Errorf("Census.BaseURL = %q", cfg.Census.BaseURL)
	}
	if cfg.Security.AllowedOrigin != "*" {
		t.Errorf("Security.AllowedOrigin = %q, want *", cfg.Security.AllowedOrigin)
	}
	if cfg.Rate.RequestsPerMinute != 100 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 100)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PARSE_MAX_CONCURRENT", "10")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATA_PRELOAD_MANIFEST", "preload.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Parse.MaxConcurrent != 10 {
		t.Errorf("Parse.MaxConcurrent = %d, want %d", cfg.Parse.MaxConcurrent, 10)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Data.PreloadManifest != "preload.yaml" {
		t.Errorf("Data.PreloadManifest = %q", cfg.Data.PreloadManifest)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("PORT", "4545")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 4545 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 4545)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("CACHE_INDEX_MAX_ENTRIES", "lots")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "CACHE_INDEX_MAX_ENTRIES") {
		t.Fatalf("Load() error = %v, want mention of CACHE_INDEX_MAX_ENTRIES", err)
	}
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("CENSUS_TIMEOUT", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Census.Timeout != 90*time.Second {
		t.Errorf("Census.Timeout = %v, want %v", cfg.Census.Timeout, 90*time.Second)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Security.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 3232, ShutdownTimeout: time.Second, RequestTimeout: time.Second},
		Data:    DataConfig{Dir: "data", MaxLoadedFiles: 10},
		Parse:   ParseConfig{MaxConcurrent: 1, MaxWaitTime: time.Second},
		Cache:   CacheConfig{BroadbandMaxEntries: 10, IndexMaxEntries: 10},
		Census:  CensusConfig{BaseURL: "https://api.census.gov", Timeout: time.Second},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 100, Burst: 10},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"no data dir", func(c *Config) { c.Data.Dir = "" }, "DATA_DIR"},
		{"zero loaded files", func(c *Config) { c.Data.MaxLoadedFiles = 0 }, "DATA_MAX_LOADED_FILES"},
		{"zero parses", func(c *Config) { c.Parse.MaxConcurrent = 0 }, "PARSE_MAX_CONCURRENT"},
		{"zero index cache", func(c *Config) { c.Cache.IndexMaxEntries = 0 }, "CACHE_INDEX_MAX_ENTRIES"},
		{"relative census url", func(c *Config) { c.Census.BaseURL = "census" }, "CENSUS_BASE_URL"},
		{"negative census rate", func(c *Config) { c.Census.RequestsPerMinute = -1 }, "CENSUS_REQUESTS_PER_MINUTE"},
		{"rate without burst", func(c *Config) { c.Rate.Burst = 0 }, "RATE_LIMIT_BURST"},
		{"rate disabled", func(c *Config) { c.Rate = RateLimitConfig{} }, ""},
		{"api key required but empty", func(c *Config) { c.Security.RequireAPIKey = true }, "API_KEYS"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 3232, ":3232"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"::1", 443, "[::1]:443"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		got := cfg.Addr()
		if got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_MasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Census.APIKey = "census-secret"
	cfg.Security.APIKeys = []string{"key-secret"}

	str := cfg.String()
	if strings.Contains(str, "secret") {
		t.Errorf("String() leaked a secret: %s", str)
	}
	if !strings.Contains(str, "MASKED") {
		t.Error("String() should contain MASKED placeholder")
	}
}
