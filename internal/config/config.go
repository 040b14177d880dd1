package config

import "time"

// Config is the full application configuration tree. Fields map 1:1 to the
// keys in config.yaml and to STATPAD_* environment overrides.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Query    QueryConfig    `mapstructure:"query"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig controls the HTTP API listener and the optional SSE MCP
// endpoint it can host alongside it.
type ServerConfig struct {
	Addr            string `mapstructure:"addr"`
	ReadTimeoutMs   int    `mapstructure:"read_timeout_ms"`
	WriteTimeoutMs  int    `mapstructure:"write_timeout_ms"`
	ShutdownGraceMs int    `mapstructure:"shutdown_grace_ms"`
	MCPSSE          bool   `mapstructure:"mcp_sse"`
	MCPSSEEndpoint  string `mapstructure:"mcp_sse_endpoint"`
}

// DatabaseConfig mirrors the statstore connection settings.
type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	AuthToken      string `mapstructure:"auth_token"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns"`
	ConnMaxIdleSec int    `mapstructure:"conn_max_idle_sec"`
	ConnMaxLifeSec int    `mapstructure:"conn_max_life_sec"`
}

// QueryConfig bounds the engine's single storage call per request.
type QueryConfig struct {
	TimeoutMs     int `mapstructure:"timeout_ms"`
	MaxCandidates int `mapstructure:"max_candidates"`
}

// IngestConfig selects and tunes the stats data source.
type IngestConfig struct {
	Source       string  `mapstructure:"source"`
	APIBaseURL   string  `mapstructure:"api_base_url"`
	APIKey       string  `mapstructure:"api_key"`
	RatePerSec   float64 `mapstructure:"rate_per_sec"`
	RateBurst    int     `mapstructure:"rate_burst"`
	CSVDir       string  `mapstructure:"csv_dir"`
	HTTPTimeoutS int     `mapstructure:"http_timeout_sec"`
}

// WatchConfig controls the entity-index freshness watcher.
type WatchConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	DebounceMs int  `mapstructure:"debounce_ms"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Prometheus bool   `mapstructure:"prometheus"`
	Addr       string `mapstructure:"addr"`
}

// QueryTimeout returns the dispatcher's storage-call timeout.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Query.TimeoutMs) * time.Millisecond
}

// WatchDebounce returns the index-rebuild debounce window.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}
