package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: ":9000"
  mcp_sse: true
database:
  url: "libsql://statpad.turso.io"
  auth_token: "secret"
query:
  timeout_ms: 250
ingest:
  source: csv
  csv_dir: /var/data/statpad
logging:
  level: debug
  format: json
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.MCPSSE)
	assert.Equal(t, "libsql://statpad.turso.io", cfg.Database.URL)
	assert.Equal(t, "secret", cfg.Database.AuthToken)
	assert.Equal(t, "csv", cfg.Ingest.Source)
	assert.Equal(t, "/var/data/statpad", cfg.Ingest.CSVDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 250*time.Millisecond, cfg.QueryTimeout())

	// Keys the file does not set keep their defaults.
	assert.Equal(t, "/sse", cfg.Server.MCPSSEEndpoint)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Query.MaxCandidates)
	assert.Equal(t, 2*time.Second, cfg.WatchDebounce())
}

func TestLoadFromFileEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: "file:./from-file.db"
`)
	t.Setenv("STATPAD_DATABASE_URL", "file:./from-env.db")
	t.Setenv("STATPAD_QUERY_TIMEOUT_MS", "750")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file:./from-env.db", cfg.Database.URL)
	assert.Equal(t, 750, cfg.Query.TimeoutMs)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	// Point the home search path at an empty directory so only defaults and
	// environment apply.
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "file:./statpad.db", cfg.Database.URL)
	assert.Equal(t, 5000, cfg.Query.TimeoutMs)
	assert.Equal(t, "", cfg.Ingest.Source)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.Prometheus)
}

func TestLoadFromFileMissingPathErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFromFileRejectsBadFormat(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  format: xml
`)
	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{URL: "file:./statpad.db"},
			Query:    QueryConfig{TimeoutMs: 5000},
		}
	}

	require.NoError(t, validate(base()))

	cfg := base()
	cfg.Database.URL = ""
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Query.TimeoutMs = 0
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Logging.Format = "xml"
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Ingest.Source = "ftp"
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Ingest.Source = "api"
	assert.NoError(t, validate(cfg))
}
