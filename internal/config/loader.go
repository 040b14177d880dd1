package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from config.yaml (searched in ./, ./configs, and
// $HOME/.statpad) merged with STATPAD_* environment variables. A .env file in
// the working directory is loaded first so both viper and plain os.Getenv
// callers see it. Missing config files are fine; the defaults stand alone.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home + "/.statpad")
	}

	v.SetEnvPrefix("STATPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	return finish(v)
}

// LoadFromFile reads configuration from an explicit path (--config flag).
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("STATPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout_ms", 10000)
	v.SetDefault("server.write_timeout_ms", 15000)
	v.SetDefault("server.shutdown_grace_ms", 5000)
	v.SetDefault("server.mcp_sse", false)
	v.SetDefault("server.mcp_sse_endpoint", "/sse")

	v.SetDefault("database.url", "file:./statpad.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_idle_sec", 60)
	v.SetDefault("database.conn_max_life_sec", 300)

	v.SetDefault("query.timeout_ms", 5000)
	v.SetDefault("query.max_candidates", 5)

	v.SetDefault("ingest.source", "")
	v.SetDefault("ingest.api_base_url", "https://api.balldontlie.io/v1")
	v.SetDefault("ingest.rate_per_sec", 1.0)
	v.SetDefault("ingest.rate_burst", 2)
	v.SetDefault("ingest.csv_dir", "./data")
	v.SetDefault("ingest.http_timeout_sec", 30)

	v.SetDefault("watch.enabled", false)
	v.SetDefault("watch.debounce_ms", 2000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.prometheus", false)
	v.SetDefault("metrics.addr", ":9090")
}

func validate(cfg *Config) error {
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if cfg.Query.TimeoutMs <= 0 {
		return errors.New("query.timeout_ms must be positive")
	}
	switch cfg.Logging.Format {
	case "", "console", "json":
	default:
		return errors.Newf("logging.format must be console or json, got %q", cfg.Logging.Format)
	}
	if cfg.Ingest.Source != "" && cfg.Ingest.Source != "api" && cfg.Ingest.Source != "csv" {
		return errors.Newf("ingest.source must be api, csv, or empty, got %q", cfg.Ingest.Source)
	}
	return nil
}
