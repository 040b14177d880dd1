// Package commands holds the statpad CLI subcommands. Each command loads
// configuration the same way: defaults, then config file, then STATPAD_*
// environment overrides, then its own flags.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Chrisc1124/statpad/internal/config"
	"github.com/Chrisc1124/statpad/internal/logger"
	"github.com/Chrisc1124/statpad/internal/metrics"
	"github.com/Chrisc1124/statpad/internal/statstore"
)

// ConfigFile is bound to the root --config flag.
var ConfigFile string

func loadConfig() (*config.Config, error) {
	if ConfigFile != "" {
		return config.LoadFromFile(ConfigFile)
	}
	return config.Load()
}

// initRuntime sets up the ambient pieces every command shares: the global
// logger and, when enabled, the Prometheus exporter.
func initRuntime(cfg *config.Config) error {
	if err := logger.Initialize(cfg.Logging.Format == "json", cfg.Logging.Level); err != nil {
		return err
	}
	metrics.Init(cfg.Metrics.Prometheus, cfg.Metrics.Addr)
	return nil
}

func storeConfig(cfg *config.Config) *statstore.Config {
	return &statstore.Config{
		URL:            cfg.Database.URL,
		AuthToken:      cfg.Database.AuthToken,
		MaxOpenConns:   cfg.Database.MaxOpenConns,
		MaxIdleConns:   cfg.Database.MaxIdleConns,
		ConnMaxIdleSec: cfg.Database.ConnMaxIdleSec,
		ConnMaxLifeSec: cfg.Database.ConnMaxLifeSec,
	}
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
