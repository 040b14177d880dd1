package statpad

import (
	"time"

	"github.com/Chrisc1124/statpad/internal/config"
	"github.com/Chrisc1124/statpad/internal/nlq"
	"github.com/Chrisc1124/statpad/internal/statstore"
)

// Config exposes a stable wrapper for service configuration in package mode.
// Most fields map directly to internal configuration; embedders fill it by
// hand, the CLI derives it from the loaded application config.
type Config struct {
	// DatabaseURL is a file: path or a remote libsql URL.
	DatabaseURL string
	// AuthToken authenticates remote databases. Ignored for file: URLs.
	AuthToken      string
	MaxOpenConns   int
	MaxIdleConns   int
	ConnMaxIdleSec int
	ConnMaxLifeSec int

	// QueryTimeout bounds the single store lookup behind each query.
	QueryTimeout time.Duration
	// MaxCandidates caps the names listed in ambiguous-match messages.
	MaxCandidates int

	// WatchIndex enables the entity-index freshness watcher on file-backed
	// databases. Remote URLs have no file to watch and disable it.
	WatchIndex    bool
	WatchDebounce time.Duration
}

// DefaultConfig returns a local-file configuration with the same defaults
// the CLI ships with.
func DefaultConfig() *Config {
	return &Config{
		DatabaseURL:   "file:./statpad.db",
		QueryTimeout:  5 * time.Second,
		MaxCandidates: 5,
		WatchDebounce: 2 * time.Second,
	}
}

// FromAppConfig derives a service Config from the loaded application
// configuration tree.
func FromAppConfig(app *config.Config) *Config {
	return &Config{
		DatabaseURL:    app.Database.URL,
		AuthToken:      app.Database.AuthToken,
		MaxOpenConns:   app.Database.MaxOpenConns,
		MaxIdleConns:   app.Database.MaxIdleConns,
		ConnMaxIdleSec: app.Database.ConnMaxIdleSec,
		ConnMaxLifeSec: app.Database.ConnMaxLifeSec,
		QueryTimeout:   app.QueryTimeout(),
		MaxCandidates:  app.Query.MaxCandidates,
		WatchIndex:     app.Watch.Enabled,
		WatchDebounce:  app.WatchDebounce(),
	}
}

func (c *Config) storeConfig() *statstore.Config {
	return &statstore.Config{
		URL:            c.DatabaseURL,
		AuthToken:      c.AuthToken,
		MaxOpenConns:   c.MaxOpenConns,
		MaxIdleConns:   c.MaxIdleConns,
		ConnMaxIdleSec: c.ConnMaxIdleSec,
		ConnMaxLifeSec: c.ConnMaxLifeSec,
	}
}

func (c *Config) engineOptions() nlq.Options {
	return nlq.Options{
		QueryTimeout:  c.QueryTimeout,
		MaxCandidates: c.MaxCandidates,
	}
}
