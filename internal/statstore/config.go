package statstore

import (
	"os"
)

// Config holds the stats database configuration.
type Config struct {
	URL            string
	AuthToken      string
	MaxOpenConns   int
	MaxIdleConns   int
	ConnMaxIdleSec int
	ConnMaxLifeSec int
}

// NewConfig creates a new Config from environment variables.
func NewConfig() *Config {
	url := os.Getenv("STATPAD_DB_URL")
	if url == "" {
		url = "file:./statpad.db"
	}

	return &Config{
		URL:       url,
		AuthToken: os.Getenv("STATPAD_DB_AUTH_TOKEN"),
	}
}
