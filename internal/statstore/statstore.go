package statstore

import (
	"context"
	"database/sql"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/Chrisc1124/statpad/internal/metrics"
)

// ErrNotFound marks lookups that matched no row. Callers test with
// errors.Is or IsNotFound.
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Store handles all stats database operations.
type Store struct {
	config *Config
	mu     sync.RWMutex
	db     *sql.DB

	stmtMu    sync.RWMutex
	stmtCache map[string]*sql.Stmt
}

// NewStore creates a store and opens the database immediately so
// configuration problems surface at startup.
func NewStore(config *Config) (*Store, error) {
	s := &Store{
		config:    config,
		stmtCache: make(map[string]*sql.Stmt),
	}
	if _, err := s.getDB(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize stats database")
	}
	return s, nil
}

// getDB returns the database handle, opening and initializing it on first use.
func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	db := s.db
	s.mu.RUnlock()

	if db != nil {
		return db, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check if another goroutine opened the DB while we were waiting
	// for the lock
	if s.db != nil {
		return s.db, nil
	}

	dbURL := s.config.URL
	var newDb *sql.DB
	var err error

	if strings.HasPrefix(dbURL, "file:") {
		newDb, err = sql.Open("libsql", dbURL)
	} else {
		authURL := dbURL
		if s.config.AuthToken != "" {
			// Build URL safely and append/override the authToken parameter
			if u, perr := url.Parse(dbURL); perr == nil {
				q := u.Query()
				q.Set("authToken", s.config.AuthToken)
				u.RawQuery = q.Encode()
				authURL = u.String()
			} else {
				if strings.Contains(dbURL, "?") {
					authURL = dbURL + "&authToken=" + url.QueryEscape(s.config.AuthToken)
				} else {
					authURL = dbURL + "?authToken=" + url.QueryEscape(s.config.AuthToken)
				}
			}
		}
		newDb, err = sql.Open("libsql", authURL)
	}

	if err != nil {
		return nil, errors.Wrap(err, "failed to create database connector")
	}

	if err := s.initialize(newDb); err != nil {
		newDb.Close()
		return nil, errors.Wrap(err, "failed to initialize database schema")
	}

	// Apply connection pool tuning from config
	if s.config.MaxOpenConns > 0 {
		newDb.SetMaxOpenConns(s.config.MaxOpenConns)
	}
	if s.config.MaxIdleConns > 0 {
		newDb.SetMaxIdleConns(s.config.MaxIdleConns)
	}
	if s.config.ConnMaxIdleSec > 0 {
		newDb.SetConnMaxIdleTime(time.Duration(s.config.ConnMaxIdleSec) * time.Second)
	}
	if s.config.ConnMaxLifeSec > 0 {
		newDb.SetConnMaxLifetime(time.Duration(s.config.ConnMaxLifeSec) * time.Second)
	}

	s.db = newDb
	stats := newDb.Stats()
	metrics.Default().ObservePoolStats(stats.InUse, stats.Idle)
	return newDb, nil
}

// initialize creates tables and indexes if they don't exist.
func (s *Store) initialize(db *sql.DB) error {
	done := metrics.TimeOp("db_initialize")
	success := false
	defer func() { done(success) }()
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction for initialization")
	}
	defer tx.Rollback()

	for _, statement := range schema {
		if _, err := tx.Exec(statement); err != nil {
			return errors.Wrap(err, "failed to execute schema statement")
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	success = true
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	done := metrics.TimeOp("db_ping")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "database ping failed")
	}
	success = true
	return nil
}

// LocalPath returns the filesystem path of a file-backed database, or ""
// for remote URLs. Used by the index freshness watcher.
func (s *Store) LocalPath() string {
	if !strings.HasPrefix(s.config.URL, "file:") {
		return ""
	}
	path := strings.TrimPrefix(s.config.URL, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}

// PoolStats publishes current connection pool gauges.
func (s *Store) PoolStats() {
	s.mu.RLock()
	db := s.db
	s.mu.RUnlock()
	if db == nil {
		return
	}
	stats := db.Stats()
	metrics.Default().ObservePoolStats(stats.InUse, stats.Idle)
}

// Close closes the database connection and any cached statements.
func (s *Store) Close() error {
	s.stmtMu.Lock()
	for _, stmt := range s.stmtCache {
		_ = stmt.Close()
	}
	s.stmtCache = make(map[string]*sql.Stmt)
	s.stmtMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return errors.Wrap(err, "failed to close database")
	}
	return nil
}
