// Package statpad provides a library-first API for the query engine and the
// typed lookups behind it, without the HTTP or MCP transports. Both
// transports and the CLI compose the same Service.
package statpad

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/logger"
	"github.com/Chrisc1124/statpad/internal/nlq"
	"github.com/Chrisc1124/statpad/internal/statstore"
)

// Service owns the stats store, the query engine, and the optional index
// freshness watcher.
type Service struct {
	store   *statstore.Store
	engine  *nlq.Engine
	watcher *indexWatcher
}

// New opens the database, builds the entity index, and starts the freshness
// watcher when configured. The context bounds the initial index build.
func New(ctx context.Context, cfg *Config) (*Service, error) {
	store, err := statstore.NewStore(cfg.storeConfig())
	if err != nil {
		return nil, err
	}
	engine, err := nlq.NewEngine(ctx, store, cfg.engineOptions())
	if err != nil {
		store.Close()
		return nil, err
	}

	s := &Service{store: store, engine: engine}
	if cfg.WatchIndex {
		if path := store.LocalPath(); path != "" {
			w, err := newIndexWatcher(path, cfg.WatchDebounce, s.refreshForWatcher)
			if err != nil {
				store.Close()
				return nil, errors.Wrap(err, "start index watcher")
			}
			s.watcher = w
		} else {
			logger.Named("statpad").Infow("index watcher disabled for remote database",
				"url", cfg.DatabaseURL)
		}
	}
	return s, nil
}

// Close stops the watcher and releases the database.
func (s *Service) Close() error {
	if s.watcher != nil {
		s.watcher.Close()
	}
	return s.store.Close()
}

// ProcessQuery answers one free-text question. Every outcome comes back as
// a ResultEnvelope, including interpretation failures and missing data.
func (s *Service) ProcessQuery(ctx context.Context, text string) nlq.ResultEnvelope {
	return s.engine.ProcessQuery(ctx, text)
}

// Interpret exposes the typed interpretation of text without executing it.
func (s *Service) Interpret(text string) (*nlq.Query, error) {
	return s.engine.Interpret(text)
}

// ResolveName maps a name fragment to the canonical name of exactly one
// known entity of the given kind. Misses and ties are *nlq.QueryError
// values with user-facing messages.
func (s *Service) ResolveName(fragment string, kind apptype.EntityKind) (string, error) {
	return s.engine.ResolveName(fragment, kind)
}

// PlayerSeasonStats returns one player's line for one season.
func (s *Service) PlayerSeasonStats(ctx context.Context, player, season string) (*apptype.PlayerSeasonLine, error) {
	return s.store.PlayerSeasonStats(ctx, player, season)
}

// PlayerAllSeasons returns every recorded season line for a player, newest
// first.
func (s *Service) PlayerAllSeasons(ctx context.Context, player string) ([]apptype.PlayerSeasonLine, error) {
	return s.store.PlayerAllSeasons(ctx, player)
}

// HeadToHeadGameLogs returns the games in which both players appeared on
// opposing teams, most recent first.
func (s *Service) HeadToHeadGameLogs(ctx context.Context, player1, player2, season string, lastN int) ([]apptype.HeadToHeadLog, error) {
	return s.store.HeadToHeadGameLogs(ctx, player1, player2, season, lastN)
}

// TeamSeasonComparison returns both teams' season aggregates, optionally
// with the meetings between them.
func (s *Service) TeamSeasonComparison(ctx context.Context, team1, team2, season string, includeGameLogs bool, lastN int) (*apptype.TeamComparison, error) {
	return s.store.TeamSeasonComparison(ctx, team1, team2, season, includeGameLogs, lastN)
}

// TeamHeadToHeadGameLogs returns the meetings between two teams, most
// recent first.
func (s *Service) TeamHeadToHeadGameLogs(ctx context.Context, team1, team2, season string, lastN int) ([]apptype.TeamGameLog, error) {
	return s.store.TeamHeadToHeadGameLogs(ctx, team1, team2, season, lastN)
}

// KnownNames returns the resolvable names of one pool, as the index loader
// sees them.
func (s *Service) KnownNames(ctx context.Context, kind apptype.EntityKind) ([]apptype.NameEntry, error) {
	return s.store.AllKnownNames(ctx, kind)
}

// RefreshEntityIndex rebuilds both name pools and atomically publishes the
// new snapshot.
func (s *Service) RefreshEntityIndex(ctx context.Context) (players, teams int, err error) {
	return s.engine.RefreshIndex(ctx)
}

// IndexCounts reports the live index snapshot's pool sizes.
func (s *Service) IndexCounts() (players, teams int) {
	return s.engine.IndexCounts()
}

// Ping verifies the database connection.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// PoolStats publishes the connection pool gauges.
func (s *Service) PoolStats() {
	s.store.PoolStats()
}

// refreshForWatcher is the watcher's debounced callback. Rebuild failures
// are logged, never fatal; the engine keeps serving the previous snapshot.
func (s *Service) refreshForWatcher() {
	players, teams, err := s.engine.RefreshIndex(context.Background())
	if err != nil {
		logger.Named("statpad").Warnw("index refresh after database change failed", "error", err)
		return
	}
	logger.Named("statpad").Infow("index refreshed after database change",
		"players", players, "teams", teams)
}
