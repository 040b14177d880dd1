// Package httpapi serves the REST surface: free-text queries plus the typed
// lookups behind them, with request-id tagged access logs.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/config"
	"github.com/Chrisc1124/statpad/internal/logger"
	"github.com/Chrisc1124/statpad/internal/nlq"
)

// Backend is the service surface the routes expose. Typed lookups take
// exact names; free text goes through ProcessQuery.
type Backend interface {
	ProcessQuery(ctx context.Context, text string) nlq.ResultEnvelope
	PlayerSeasonStats(ctx context.Context, player, season string) (*apptype.PlayerSeasonLine, error)
	PlayerAllSeasons(ctx context.Context, player string) ([]apptype.PlayerSeasonLine, error)
	HeadToHeadGameLogs(ctx context.Context, player1, player2, season string, lastN int) ([]apptype.HeadToHeadLog, error)
	TeamSeasonComparison(ctx context.Context, team1, team2, season string, includeGameLogs bool, lastN int) (*apptype.TeamComparison, error)
	Ping(ctx context.Context) error
}

type Server struct {
	backend Backend
	cfg     config.ServerConfig
	log     *zap.SugaredLogger
	extra   map[string]http.Handler
}

func New(backend Backend, cfg config.ServerConfig) *Server {
	return &Server{backend: backend, cfg: cfg, log: logger.Named("httpapi")}
}

// Mount registers an additional handler on the root mux, outside the REST
// middleware chain. Streaming endpoints (the SSE MCP transport) register
// here; their connections outlive the write deadline, so Run drops it when
// anything is mounted.
func (s *Server) Mount(pattern string, h http.Handler) {
	if s.extra == nil {
		s.extra = make(map[string]http.Handler)
	}
	s.extra[pattern] = h
}

// Handler builds the route tree wrapped in the middleware chain. Recovery
// sits innermost so the access log still sees a 500 from a panic. Mounted
// extras sit beside the chain, not inside it.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /players/{name}/seasons/{season}", s.handlePlayerSeason)
	mux.HandleFunc("GET /players/{name}/stats", s.handlePlayerAllSeasons)
	mux.HandleFunc("GET /compare/players/{a}/{b}/seasons/{season}", s.handleComparePlayers)
	mux.HandleFunc("GET /compare/players/{a}/{b}/games", s.handleHeadToHead)
	mux.HandleFunc("GET /compare/teams/{a}/{b}/seasons/{season}", s.handleCompareTeams)
	api := s.withRequestID(s.withAccessLog(s.withRecovery(mux)))
	if len(s.extra) == 0 {
		return api
	}
	root := http.NewServeMux()
	for pattern, h := range s.extra {
		root.Handle(pattern, h)
	}
	root.Handle("/", api)
	return root
}

// Run serves until ctx is canceled, then drains in-flight requests within
// the configured grace period.
func (s *Server) Run(ctx context.Context) error {
	writeTimeout := time.Duration(s.cfg.WriteTimeoutMs) * time.Millisecond
	if len(s.extra) > 0 {
		writeTimeout = 0
	}
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("http api listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	grace := time.Duration(s.cfg.ShutdownGraceMs) * time.Millisecond
	if grace <= 0 {
		grace = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http server shutdown")
	}
	s.log.Infow("http api stopped")
	return nil
}
