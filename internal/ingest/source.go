// Package ingest loads league data into the stats store. A Source delivers
// teams, rosters, season averages, and game logs for one season at a time;
// the Importer drives a Source through the store's two-pass write path.
package ingest

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/config"
	"github.com/Chrisc1124/statpad/internal/statstore"
)

// Source is a pluggable data provider. Implementations must be safe for
// concurrent use. Seasons use the canonical "YYYY-YY" form.
type Source interface {
	// Teams returns every franchise the source knows about.
	Teams(ctx context.Context) ([]apptype.Team, error)

	// Players returns the rosters active in the given season.
	Players(ctx context.Context, season string) ([]apptype.Player, error)

	// PlayerSeasonAverages returns per-player season lines.
	PlayerSeasonAverages(ctx context.Context, season string) ([]apptype.PlayerSeasonLine, error)

	// PlayerGameLogs returns one row per player per game, with home and
	// away sides already resolved to team abbreviations.
	PlayerGameLogs(ctx context.Context, season string) ([]statstore.GameStatRow, error)

	// TeamGameLogs returns one row per team per game carrying that team's
	// final score, for the pass that fills in the 0-0 placeholders.
	TeamGameLogs(ctx context.Context, season string) ([]statstore.TeamScoreRow, error)
}

// NewFromConfig builds the configured source. Returns nil when ingestion is
// not configured, which callers should treat as "feature off".
func NewFromConfig(cfg *config.Config) (Source, error) {
	switch cfg.Ingest.Source {
	case "api":
		return newAPISource(cfg.Ingest)
	case "csv":
		return newCSVSource(cfg.Ingest.CSVDir)
	case "":
		return nil, nil
	default:
		return nil, errors.Newf("unknown ingest source %q", cfg.Ingest.Source)
	}
}
