package ingest

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/logger"
	"github.com/Chrisc1124/statpad/internal/metrics"
	"github.com/Chrisc1124/statpad/internal/statstore"
)

// Store is the slice of the stats store the importer writes through.
type Store interface {
	SeedSeasons(ctx context.Context) (int, error)
	UpsertTeams(ctx context.Context, teams []apptype.Team) (int, error)
	UpsertPlayers(ctx context.Context, players []apptype.Player) (int, error)
	UpsertPlayerSeasonStats(ctx context.Context, season string, lines []apptype.PlayerSeasonLine) (int, error)
	UpsertGameStats(ctx context.Context, season string, stats []statstore.GameStatRow) (int, error)
	UpdateGameScores(ctx context.Context, season string, scores []statstore.TeamScoreRow) (int, error)
}

// Import phases, in the order they run.
const (
	PhaseSeasons     = "seasons"
	PhaseTeams       = "teams"
	PhasePlayers     = "players"
	PhaseSeasonStats = "season_stats"
	PhaseGameStats   = "game_stats"
	PhaseScores      = "scores"
)

// Progress reports one completed phase. Season is empty for the phases
// that are not per-season.
type Progress struct {
	Phase  string
	Season string
	Count  int
}

// ProgressFunc receives phase completions. May be nil.
type ProgressFunc func(Progress)

// Summary totals one import run.
type Summary struct {
	Seasons     int
	Teams       int
	Players     int
	SeasonLines int
	BoxRows     int
	ScoreRows   int
}

// Importer drives a Source through the store's write path.
type Importer struct {
	store    Store
	src      Source
	progress ProgressFunc
	log      *zap.SugaredLogger
}

func NewImporter(store Store, src Source, progress ProgressFunc) *Importer {
	return &Importer{store: store, src: src, progress: progress, log: logger.Named("ingest")}
}

func (im *Importer) report(phase, season string, count int) {
	im.log.Infow("import phase complete", "phase", phase, "season", season, "count", count)
	if im.progress != nil {
		im.progress(Progress{Phase: phase, Season: season, Count: count})
	}
}

// Run imports the given seasons in order. Within a season the score pass
// always follows the box-score pass, because box scores create the game
// rows the score pass updates.
func (im *Importer) Run(ctx context.Context, seasons []string) (*Summary, error) {
	done := metrics.TimeOp("ingest_run")
	success := false
	defer func() { done(success) }()

	sum := &Summary{}

	n, err := im.store.SeedSeasons(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to seed seasons")
	}
	sum.Seasons = n
	im.report(PhaseSeasons, "", n)

	teams, err := im.src.Teams(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch teams")
	}
	n, err = im.store.UpsertTeams(ctx, teams)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store teams")
	}
	sum.Teams = n
	im.report(PhaseTeams, "", n)

	for _, season := range seasons {
		if err := im.runSeason(ctx, season, sum); err != nil {
			return nil, errors.Wrapf(err, "season %s", season)
		}
	}
	success = true
	return sum, nil
}

func (im *Importer) runSeason(ctx context.Context, season string, sum *Summary) error {
	players, err := im.src.Players(ctx, season)
	if err != nil {
		return errors.Wrap(err, "failed to fetch players")
	}
	n, err := im.store.UpsertPlayers(ctx, players)
	if err != nil {
		return errors.Wrap(err, "failed to store players")
	}
	sum.Players += n
	im.report(PhasePlayers, season, n)

	lines, err := im.src.PlayerSeasonAverages(ctx, season)
	if err != nil {
		return errors.Wrap(err, "failed to fetch season averages")
	}
	n, err = im.store.UpsertPlayerSeasonStats(ctx, season, lines)
	if err != nil {
		return errors.Wrap(err, "failed to store season averages")
	}
	sum.SeasonLines += n
	im.report(PhaseSeasonStats, season, n)

	boxes, err := im.src.PlayerGameLogs(ctx, season)
	if err != nil {
		return errors.Wrap(err, "failed to fetch player game logs")
	}
	n, err = im.store.UpsertGameStats(ctx, season, boxes)
	if err != nil {
		return errors.Wrap(err, "failed to store game stats")
	}
	sum.BoxRows += n
	im.report(PhaseGameStats, season, n)

	scores, err := im.src.TeamGameLogs(ctx, season)
	if err != nil {
		return errors.Wrap(err, "failed to fetch team game logs")
	}
	n, err = im.store.UpdateGameScores(ctx, season, scores)
	if err != nil {
		return errors.Wrap(err, "failed to store game scores")
	}
	sum.ScoreRows += n
	im.report(PhaseScores, season, n)
	return nil
}
