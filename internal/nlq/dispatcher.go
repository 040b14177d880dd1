package nlq

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/logger"
)

// StatsReader is the slice of the stats store the dispatcher needs. The
// store is handed in, never reached for ambiently.
type StatsReader interface {
	PlayerSeasonStats(ctx context.Context, playerName, season string) (*apptype.PlayerSeasonLine, error)
	HeadToHeadGameLogs(ctx context.Context, player1, player2, season string, lastN int) ([]apptype.HeadToHeadLog, error)
	TeamSeasonComparison(ctx context.Context, team1, team2, season string, includeGameLogs bool, lastN int) (*apptype.TeamComparison, error)
	TeamHeadToHeadGameLogs(ctx context.Context, team1, team2, season string, lastN int) ([]apptype.TeamGameLog, error)
}

const defaultQueryTimeout = 5 * time.Second

const timeoutMessage = "The stats store took too long to respond. Please try again."

// Dispatcher executes a typed Query with one store lookup under one bounded
// timeout. No retries: a timeout or an empty result folds into an error
// envelope.
type Dispatcher struct {
	store   StatsReader
	timeout time.Duration
}

// NewDispatcher binds the store and the per-query timeout.
func NewDispatcher(store StatsReader, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Dispatcher{store: store, timeout: timeout}
}

// Dispatch runs q and folds the outcome into an envelope. Store faults
// never escape; they are logged and reported as unavailable data.
func (d *Dispatcher) Dispatch(ctx context.Context, q *Query, original string) ResultEnvelope {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	switch q.Kind {
	case IntentPlayerStats:
		return d.playerStats(ctx, q, original)
	case IntentPlayerComparisonSeason:
		return d.playerComparison(ctx, q, original)
	case IntentPlayerComparisonGameLogs:
		return d.playerGameLogs(ctx, q, original)
	case IntentTeamComparisonSeason:
		return d.teamComparison(ctx, q, original)
	case IntentTeamComparisonGameLogs:
		return d.teamGameLogs(ctx, q, original)
	default:
		return ErrorEnvelope(original, newUnrecognizedError().Error())
	}
}

func (d *Dispatcher) playerStats(ctx context.Context, q *Query, original string) ResultEnvelope {
	name := q.Entities[0].Name
	line, err := d.store.PlayerSeasonStats(ctx, name, q.Season)
	if err != nil {
		return d.unavailable(original, err,
			fmt.Sprintf("No stats found for %s in season %s.", name, q.Season))
	}
	return ResultEnvelope{
		Type:          q.Kind.EnvelopeType(),
		OriginalQuery: original,
		Data:          apptype.PlayerStatsResult{Stats: line},
	}
}

func (d *Dispatcher) playerComparison(ctx context.Context, q *Query, original string) ResultEnvelope {
	name1, name2 := q.Entities[0].Name, q.Entities[1].Name
	line1, err := d.store.PlayerSeasonStats(ctx, name1, q.Season)
	if err != nil {
		return d.unavailable(original, err,
			fmt.Sprintf("No stats found for %s in season %s.", name1, q.Season))
	}
	line2, err := d.store.PlayerSeasonStats(ctx, name2, q.Season)
	if err != nil {
		return d.unavailable(original, err,
			fmt.Sprintf("No stats found for %s in season %s.", name2, q.Season))
	}
	return ResultEnvelope{
		Type:          q.Kind.EnvelopeType(),
		OriginalQuery: original,
		Data:          apptype.PlayerComparison{Season: q.Season, Player1: line1, Player2: line2},
	}
}

func (d *Dispatcher) playerGameLogs(ctx context.Context, q *Query, original string) ResultEnvelope {
	name1, name2 := q.Entities[0].Name, q.Entities[1].Name
	logs, err := d.store.HeadToHeadGameLogs(ctx, name1, name2, "", q.LastN)
	if err != nil || len(logs) == 0 {
		return d.unavailable(original, err,
			fmt.Sprintf("No head-to-head games found for %s and %s.", name1, name2))
	}
	return ResultEnvelope{
		Type:          q.Kind.EnvelopeType(),
		OriginalQuery: original,
		Data: apptype.HeadToHeadResult{
			Player1:  name1,
			Player2:  name2,
			LastN:    q.LastN,
			GameLogs: logs,
		},
	}
}

func (d *Dispatcher) teamComparison(ctx context.Context, q *Query, original string) ResultEnvelope {
	name1, name2 := q.Entities[0].Name, q.Entities[1].Name
	cmp, err := d.store.TeamSeasonComparison(ctx, name1, name2, q.Season, true, 0)
	if err != nil {
		return d.unavailable(original, err,
			fmt.Sprintf("No games found for %s or %s in season %s.", name1, name2, q.Season))
	}
	if teamGames(cmp.Team1) == 0 && teamGames(cmp.Team2) == 0 {
		return d.unavailable(original, nil,
			fmt.Sprintf("No games found for %s or %s in season %s.", name1, name2, q.Season))
	}
	return ResultEnvelope{
		Type:          q.Kind.EnvelopeType(),
		OriginalQuery: original,
		Data:          *cmp,
	}
}

func (d *Dispatcher) teamGameLogs(ctx context.Context, q *Query, original string) ResultEnvelope {
	name1, name2 := q.Entities[0].Name, q.Entities[1].Name
	logs, err := d.store.TeamHeadToHeadGameLogs(ctx, name1, name2, "", q.LastN)
	if err != nil || len(logs) == 0 {
		return d.unavailable(original, err,
			fmt.Sprintf("No games found between %s and %s.", name1, name2))
	}
	return ResultEnvelope{
		Type:          q.Kind.EnvelopeType(),
		OriginalQuery: original,
		Data: apptype.TeamGameLogsResult{
			Team1:    name1,
			Team2:    name2,
			LastN:    q.LastN,
			GameLogs: logs,
		},
	}
}

func teamGames(line apptype.TeamSeasonLine) int {
	return line.Wins + line.Losses
}

// unavailable folds a store failure or empty result into an error envelope.
// Timeouts get their own message; anything else is reported as missing data
// and logged for the operator.
func (d *Dispatcher) unavailable(original string, err error, message string) ResultEnvelope {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrorEnvelope(original, timeoutMessage)
		}
		logger.Named("nlq").Debugw("store lookup failed", "error", err, "query", original)
	}
	return ErrorEnvelope(original, message)
}
