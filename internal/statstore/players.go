package statstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/metrics"
)

// selectSeasonLine is the shared projection for player season rows.
const selectSeasonLine = `SELECT
        p.player_id, p.name, p.position, t.team_name, t.team_abbrev, s.season,
        ps.games_played, ps.wins, ps.losses,
        ps.minutes_per_game, ps.points_per_game,
        ps.field_goals_made, ps.field_goals_attempted, ps.field_goal_percentage,
        ps.three_pointers_made, ps.three_pointers_attempted, ps.three_point_percentage,
        ps.free_throws_made, ps.free_throws_attempted, ps.free_throw_percentage,
        ps.offensive_rebounds, ps.defensive_rebounds, ps.total_rebounds,
        ps.assists, ps.turnovers, ps.steals, ps.blocks, ps.personal_fouls,
        ps.fantasy_points, ps.double_doubles, ps.triple_doubles, ps.plus_minus,
        ps.true_shooting_percentage
    FROM players p
    JOIN player_stats ps ON p.player_id = ps.player_id
    JOIN seasons s ON ps.season_id = s.season_id
    LEFT JOIN teams t ON ps.team_id = t.team_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeasonLine(row rowScanner) (*apptype.PlayerSeasonLine, error) {
	var line apptype.PlayerSeasonLine
	var position, teamName, teamAbbrev sql.NullString
	err := row.Scan(
		&line.PlayerID, &line.Name, &position, &teamName, &teamAbbrev, &line.Season,
		&line.GamesPlayed, &line.Wins, &line.Losses,
		&line.MinutesPerGame, &line.PointsPerGame,
		&line.FieldGoalsMade, &line.FieldGoalsAttempted, &line.FieldGoalPct,
		&line.ThreePointersMade, &line.ThreePointersAttempted, &line.ThreePointPct,
		&line.FreeThrowsMade, &line.FreeThrowsAttempted, &line.FreeThrowPct,
		&line.OffensiveRebounds, &line.DefensiveRebounds, &line.TotalRebounds,
		&line.Assists, &line.Turnovers, &line.Steals, &line.Blocks, &line.PersonalFouls,
		&line.FantasyPoints, &line.DoubleDoubles, &line.TripleDoubles, &line.PlusMinus,
		&line.TrueShootingPct,
	)
	if err != nil {
		return nil, err
	}
	line.Position = position.String
	line.TeamName = teamName.String
	line.TeamAbbrev = teamAbbrev.String
	return &line, nil
}

// PlayerSeasonStats returns a player's line for one season.
func (s *Store) PlayerSeasonStats(ctx context.Context, playerName, season string) (*apptype.PlayerSeasonLine, error) {
	done := metrics.TimeOp("db_player_season_stats")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	stmt, err := s.getPreparedStmt(ctx, db, selectSeasonLine+" WHERE p.name = ? AND s.season = ?")
	if err != nil {
		return nil, err
	}
	line, err := scanSeasonLine(stmt.QueryRowContext(ctx, playerName, season))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "no stats for %q in season %s", playerName, season)
		}
		return nil, errors.Wrapf(err, "failed to query season stats for %q", playerName)
	}
	success = true
	return line, nil
}

// PlayerAllSeasons returns every season line recorded for a player, most
// recent season first.
func (s *Store) PlayerAllSeasons(ctx context.Context, playerName string) ([]apptype.PlayerSeasonLine, error) {
	done := metrics.TimeOp("db_player_all_seasons")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	stmt, err := s.getPreparedStmt(ctx, db, selectSeasonLine+" WHERE p.name = ? ORDER BY s.start_year DESC")
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, playerName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query seasons for %q", playerName)
	}
	defer rows.Close()

	var lines []apptype.PlayerSeasonLine
	for rows.Next() {
		line, err := scanSeasonLine(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan season line")
		}
		lines = append(lines, *line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "no stats recorded for %q", playerName)
	}
	success = true
	return lines, nil
}

// playerID resolves a player name to its id.
func (s *Store) playerID(ctx context.Context, db *sql.DB, name string) (int64, error) {
	stmt, err := s.getPreparedStmt(ctx, db, "SELECT player_id FROM players WHERE name = ?")
	if err != nil {
		return 0, err
	}
	var id int64
	if err := stmt.QueryRowContext(ctx, name).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errors.Wrapf(ErrNotFound, "player %q", name)
		}
		return 0, errors.Wrapf(err, "failed to look up player %q", name)
	}
	return id, nil
}

// HeadToHeadGameLogs returns games in which both players appeared on
// opposing teams, most recent first. season "" spans all seasons; lastN > 0
// limits the result.
func (s *Store) HeadToHeadGameLogs(ctx context.Context, player1, player2, season string, lastN int) ([]apptype.HeadToHeadLog, error) {
	done := metrics.TimeOp("db_head_to_head_logs")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	id1, err := s.playerID(ctx, db, player1)
	if err != nil {
		return nil, err
	}
	id2, err := s.playerID(ctx, db, player2)
	if err != nil {
		return nil, err
	}

	var q strings.Builder
	q.WriteString(`SELECT
            g.game_id, g.game_date, s.season,
            ht.team_name, ht.team_abbrev, at.team_name, at.team_abbrev,
            g.home_score, g.away_score, g.home_win, g.game_type,
            gs1.points, gs1.total_rebounds, gs1.assists,
            gs2.points, gs2.total_rebounds, gs2.assists
        FROM games g
        JOIN seasons s ON g.season_id = s.season_id
        JOIN teams ht ON g.home_team_id = ht.team_id
        JOIN teams at ON g.away_team_id = at.team_id
        JOIN game_stats gs1 ON g.game_id = gs1.game_id AND gs1.player_id = ?
        JOIN game_stats gs2 ON g.game_id = gs2.game_id AND gs2.player_id = ?
        WHERE gs1.team_id != gs2.team_id`)
	params := []any{id1, id2}

	if season != "" {
		q.WriteString(" AND s.season = ?")
		params = append(params, season)
	}
	q.WriteString(" ORDER BY g.game_date DESC")
	if lastN > 0 {
		q.WriteString(" LIMIT ?")
		params = append(params, lastN)
	}

	stmt, err := s.getPreparedStmt(ctx, db, q.String())
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, params...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query head-to-head game logs")
	}
	defer rows.Close()

	var logs []apptype.HeadToHeadLog
	for rows.Next() {
		var l apptype.HeadToHeadLog
		var gameType sql.NullString
		if err := rows.Scan(
			&l.GameID, &l.GameDate, &l.Season,
			&l.HomeTeamName, &l.HomeTeamAbbrev, &l.AwayTeamName, &l.AwayTeamAbbrev,
			&l.HomeScore, &l.AwayScore, &l.HomeWin, &gameType,
			&l.Player1.Points, &l.Player1.Rebounds, &l.Player1.Assists,
			&l.Player2.Points, &l.Player2.Rebounds, &l.Player2.Assists,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan game log")
		}
		l.GameType = gameType.String
		l.Player1.PlayerID = id1
		l.Player1.Name = player1
		l.Player2.PlayerID = id2
		l.Player2.Name = player2
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	success = true
	return logs, nil
}
