package statstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/metrics"
)

// teamRow resolves a team by canonical name or abbreviation.
func (s *Store) teamRow(ctx context.Context, db *sql.DB, team string) (id int64, name, abbrev string, err error) {
	stmt, err := s.getPreparedStmt(ctx, db, "SELECT team_id, team_name, team_abbrev FROM teams WHERE team_abbrev = ? OR team_name = ?")
	if err != nil {
		return 0, "", "", err
	}
	if err := stmt.QueryRowContext(ctx, team, team).Scan(&id, &name, &abbrev); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", "", errors.Wrapf(ErrNotFound, "team %q", team)
		}
		return 0, "", "", errors.Wrapf(err, "failed to look up team %q", team)
	}
	return id, name, abbrev, nil
}

// seasonID resolves a season string to its id.
func (s *Store) seasonID(ctx context.Context, db *sql.DB, season string) (int64, error) {
	stmt, err := s.getPreparedStmt(ctx, db, "SELECT season_id FROM seasons WHERE season = ?")
	if err != nil {
		return 0, err
	}
	var id int64
	if err := stmt.QueryRowContext(ctx, season).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errors.Wrapf(ErrNotFound, "season %q", season)
		}
		return 0, errors.Wrapf(err, "failed to look up season %q", season)
	}
	return id, nil
}

// teamSeasonAggregates computes a team's win/loss and scoring aggregates
// across one season's completed games.
func (s *Store) teamSeasonAggregates(ctx context.Context, db *sql.DB, teamID, seasonID int64) (games, wins int, ptsFor, ptsAgainst int, err error) {
	// Placeholder 0-0 rows are games whose scores have not been imported yet.
	stmt, err := s.getPreparedStmt(ctx, db, `SELECT
            COUNT(*),
            COALESCE(SUM(CASE
                WHEN g.home_team_id = ? AND g.home_win = 1 THEN 1
                WHEN g.away_team_id = ? AND g.home_win = 0 THEN 1
                ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN g.home_team_id = ? THEN g.home_score ELSE g.away_score END), 0),
            COALESCE(SUM(CASE WHEN g.home_team_id = ? THEN g.away_score ELSE g.home_score END), 0)
        FROM games g
        WHERE g.season_id = ?
          AND (g.home_team_id = ? OR g.away_team_id = ?)
          AND g.home_score + g.away_score > 0`)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	err = stmt.QueryRowContext(ctx, teamID, teamID, teamID, teamID, seasonID, teamID, teamID).
		Scan(&games, &wins, &ptsFor, &ptsAgainst)
	if err != nil {
		return 0, 0, 0, 0, errors.Wrap(err, "failed to aggregate team season")
	}
	return games, wins, ptsFor, ptsAgainst, nil
}

func buildTeamSeasonLine(teamID int64, name, abbrev, season string, games, wins, ptsFor, ptsAgainst int) apptype.TeamSeasonLine {
	line := apptype.TeamSeasonLine{
		TeamID:     teamID,
		TeamName:   name,
		TeamAbbrev: abbrev,
		Season:     season,
		Wins:       wins,
		Losses:     games - wins,
	}
	if games > 0 {
		line.WinPct = float64(wins) / float64(games)
		line.PointsPerGame = float64(ptsFor) / float64(games)
		line.OpponentPPG = float64(ptsAgainst) / float64(games)
		line.PointDifferential = line.PointsPerGame - line.OpponentPPG
	}
	return line
}

// TeamSeasonComparison compares two teams across one season. Teams are
// accepted by canonical name or abbreviation. includeGameLogs adds the
// head-to-head meetings, most recent first, limited to lastN when > 0.
func (s *Store) TeamSeasonComparison(ctx context.Context, team1, team2, season string, includeGameLogs bool, lastN int) (*apptype.TeamComparison, error) {
	done := metrics.TimeOp("db_team_comparison")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	id1, name1, abbrev1, err := s.teamRow(ctx, db, team1)
	if err != nil {
		return nil, err
	}
	id2, name2, abbrev2, err := s.teamRow(ctx, db, team2)
	if err != nil {
		return nil, err
	}
	sid, err := s.seasonID(ctx, db, season)
	if err != nil {
		return nil, err
	}

	g1, w1, pf1, pa1, err := s.teamSeasonAggregates(ctx, db, id1, sid)
	if err != nil {
		return nil, err
	}
	g2, w2, pf2, pa2, err := s.teamSeasonAggregates(ctx, db, id2, sid)
	if err != nil {
		return nil, err
	}

	cmp := &apptype.TeamComparison{
		Season: season,
		Team1:  buildTeamSeasonLine(id1, name1, abbrev1, season, g1, w1, pf1, pa1),
		Team2:  buildTeamSeasonLine(id2, name2, abbrev2, season, g2, w2, pf2, pa2),
	}

	if includeGameLogs {
		logs, err := s.meetingLogs(ctx, db, id1, id2, sid, season, lastN)
		if err != nil {
			return nil, err
		}
		cmp.GameLogs = logs
	}
	success = true
	return cmp, nil
}

// meetingLogs lists games between the two teams within one season.
func (s *Store) meetingLogs(ctx context.Context, db *sql.DB, id1, id2, seasonID int64, season string, lastN int) ([]apptype.TeamGameLog, error) {
	var q strings.Builder
	q.WriteString(`SELECT
            g.game_id, g.game_date,
            ht.team_name, at.team_name,
            g.home_score, g.away_score, g.home_win, g.game_type
        FROM games g
        JOIN teams ht ON g.home_team_id = ht.team_id
        JOIN teams at ON g.away_team_id = at.team_id
        WHERE g.season_id = ?
          AND ((g.home_team_id = ? AND g.away_team_id = ?) OR (g.home_team_id = ? AND g.away_team_id = ?))
        ORDER BY g.game_date DESC`)
	params := []any{seasonID, id1, id2, id2, id1}
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
		return nil, errors.Wrap(err, "failed to query team game logs")
	}
	defer rows.Close()

	var logs []apptype.TeamGameLog
	for rows.Next() {
		var l apptype.TeamGameLog
		var gameType sql.NullString
		if err := rows.Scan(&l.GameID, &l.GameDate, &l.HomeTeamName, &l.AwayTeamName,
			&l.HomeScore, &l.AwayScore, &l.HomeWin, &gameType); err != nil {
			return nil, errors.Wrap(err, "failed to scan team game log")
		}
		l.Season = season
		l.GameType = gameType.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// TeamHeadToHeadGameLogs lists meetings between two teams, most recent
// first. season "" spans all seasons; lastN > 0 limits the result.
func (s *Store) TeamHeadToHeadGameLogs(ctx context.Context, team1, team2, season string, lastN int) ([]apptype.TeamGameLog, error) {
	done := metrics.TimeOp("db_team_game_logs")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	id1, _, _, err := s.teamRow(ctx, db, team1)
	if err != nil {
		return nil, err
	}
	id2, _, _, err := s.teamRow(ctx, db, team2)
	if err != nil {
		return nil, err
	}

	var q strings.Builder
	q.WriteString(`SELECT
            g.game_id, g.game_date, s.season,
            ht.team_name, at.team_name,
            g.home_score, g.away_score, g.home_win, g.game_type
        FROM games g
        JOIN seasons s ON g.season_id = s.season_id
        JOIN teams ht ON g.home_team_id = ht.team_id
        JOIN teams at ON g.away_team_id = at.team_id
        WHERE ((g.home_team_id = ? AND g.away_team_id = ?) OR (g.home_team_id = ? AND g.away_team_id = ?))`)
	params := []any{id1, id2, id2, id1}
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
		return nil, errors.Wrap(err, "failed to query head-to-head team logs")
	}
	defer rows.Close()

	var logs []apptype.TeamGameLog
	for rows.Next() {
		var l apptype.TeamGameLog
		var gameType sql.NullString
		if err := rows.Scan(&l.GameID, &l.GameDate, &l.Season, &l.HomeTeamName, &l.AwayTeamName,
			&l.HomeScore, &l.AwayScore, &l.HomeWin, &gameType); err != nil {
			return nil, errors.Wrap(err, "failed to scan team game log")
		}
		l.GameType = gameType.String
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	success = true
	return logs, nil
}
