package statstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/metrics"
)

// GameStatRow is one player box score as delivered by an ingest source,
// keyed by names rather than ids.
type GameStatRow struct {
	PlayerName string
	TeamAbbrev string
	GameDate   string
	HomeAbbrev string
	AwayAbbrev string
	GameType   string

	MinutesPlayed          float64
	Points                 int
	FieldGoalsMade         int
	FieldGoalsAttempted    int
	ThreePointersMade      int
	ThreePointersAttempted int
	FreeThrowsMade         int
	FreeThrowsAttempted    int
	OffensiveRebounds      int
	DefensiveRebounds      int
	TotalRebounds          int
	Assists                int
	Turnovers              int
	Steals                 int
	Blocks                 int
	PersonalFouls          int
	PlusMinus              int
}

// TeamScoreRow carries one team's final score in one game, used to fill in
// the scores the box-score pass left at 0-0.
type TeamScoreRow struct {
	GameDate   string
	HomeAbbrev string
	AwayAbbrev string
	TeamAbbrev string
	Points     int
}

func getOrCreatePlayerTx(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT player_id FROM players WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, errors.Wrapf(err, "failed to look up player %q", name)
	}
	res, err := tx.ExecContext(ctx, "INSERT INTO players (name) VALUES (?)", name)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create player %q", name)
	}
	return res.LastInsertId()
}

func teamIDTx(ctx context.Context, tx *sql.Tx, cache map[string]int64, abbrev string) (int64, error) {
	if abbrev == "" {
		return 0, errors.Wrap(ErrNotFound, "empty team abbreviation")
	}
	if id, ok := cache[abbrev]; ok {
		return id, nil
	}
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT team_id FROM teams WHERE team_abbrev = ?", abbrev).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errors.Wrapf(ErrNotFound, "team %q", abbrev)
		}
		return 0, errors.Wrapf(err, "failed to look up team %q", abbrev)
	}
	cache[abbrev] = id
	return id, nil
}

func getOrCreateGameTx(ctx context.Context, tx *sql.Tx, seasonID int64, gameDate string, homeID, awayID int64, gameType string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		"SELECT game_id FROM games WHERE season_id = ? AND game_date = ? AND home_team_id = ? AND away_team_id = ?",
		seasonID, gameDate, homeID, awayID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, errors.Wrap(err, "failed to look up game")
	}
	if gameType == "" {
		gameType = "Regular Season"
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO games (season_id, game_date, home_team_id, away_team_id, home_score, away_score, home_win, game_type) VALUES (?, ?, ?, ?, 0, 0, 0, ?)",
		seasonID, gameDate, homeID, awayID, gameType)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create game")
	}
	return res.LastInsertId()
}

// UpsertTeams inserts or updates team rows keyed by abbreviation.
func (s *Store) UpsertTeams(ctx context.Context, teams []apptype.Team) (int, error) {
	done := metrics.TimeOp("db_upsert_teams")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	count := 0
	for _, t := range teams {
		if strings.TrimSpace(t.Abbrev) == "" || strings.TrimSpace(t.Name) == "" {
			return 0, errors.Newf("team requires abbreviation and name, got %q/%q", t.Abbrev, t.Name)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE teams SET team_name = ?, conference = COALESCE(NULLIF(?, ''), conference),
                division = COALESCE(NULLIF(?, ''), division), city = COALESCE(NULLIF(?, ''), city),
                arena = COALESCE(NULLIF(?, ''), arena)
             WHERE team_abbrev = ?`,
			t.Name, t.Conference, t.Division, t.City, t.Arena, t.Abbrev)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to update team %q", t.Abbrev)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, errors.Wrap(err, "failed to get rows affected for update")
		}
		if affected == 0 {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO teams (team_abbrev, team_name, conference, division, city, arena) VALUES (?, ?, ?, ?, ?, ?)",
				t.Abbrev, t.Name, t.Conference, t.Division, t.City, t.Arena); err != nil {
				return 0, errors.Wrapf(err, "failed to insert team %q", t.Abbrev)
			}
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	success = true
	return count, nil
}

// UpsertPlayers inserts or updates roster rows keyed by player name.
func (s *Store) UpsertPlayers(ctx context.Context, players []apptype.Player) (int, error) {
	done := metrics.TimeOp("db_upsert_players")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	count := 0
	for _, p := range players {
		if strings.TrimSpace(p.Name) == "" {
			return 0, errors.New("player name must be a non-empty string")
		}
		var teamID any
		if p.TeamID > 0 {
			teamID = p.TeamID
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE players SET team_id = COALESCE(?, team_id), position = COALESCE(NULLIF(?, ''), position),
                age = COALESCE(NULLIF(?, 0), age), height = COALESCE(NULLIF(?, ''), height),
                weight = COALESCE(NULLIF(?, 0), weight), college = COALESCE(NULLIF(?, ''), college),
                draft_year = COALESCE(NULLIF(?, 0), draft_year), draft_pick = COALESCE(NULLIF(?, 0), draft_pick)
             WHERE name = ?`,
			teamID, p.Position, p.Age, p.Height, p.Weight, p.College, p.DraftYear, p.DraftPick, p.Name)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to update player %q", p.Name)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, errors.Wrap(err, "failed to get rows affected for update")
		}
		if affected == 0 {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO players (name, team_id, position, age, height, weight, college, draft_year, draft_pick) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
				p.Name, teamID, p.Position, p.Age, p.Height, p.Weight, p.College, p.DraftYear, p.DraftPick); err != nil {
				return 0, errors.Wrapf(err, "failed to insert player %q", p.Name)
			}
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	success = true
	return count, nil
}

// UpsertPlayerSeasonStats replaces season lines for one season. Unknown
// players are created; unknown team abbreviations leave the team unset.
func (s *Store) UpsertPlayerSeasonStats(ctx context.Context, season string, lines []apptype.PlayerSeasonLine) (int, error) {
	done := metrics.TimeOp("db_upsert_player_stats")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}
	seasonID, err := s.seasonID(ctx, db, season)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	teamCache := make(map[string]int64)
	count := 0
	for _, line := range lines {
		if strings.TrimSpace(line.Name) == "" {
			return 0, errors.New("season line missing player name")
		}
		playerID, err := getOrCreatePlayerTx(ctx, tx, line.Name)
		if err != nil {
			return 0, err
		}
		var teamID any
		if line.TeamAbbrev != "" {
			if id, err := teamIDTx(ctx, tx, teamCache, line.TeamAbbrev); err == nil {
				teamID = id
			}
		}

		_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO player_stats (
                player_id, season_id, team_id,
                games_played, wins, losses,
                minutes_per_game, points_per_game,
                field_goals_made, field_goals_attempted, field_goal_percentage,
                three_pointers_made, three_pointers_attempted, three_point_percentage,
                free_throws_made, free_throws_attempted, free_throw_percentage,
                offensive_rebounds, defensive_rebounds, total_rebounds,
                assists, turnovers, steals, blocks, personal_fouls,
                fantasy_points, double_doubles, triple_doubles, plus_minus,
                true_shooting_percentage
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			playerID, seasonID, teamID,
			line.GamesPlayed, line.Wins, line.Losses,
			line.MinutesPerGame, line.PointsPerGame,
			line.FieldGoalsMade, line.FieldGoalsAttempted, line.FieldGoalPct,
			line.ThreePointersMade, line.ThreePointersAttempted, line.ThreePointPct,
			line.FreeThrowsMade, line.FreeThrowsAttempted, line.FreeThrowPct,
			line.OffensiveRebounds, line.DefensiveRebounds, line.TotalRebounds,
			line.Assists, line.Turnovers, line.Steals, line.Blocks, line.PersonalFouls,
			line.FantasyPoints, line.DoubleDoubles, line.TripleDoubles, line.PlusMinus,
			line.TrueShootingPct)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to upsert season stats for %q", line.Name)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	success = true
	return count, nil
}

// UpsertGameStats records box scores for one season, creating game and
// player rows as needed. Rows referencing unknown teams are skipped, the
// way partial upstream data is expected to behave.
func (s *Store) UpsertGameStats(ctx context.Context, season string, stats []GameStatRow) (int, error) {
	done := metrics.TimeOp("db_upsert_game_stats")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}
	seasonID, err := s.seasonID(ctx, db, season)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	teamCache := make(map[string]int64)
	count := 0
	for _, row := range stats {
		homeID, err := teamIDTx(ctx, tx, teamCache, row.HomeAbbrev)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return 0, err
		}
		awayID, err := teamIDTx(ctx, tx, teamCache, row.AwayAbbrev)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return 0, err
		}
		playerTeamID, err := teamIDTx(ctx, tx, teamCache, row.TeamAbbrev)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return 0, err
		}

		gameID, err := getOrCreateGameTx(ctx, tx, seasonID, row.GameDate, homeID, awayID, row.GameType)
		if err != nil {
			return 0, err
		}
		playerID, err := getOrCreatePlayerTx(ctx, tx, row.PlayerName)
		if err != nil {
			return 0, err
		}

		_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO game_stats (
                game_id, player_id, team_id,
                minutes_played, points,
                field_goals_made, field_goals_attempted,
                three_pointers_made, three_pointers_attempted,
                free_throws_made, free_throws_attempted,
                offensive_rebounds, defensive_rebounds, total_rebounds,
                assists, turnovers, steals, blocks,
                personal_fouls, plus_minus
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			gameID, playerID, playerTeamID,
			row.MinutesPlayed, row.Points,
			row.FieldGoalsMade, row.FieldGoalsAttempted,
			row.ThreePointersMade, row.ThreePointersAttempted,
			row.FreeThrowsMade, row.FreeThrowsAttempted,
			row.OffensiveRebounds, row.DefensiveRebounds, row.TotalRebounds,
			row.Assists, row.Turnovers, row.Steals, row.Blocks,
			row.PersonalFouls, row.PlusMinus)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to upsert game stats for %q", row.PlayerName)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	success = true
	return count, nil
}

// UpdateGameScores fills in final scores from team logs and recomputes the
// home_win flag. Returns the number of rows that matched a game.
func (s *Store) UpdateGameScores(ctx context.Context, season string, scores []TeamScoreRow) (int, error) {
	done := metrics.TimeOp("db_update_game_scores")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}
	seasonID, err := s.seasonID(ctx, db, season)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	teamCache := make(map[string]int64)
	count := 0
	for _, row := range scores {
		homeID, err := teamIDTx(ctx, tx, teamCache, row.HomeAbbrev)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return 0, err
		}
		awayID, err := teamIDTx(ctx, tx, teamCache, row.AwayAbbrev)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return 0, err
		}

		column := "away_score"
		if row.TeamAbbrev == row.HomeAbbrev {
			column = "home_score"
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE games SET "+column+" = ? WHERE season_id = ? AND game_date = ? AND home_team_id = ? AND away_team_id = ?",
			row.Points, seasonID, row.GameDate, homeID, awayID)
		if err != nil {
			return 0, errors.Wrap(err, "failed to update game score")
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE games SET home_win = CASE WHEN home_score > away_score THEN 1 ELSE 0 END WHERE season_id = ? AND game_date = ? AND home_team_id = ? AND away_team_id = ?",
			seasonID, row.GameDate, homeID, awayID); err != nil {
			return 0, errors.Wrap(err, "failed to update home_win flag")
		}
		if n, _ := res.RowsAffected(); n > 0 {
			count++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	success = true
	return count, nil
}
