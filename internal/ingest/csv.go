package ingest

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/statstore"
)

// csvSource reads league data from a directory of CSV exports, for offline
// and development use. Files are teams.csv plus per-season files named
// players_<season>.csv, player_stats_<season>.csv,
// player_game_logs_<season>.csv, and team_game_logs_<season>.csv.
// A missing per-season file reads as empty, so a directory can carry any
// subset of the data.
type csvSource struct {
	dir string
}

func newCSVSource(dir string) (*csvSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "ingest.csv_dir %q", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf("ingest.csv_dir %q is not a directory", dir)
	}
	return &csvSource{dir: dir}, nil
}

// table is a header-indexed CSV file. Missing columns read as empty, so
// partial exports import cleanly.
type table struct {
	cols map[string]int
	rows [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", filepath.Base(path))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", filepath.Base(path))
	}
	if len(records) == 0 {
		return &table{cols: map[string]int{}}, nil
	}
	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return &table{cols: cols, rows: records[1:]}, nil
}

func (t *table) str(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) num(row []string, col string) float64 {
	v, _ := strconv.ParseFloat(t.str(row, col), 64)
	return v
}

// count tolerates exports that write whole numbers as "12.0".
func (t *table) count(row []string, col string) int {
	return int(t.num(row, col))
}

func (s *csvSource) seasonTable(prefix, season string) (*table, error) {
	t, err := readTable(filepath.Join(s.dir, prefix+"_"+season+".csv"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &table{cols: map[string]int{}}, nil
		}
		return nil, err
	}
	return t, nil
}

func (s *csvSource) Teams(ctx context.Context) ([]apptype.Team, error) {
	t, err := readTable(filepath.Join(s.dir, "teams.csv"))
	if err != nil {
		return nil, err
	}
	teams := make([]apptype.Team, 0, len(t.rows))
	for _, row := range t.rows {
		abbrev := t.str(row, "team_abbrev")
		name := t.str(row, "team_name")
		if abbrev == "" || name == "" {
			continue
		}
		teams = append(teams, apptype.Team{
			Abbrev:     abbrev,
			Name:       name,
			City:       t.str(row, "city"),
			Conference: t.str(row, "conference"),
			Division:   t.str(row, "division"),
			Arena:      t.str(row, "arena"),
		})
	}
	return teams, nil
}

func (s *csvSource) Players(ctx context.Context, season string) ([]apptype.Player, error) {
	t, err := s.seasonTable("players", season)
	if err != nil {
		return nil, err
	}
	players := make([]apptype.Player, 0, len(t.rows))
	for _, row := range t.rows {
		name := t.str(row, "name")
		if name == "" {
			continue
		}
		players = append(players, apptype.Player{
			Name:      name,
			Position:  t.str(row, "position"),
			Age:       t.count(row, "age"),
			Height:    t.str(row, "height"),
			Weight:    t.count(row, "weight"),
			College:   t.str(row, "college"),
			DraftYear: t.count(row, "draft_year"),
			DraftPick: t.count(row, "draft_pick"),
		})
	}
	return players, nil
}

func (s *csvSource) PlayerSeasonAverages(ctx context.Context, season string) ([]apptype.PlayerSeasonLine, error) {
	t, err := s.seasonTable("player_stats", season)
	if err != nil {
		return nil, err
	}
	lines := make([]apptype.PlayerSeasonLine, 0, len(t.rows))
	for _, row := range t.rows {
		name := t.str(row, "name")
		if name == "" {
			continue
		}
		lines = append(lines, apptype.PlayerSeasonLine{
			Name:       name,
			Position:   t.str(row, "position"),
			TeamName:   t.str(row, "team_name"),
			TeamAbbrev: t.str(row, "team_abbrev"),
			Season:     season,

			GamesPlayed: t.count(row, "games_played"),
			Wins:        t.count(row, "wins"),
			Losses:      t.count(row, "losses"),

			MinutesPerGame: t.num(row, "minutes_per_game"),
			PointsPerGame:  t.num(row, "points_per_game"),

			FieldGoalsMade:      t.num(row, "field_goals_made"),
			FieldGoalsAttempted: t.num(row, "field_goals_attempted"),
			FieldGoalPct:        t.num(row, "field_goal_percentage"),

			ThreePointersMade:      t.num(row, "three_pointers_made"),
			ThreePointersAttempted: t.num(row, "three_pointers_attempted"),
			ThreePointPct:          t.num(row, "three_point_percentage"),

			FreeThrowsMade:      t.num(row, "free_throws_made"),
			FreeThrowsAttempted: t.num(row, "free_throws_attempted"),
			FreeThrowPct:        t.num(row, "free_throw_percentage"),

			OffensiveRebounds: t.num(row, "offensive_rebounds"),
			DefensiveRebounds: t.num(row, "defensive_rebounds"),
			TotalRebounds:     t.num(row, "total_rebounds"),
			Assists:           t.num(row, "assists"),
			Turnovers:         t.num(row, "turnovers"),
			Steals:            t.num(row, "steals"),
			Blocks:            t.num(row, "blocks"),
			PersonalFouls:     t.num(row, "personal_fouls"),

			FantasyPoints:   t.num(row, "fantasy_points"),
			DoubleDoubles:   t.count(row, "double_doubles"),
			TripleDoubles:   t.count(row, "triple_doubles"),
			PlusMinus:       t.num(row, "plus_minus"),
			TrueShootingPct: t.num(row, "true_shooting_percentage"),
		})
	}
	return lines, nil
}

func (s *csvSource) PlayerGameLogs(ctx context.Context, season string) ([]statstore.GameStatRow, error) {
	t, err := s.seasonTable("player_game_logs", season)
	if err != nil {
		return nil, err
	}
	stats := make([]statstore.GameStatRow, 0, len(t.rows))
	for _, row := range t.rows {
		name := t.str(row, "player_name")
		if name == "" {
			continue
		}
		home, away, err := parseMatchup(t.str(row, "matchup"))
		if err != nil {
			return nil, errors.Wrapf(err, "player_game_logs_%s.csv", season)
		}
		stats = append(stats, statstore.GameStatRow{
			PlayerName:             name,
			TeamAbbrev:             t.str(row, "team_abbrev"),
			GameDate:               t.str(row, "game_date"),
			HomeAbbrev:             home,
			AwayAbbrev:             away,
			GameType:               t.str(row, "game_type"),
			MinutesPlayed:          t.num(row, "minutes_played"),
			Points:                 t.count(row, "points"),
			FieldGoalsMade:         t.count(row, "field_goals_made"),
			FieldGoalsAttempted:    t.count(row, "field_goals_attempted"),
			ThreePointersMade:      t.count(row, "three_pointers_made"),
			ThreePointersAttempted: t.count(row, "three_pointers_attempted"),
			FreeThrowsMade:         t.count(row, "free_throws_made"),
			FreeThrowsAttempted:    t.count(row, "free_throws_attempted"),
			OffensiveRebounds:      t.count(row, "offensive_rebounds"),
			DefensiveRebounds:      t.count(row, "defensive_rebounds"),
			TotalRebounds:          t.count(row, "total_rebounds"),
			Assists:                t.count(row, "assists"),
			Turnovers:              t.count(row, "turnovers"),
			Steals:                 t.count(row, "steals"),
			Blocks:                 t.count(row, "blocks"),
			PersonalFouls:          t.count(row, "personal_fouls"),
			PlusMinus:              t.count(row, "plus_minus"),
		})
	}
	return stats, nil
}

func (s *csvSource) TeamGameLogs(ctx context.Context, season string) ([]statstore.TeamScoreRow, error) {
	t, err := s.seasonTable("team_game_logs", season)
	if err != nil {
		return nil, err
	}
	scores := make([]statstore.TeamScoreRow, 0, len(t.rows))
	for _, row := range t.rows {
		team := t.str(row, "team_abbrev")
		if team == "" {
			continue
		}
		home, away, err := parseMatchup(t.str(row, "matchup"))
		if err != nil {
			return nil, errors.Wrapf(err, "team_game_logs_%s.csv", season)
		}
		scores = append(scores, statstore.TeamScoreRow{
			GameDate:   t.str(row, "game_date"),
			HomeAbbrev: home,
			AwayAbbrev: away,
			TeamAbbrev: team,
			Points:     t.count(row, "points"),
		})
	}
	return scores, nil
}

// parseMatchup resolves a matchup string written from the row team's
// perspective. "DEN vs. LAL" means the row team hosted LAL; "LAL @ DEN"
// means the row team visited DEN.
func parseMatchup(matchup string) (home, away string, err error) {
	m := strings.TrimSpace(strings.ReplaceAll(matchup, "vs.", "vs"))
	if left, right, ok := strings.Cut(m, " @ "); ok {
		return strings.TrimSpace(right), strings.TrimSpace(left), nil
	}
	if left, right, ok := strings.Cut(m, " vs "); ok {
		return strings.TrimSpace(left), strings.TrimSpace(right), nil
	}
	return "", "", errors.Newf("unrecognized matchup %q", matchup)
}
