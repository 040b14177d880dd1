package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatchup(t *testing.T) {
	tests := []struct {
		matchup string
		home    string
		away    string
	}{
		{"DEN vs. LAL", "DEN", "LAL"},
		{"DEN vs LAL", "DEN", "LAL"},
		{"LAL @ DEN", "DEN", "LAL"},
		{"GSW @ BOS", "BOS", "GSW"},
		{"  POR vs. SAC  ", "POR", "SAC"},
	}
	for _, tc := range tests {
		home, away, err := parseMatchup(tc.matchup)
		require.NoError(t, err, tc.matchup)
		assert.Equal(t, tc.home, home, tc.matchup)
		assert.Equal(t, tc.away, away, tc.matchup)
	}
}

func TestParseMatchupRejectsGarbage(t *testing.T) {
	for _, matchup := range []string{"", "DEN", "DEN-LAL", "DEN at LAL"} {
		_, _, err := parseMatchup(matchup)
		assert.Error(t, err, matchup)
	}
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func setupCSVSource(t *testing.T) *csvSource {
	t.Helper()
	dir := t.TempDir()
	writeCSV(t, dir, "teams.csv",
		"team_abbrev,team_name,city,conference,division,arena\n"+
			"GSW,Golden State Warriors,San Francisco,West,Pacific,Chase Center\n"+
			"LAL,Los Angeles Lakers,Los Angeles,West,Pacific,Crypto.com Arena\n")
	writeCSV(t, dir, "players_2023-24.csv",
		"name,position,age,height,weight,college,draft_year,draft_pick\n"+
			"Stephen Curry,G,36,6-2,185,Davidson,2009,7\n"+
			"LeBron James,F,39,6-9,250,,2003,1\n"+
			",C,0,,,,,\n")
	writeCSV(t, dir, "player_stats_2023-24.csv",
		"name,team_abbrev,team_name,position,games_played,points_per_game,total_rebounds,assists,true_shooting_percentage\n"+
			"Stephen Curry,GSW,Golden State Warriors,G,74,26.4,4.5,5.1,0.656\n")
	writeCSV(t, dir, "player_game_logs_2023-24.csv",
		"player_name,team_abbrev,game_date,matchup,game_type,minutes_played,points,total_rebounds,assists,plus_minus\n"+
			"Stephen Curry,GSW,2024-01-27,GSW vs. LAL,Regular Season,34.5,32,5,8,12\n"+
			"LeBron James,LAL,2024-01-27,LAL @ GSW,Regular Season,36.1,28,11,9,-12\n")
	writeCSV(t, dir, "team_game_logs_2023-24.csv",
		"team_abbrev,game_date,matchup,points\n"+
			"GSW,2024-01-27,GSW vs. LAL,120\n"+
			"LAL,2024-01-27,LAL @ GSW,116\n")

	src, err := newCSVSource(dir)
	require.NoError(t, err)
	return src
}

func TestCSVSourceTeams(t *testing.T) {
	src := setupCSVSource(t)
	teams, err := src.Teams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "GSW", teams[0].Abbrev)
	assert.Equal(t, "Golden State Warriors", teams[0].Name)
	assert.Equal(t, "Chase Center", teams[0].Arena)
	assert.Equal(t, "West", teams[1].Conference)
}

func TestCSVSourcePlayers(t *testing.T) {
	src := setupCSVSource(t)
	players, err := src.Players(context.Background(), "2023-24")
	require.NoError(t, err)
	// The row with no name is skipped.
	require.Len(t, players, 2)
	assert.Equal(t, "Stephen Curry", players[0].Name)
	assert.Equal(t, 185, players[0].Weight)
	assert.Equal(t, 7, players[0].DraftPick)
	assert.Equal(t, "", players[1].College)
}

func TestCSVSourceSeasonAverages(t *testing.T) {
	src := setupCSVSource(t)
	lines, err := src.PlayerSeasonAverages(context.Background(), "2023-24")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "Stephen Curry", line.Name)
	assert.Equal(t, "2023-24", line.Season)
	assert.Equal(t, "GSW", line.TeamAbbrev)
	assert.Equal(t, 74, line.GamesPlayed)
	assert.InDelta(t, 26.4, line.PointsPerGame, 0.001)
	assert.InDelta(t, 0.656, line.TrueShootingPct, 0.001)
	// Columns absent from the export read as zero.
	assert.Equal(t, 0, line.Wins)
	assert.Zero(t, line.FieldGoalsMade)
}

func TestCSVSourcePlayerGameLogs(t *testing.T) {
	src := setupCSVSource(t)
	stats, err := src.PlayerGameLogs(context.Background(), "2023-24")
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// Both rows describe the same game from opposite perspectives.
	for _, row := range stats {
		assert.Equal(t, "GSW", row.HomeAbbrev)
		assert.Equal(t, "LAL", row.AwayAbbrev)
		assert.Equal(t, "2024-01-27", row.GameDate)
	}
	assert.Equal(t, "Stephen Curry", stats[0].PlayerName)
	assert.InDelta(t, 34.5, stats[0].MinutesPlayed, 0.001)
	assert.Equal(t, 32, stats[0].Points)
	assert.Equal(t, -12, stats[1].PlusMinus)
}

func TestCSVSourceTeamGameLogs(t *testing.T) {
	src := setupCSVSource(t)
	scores, err := src.TeamGameLogs(context.Background(), "2023-24")
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "GSW", scores[0].TeamAbbrev)
	assert.Equal(t, 120, scores[0].Points)
	assert.Equal(t, "GSW", scores[1].HomeAbbrev)
	assert.Equal(t, "LAL", scores[1].TeamAbbrev)
	assert.Equal(t, 116, scores[1].Points)
}

func TestCSVSourceMissingSeasonFilesReadEmpty(t *testing.T) {
	src := setupCSVSource(t)

	players, err := src.Players(context.Background(), "2019-20")
	require.NoError(t, err)
	assert.Empty(t, players)

	stats, err := src.PlayerGameLogs(context.Background(), "2019-20")
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestCSVSourceMissingTeamsFileErrors(t *testing.T) {
	src, err := newCSVSource(t.TempDir())
	require.NoError(t, err)
	_, err = src.Teams(context.Background())
	assert.Error(t, err)
}

func TestCSVSourceBadMatchupErrors(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "player_game_logs_2023-24.csv",
		"player_name,team_abbrev,game_date,matchup,points\n"+
			"Stephen Curry,GSW,2024-01-27,GSW-LAL,32\n")
	src, err := newCSVSource(dir)
	require.NoError(t, err)

	_, err = src.PlayerGameLogs(context.Background(), "2023-24")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized matchup")
}

func TestNewCSVSourceRejectsBadDir(t *testing.T) {
	_, err := newCSVSource(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "teams.csv")
	require.NoError(t, os.WriteFile(file, []byte("team_abbrev\n"), 0o644))
	_, err = newCSVSource(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
