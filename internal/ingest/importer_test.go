package ingest

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/statstore"
)

// scriptedSource returns fixed data and can fail one fetch by phase name.
type scriptedSource struct {
	teams  []apptype.Team
	failOn string
}

func (s *scriptedSource) fail(phase string) error {
	if s.failOn == phase {
		return errors.New("upstream down")
	}
	return nil
}

func (s *scriptedSource) Teams(ctx context.Context) ([]apptype.Team, error) {
	return s.teams, s.fail(PhaseTeams)
}

func (s *scriptedSource) Players(ctx context.Context, season string) ([]apptype.Player, error) {
	return []apptype.Player{{Name: "Stephen Curry"}, {Name: "LeBron James"}}, s.fail(PhasePlayers)
}

func (s *scriptedSource) PlayerSeasonAverages(ctx context.Context, season string) ([]apptype.PlayerSeasonLine, error) {
	return []apptype.PlayerSeasonLine{{Name: "Stephen Curry", Season: season}}, s.fail(PhaseSeasonStats)
}

func (s *scriptedSource) PlayerGameLogs(ctx context.Context, season string) ([]statstore.GameStatRow, error) {
	return []statstore.GameStatRow{
		{PlayerName: "Stephen Curry", TeamAbbrev: "GSW", GameDate: "2024-01-27", HomeAbbrev: "GSW", AwayAbbrev: "LAL"},
		{PlayerName: "LeBron James", TeamAbbrev: "LAL", GameDate: "2024-01-27", HomeAbbrev: "GSW", AwayAbbrev: "LAL"},
	}, s.fail(PhaseGameStats)
}

func (s *scriptedSource) TeamGameLogs(ctx context.Context, season string) ([]statstore.TeamScoreRow, error) {
	return []statstore.TeamScoreRow{
		{GameDate: "2024-01-27", HomeAbbrev: "GSW", AwayAbbrev: "LAL", TeamAbbrev: "GSW", Points: 120},
	}, s.fail(PhaseScores)
}

// recordingStore counts what reaches the store and in what order.
type recordingStore struct {
	calls []string
}

func (r *recordingStore) SeedSeasons(ctx context.Context) (int, error) {
	r.calls = append(r.calls, "seed_seasons")
	return 10, nil
}

func (r *recordingStore) UpsertTeams(ctx context.Context, teams []apptype.Team) (int, error) {
	r.calls = append(r.calls, "upsert_teams")
	return len(teams), nil
}

func (r *recordingStore) UpsertPlayers(ctx context.Context, players []apptype.Player) (int, error) {
	r.calls = append(r.calls, "upsert_players")
	return len(players), nil
}

func (r *recordingStore) UpsertPlayerSeasonStats(ctx context.Context, season string, lines []apptype.PlayerSeasonLine) (int, error) {
	r.calls = append(r.calls, "upsert_season_stats:"+season)
	return len(lines), nil
}

func (r *recordingStore) UpsertGameStats(ctx context.Context, season string, stats []statstore.GameStatRow) (int, error) {
	r.calls = append(r.calls, "upsert_game_stats:"+season)
	return len(stats), nil
}

func (r *recordingStore) UpdateGameScores(ctx context.Context, season string, scores []statstore.TeamScoreRow) (int, error) {
	r.calls = append(r.calls, "update_scores:"+season)
	return len(scores), nil
}

func TestImporterRunPhaseOrder(t *testing.T) {
	store := &recordingStore{}
	src := &scriptedSource{teams: []apptype.Team{{Abbrev: "GSW", Name: "Golden State Warriors"}}}

	sum, err := NewImporter(store, src, nil).Run(context.Background(), []string{"2023-24"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"seed_seasons",
		"upsert_teams",
		"upsert_players",
		"upsert_season_stats:2023-24",
		"upsert_game_stats:2023-24",
		"update_scores:2023-24",
	}, store.calls)
	assert.Equal(t, 10, sum.Seasons)
	assert.Equal(t, 1, sum.Teams)
	assert.Equal(t, 2, sum.Players)
	assert.Equal(t, 1, sum.SeasonLines)
	assert.Equal(t, 2, sum.BoxRows)
	assert.Equal(t, 1, sum.ScoreRows)
}

func TestImporterAccumulatesAcrossSeasons(t *testing.T) {
	store := &recordingStore{}
	src := &scriptedSource{}

	sum, err := NewImporter(store, src, nil).Run(context.Background(), []string{"2022-23", "2023-24"})
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Players)
	assert.Equal(t, 2, sum.SeasonLines)
	assert.Equal(t, 4, sum.BoxRows)
	assert.Equal(t, 2, sum.ScoreRows)
}

func TestImporterReportsProgress(t *testing.T) {
	var seen []Progress
	store := &recordingStore{}
	src := &scriptedSource{teams: []apptype.Team{{Abbrev: "GSW", Name: "Golden State Warriors"}}}

	_, err := NewImporter(store, src, func(p Progress) { seen = append(seen, p) }).
		Run(context.Background(), []string{"2023-24"})
	require.NoError(t, err)

	require.Len(t, seen, 6)
	assert.Equal(t, PhaseSeasons, seen[0].Phase)
	assert.Equal(t, "", seen[0].Season)
	assert.Equal(t, PhasePlayers, seen[2].Phase)
	assert.Equal(t, "2023-24", seen[2].Season)
	assert.Equal(t, 2, seen[2].Count)
	assert.Equal(t, PhaseScores, seen[5].Phase)
}

func TestImporterFetchErrorStopsRun(t *testing.T) {
	store := &recordingStore{}
	src := &scriptedSource{failOn: PhasePlayers}

	_, err := NewImporter(store, src, nil).Run(context.Background(), []string{"2023-24"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "season 2023-24")
	assert.Contains(t, err.Error(), "failed to fetch players")
	// Nothing past the failing phase reached the store.
	assert.Equal(t, []string{"seed_seasons", "upsert_teams"}, store.calls)
}
