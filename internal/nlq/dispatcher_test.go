package nlq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chrisc1124/statpad/internal/apptype"
)

// fakeStats scripts the store side of dispatch. A zero value answers every
// lookup with "no data".
type fakeStats struct {
	lines    map[string]*apptype.PlayerSeasonLine // keyed name|season
	h2hLogs  []apptype.HeadToHeadLog
	teamCmp  *apptype.TeamComparison
	teamLogs []apptype.TeamGameLog
	fail     error
	delay    time.Duration

	gotPlayers []string
	gotTeams   []string
	gotSeason  string
	gotLastN   int
}

func (f *fakeStats) wait(ctx context.Context) error {
	if f.delay == 0 {
		return f.fail
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.delay):
		return f.fail
	}
}

func (f *fakeStats) PlayerSeasonStats(ctx context.Context, playerName, season string) (*apptype.PlayerSeasonLine, error) {
	f.gotPlayers = append(f.gotPlayers, playerName)
	f.gotSeason = season
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	line, ok := f.lines[playerName+"|"+season]
	if !ok {
		return nil, errors.Newf("no stats for %q", playerName)
	}
	return line, nil
}

func (f *fakeStats) HeadToHeadGameLogs(ctx context.Context, player1, player2, season string, lastN int) ([]apptype.HeadToHeadLog, error) {
	f.gotPlayers = append(f.gotPlayers, player1, player2)
	f.gotSeason = season
	f.gotLastN = lastN
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.h2hLogs, nil
}

func (f *fakeStats) TeamSeasonComparison(ctx context.Context, team1, team2, season string, includeGameLogs bool, lastN int) (*apptype.TeamComparison, error) {
	f.gotTeams = append(f.gotTeams, team1, team2)
	f.gotSeason = season
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.teamCmp == nil {
		return nil, errors.New("no such season")
	}
	return f.teamCmp, nil
}

func (f *fakeStats) TeamHeadToHeadGameLogs(ctx context.Context, team1, team2, season string, lastN int) ([]apptype.TeamGameLog, error) {
	f.gotTeams = append(f.gotTeams, team1, team2)
	f.gotSeason = season
	f.gotLastN = lastN
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.teamLogs, nil
}

func playerEntity(name string) *Entity {
	return &Entity{ID: 1, Name: name, Kind: apptype.KindPlayer}
}

func teamEntity(name string) *Entity {
	return &Entity{ID: 1, Name: name, Kind: apptype.KindTeam}
}

func curryLine(season string) *apptype.PlayerSeasonLine {
	return &apptype.PlayerSeasonLine{Name: "Stephen Curry", Season: season, GamesPlayed: 74, PointsPerGame: 26.4}
}

func TestDispatchPlayerStats(t *testing.T) {
	fake := &fakeStats{lines: map[string]*apptype.PlayerSeasonLine{
		"Stephen Curry|2023-24": curryLine("2023-24"),
	}}
	d := NewDispatcher(fake, time.Second)

	q := &Query{Kind: IntentPlayerStats, Entities: []*Entity{playerEntity("Stephen Curry")}, Season: "2023-24"}
	env := d.Dispatch(context.Background(), q, "curry 2023-24 stats")

	assert.Equal(t, "player_stats", env.Type)
	assert.Equal(t, "curry 2023-24 stats", env.OriginalQuery)
	data, ok := env.Data.(apptype.PlayerStatsResult)
	require.True(t, ok)
	assert.InDelta(t, 26.4, data.Stats.PointsPerGame, 0.001)
	assert.Equal(t, "2023-24", fake.gotSeason)
}

func TestDispatchPlayerStatsUnavailable(t *testing.T) {
	d := NewDispatcher(&fakeStats{}, time.Second)

	q := &Query{Kind: IntentPlayerStats, Entities: []*Entity{playerEntity("Stephen Curry")}, Season: "2019-20"}
	env := d.Dispatch(context.Background(), q, "q")

	assert.Equal(t, "error", env.Type)
	data, ok := env.Data.(ErrorData)
	require.True(t, ok)
	assert.Equal(t, "No stats found for Stephen Curry in season 2019-20.", data.Message)
}

func TestDispatchPlayerComparison(t *testing.T) {
	fake := &fakeStats{lines: map[string]*apptype.PlayerSeasonLine{
		"Stephen Curry|2023-24": curryLine("2023-24"),
		"LeBron James|2023-24":  {Name: "LeBron James", Season: "2023-24", PointsPerGame: 25.7},
	}}
	d := NewDispatcher(fake, time.Second)

	q := &Query{
		Kind:     IntentPlayerComparisonSeason,
		Entities: []*Entity{playerEntity("Stephen Curry"), playerEntity("LeBron James")},
		Season:   "2023-24",
	}
	env := d.Dispatch(context.Background(), q, "q")

	assert.Equal(t, "player_comparison", env.Type)
	data, ok := env.Data.(apptype.PlayerComparison)
	require.True(t, ok)
	assert.Equal(t, "2023-24", data.Season)
	assert.Equal(t, "Stephen Curry", data.Player1.Name)
	assert.Equal(t, "LeBron James", data.Player2.Name)
}

func TestDispatchPlayerComparisonNamesMissingPlayer(t *testing.T) {
	fake := &fakeStats{lines: map[string]*apptype.PlayerSeasonLine{
		"Stephen Curry|2023-24": curryLine("2023-24"),
	}}
	d := NewDispatcher(fake, time.Second)

	q := &Query{
		Kind:     IntentPlayerComparisonSeason,
		Entities: []*Entity{playerEntity("Stephen Curry"), playerEntity("LeBron James")},
		Season:   "2023-24",
	}
	env := d.Dispatch(context.Background(), q, "q")

	assert.Equal(t, "error", env.Type)
	assert.Contains(t, env.Data.(ErrorData).Message, "LeBron James")
}

func TestDispatchHeadToHeadGameLogs(t *testing.T) {
	fake := &fakeStats{h2hLogs: []apptype.HeadToHeadLog{
		{GameID: 2, GameDate: "2024-03-16"},
		{GameID: 1, GameDate: "2024-01-27"},
	}}
	d := NewDispatcher(fake, time.Second)

	q := &Query{
		Kind:     IntentPlayerComparisonGameLogs,
		Entities: []*Entity{playerEntity("Stephen Curry"), playerEntity("LeBron James")},
		LastN:    5,
	}
	env := d.Dispatch(context.Background(), q, "q")

	assert.Equal(t, "player_comparison_game_logs", env.Type)
	data, ok := env.Data.(apptype.HeadToHeadResult)
	require.True(t, ok)
	assert.Equal(t, "Stephen Curry", data.Player1)
	assert.Equal(t, 5, data.LastN)
	require.Len(t, data.GameLogs, 2)
	// Store ordering is preserved, most recent first.
	assert.Equal(t, "2024-03-16", data.GameLogs[0].GameDate)
	assert.Equal(t, 5, fake.gotLastN)
	assert.Empty(t, fake.gotSeason)
}

func TestDispatchHeadToHeadEmpty(t *testing.T) {
	d := NewDispatcher(&fakeStats{}, time.Second)

	q := &Query{
		Kind:     IntentPlayerComparisonGameLogs,
		Entities: []*Entity{playerEntity("Stephen Curry"), playerEntity("LeBron James")},
	}
	env := d.Dispatch(context.Background(), q, "q")

	assert.Equal(t, "error", env.Type)
	assert.Equal(t, "No head-to-head games found for Stephen Curry and LeBron James.",
		env.Data.(ErrorData).Message)
}

func TestDispatchTeamComparison(t *testing.T) {
	fake := &fakeStats{teamCmp: &apptype.TeamComparison{
		Season: "2023-24",
		Team1:  apptype.TeamSeasonLine{TeamName: "Los Angeles Lakers", Wins: 2},
		Team2:  apptype.TeamSeasonLine{TeamName: "Golden State Warriors", Losses: 2},
		GameLogs: []apptype.TeamGameLog{
			{GameDate: "2024-03-16"},
		},
	}}
	d := NewDispatcher(fake, time.Second)

	q := &Query{
		Kind:     IntentTeamComparisonSeason,
		Entities: []*Entity{teamEntity("Los Angeles Lakers"), teamEntity("Golden State Warriors")},
		Season:   "2023-24",
	}
	env := d.Dispatch(context.Background(), q, "q")

	assert.Equal(t, "team_comparison", env.Type)
	data, ok := env.Data.(apptype.TeamComparison)
	require.True(t, ok)
	assert.Equal(t, "Los Angeles Lakers", data.Team1.TeamName)
	assert.Len(t, data.GameLogs, 1)
	assert.Equal(t, []string{"Los Angeles Lakers", "Golden State Warriors"}, fake.gotTeams)
}

func TestDispatchTeamComparisonNoGames(t *testing.T) {
	// A season both teams sat out entirely is unavailable data, not a
	// comparison of two zero lines.
	fake := &fakeStats{teamCmp: &apptype.TeamComparison{Season: "2015-16"}}
	d := NewDispatcher(fake, time.Second)

	q := &Query{
		Kind:     IntentTeamComparisonSeason,
		Entities: []*Entity{teamEntity("Los Angeles Lakers"), teamEntity("Golden State Warriors")},
		Season:   "2015-16",
	}
	env := d.Dispatch(context.Background(), q, "q")

	assert.Equal(t, "error", env.Type)
	assert.Contains(t, env.Data.(ErrorData).Message, "No games found")
}

func TestDispatchTeamGameLogs(t *testing.T) {
	fake := &fakeStats{teamLogs: []apptype.TeamGameLog{
		{GameDate: "2024-03-16"},
		{GameDate: "2024-01-27"},
	}}
	d := NewDispatcher(fake, time.Second)

	q := &Query{
		Kind:     IntentTeamComparisonGameLogs,
		Entities: []*Entity{teamEntity("Los Angeles Lakers"), teamEntity("Golden State Warriors")},
		LastN:    10,
	}
	env := d.Dispatch(context.Background(), q, "q")

	assert.Equal(t, "team_comparison_game_logs", env.Type)
	data, ok := env.Data.(apptype.TeamGameLogsResult)
	require.True(t, ok)
	assert.Equal(t, 10, data.LastN)
	assert.Len(t, data.GameLogs, 2)
	assert.Equal(t, 10, fake.gotLastN)
}

func TestDispatchTimeout(t *testing.T) {
	fake := &fakeStats{delay: 200 * time.Millisecond}
	d := NewDispatcher(fake, 10*time.Millisecond)

	q := &Query{Kind: IntentPlayerStats, Entities: []*Entity{playerEntity("Stephen Curry")}, Season: "2023-24"}
	env := d.Dispatch(context.Background(), q, "q")

	assert.Equal(t, "error", env.Type)
	assert.Equal(t, timeoutMessage, env.Data.(ErrorData).Message)
}

func TestDispatchStoreFaultFoldsIntoEnvelope(t *testing.T) {
	fake := &fakeStats{fail: errors.New("disk exploded")}
	d := NewDispatcher(fake, time.Second)

	q := &Query{Kind: IntentPlayerStats, Entities: []*Entity{playerEntity("Stephen Curry")}, Season: "2023-24"}
	env := d.Dispatch(context.Background(), q, "q")

	assert.Equal(t, "error", env.Type)
	// The internal fault is not leaked to the caller.
	assert.NotContains(t, env.Data.(ErrorData).Message, "disk exploded")
}

func TestEnvelopeJSONShape(t *testing.T) {
	fake := &fakeStats{lines: map[string]*apptype.PlayerSeasonLine{
		"Stephen Curry|2023-24": curryLine("2023-24"),
	}}
	d := NewDispatcher(fake, time.Second)

	q := &Query{Kind: IntentPlayerStats, Entities: []*Entity{playerEntity("Stephen Curry")}, Season: "2023-24"}
	env := d.Dispatch(context.Background(), q, "How many points did Stephen Curry score in 2023-24?")

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "type")
	assert.Contains(t, decoded, "original_query")
	assert.Contains(t, decoded, "data")

	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["data"], &data))
	assert.Contains(t, data, "stats")
}
