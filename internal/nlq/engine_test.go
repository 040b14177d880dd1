package nlq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chrisc1124/statpad/internal/apptype"
)

// fakeStore is a full engine dependency: scripted lookups plus a mutable
// name feed so index refreshes can be observed.
type fakeStore struct {
	fakeStats
	extraPlayers []apptype.NameEntry
}

func (f *fakeStore) AllKnownNames(ctx context.Context, kind apptype.EntityKind) ([]apptype.NameEntry, error) {
	entries, err := namesFixture{}.AllKnownNames(ctx, kind)
	if err != nil {
		return nil, err
	}
	if kind == apptype.KindPlayer {
		entries = append(entries, f.extraPlayers...)
	}
	return entries, nil
}

func newTestEngine(t *testing.T, store *fakeStore) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), store, Options{QueryTimeout: time.Second})
	require.NoError(t, err)
	return e
}

func seededStore() *fakeStore {
	return &fakeStore{
		fakeStats: fakeStats{
			lines: map[string]*apptype.PlayerSeasonLine{
				"Stephen Curry|2023-24": {Name: "Stephen Curry", Season: "2023-24", GamesPlayed: 74, PointsPerGame: 26.4},
				"LeBron James|2023-24":  {Name: "LeBron James", Season: "2023-24", GamesPlayed: 71, PointsPerGame: 25.7},
			},
			h2hLogs: []apptype.HeadToHeadLog{
				{GameID: 2, GameDate: "2024-03-16"},
				{GameID: 1, GameDate: "2024-01-27"},
			},
			teamCmp: &apptype.TeamComparison{
				Season: "2023-24",
				Team1:  apptype.TeamSeasonLine{TeamName: "Los Angeles Lakers", Wins: 2},
				Team2:  apptype.TeamSeasonLine{TeamName: "Golden State Warriors", Wins: 0, Losses: 2},
			},
			teamLogs: []apptype.TeamGameLog{{GameDate: "2024-03-16"}},
		},
	}
}

func TestProcessQueryPlayerStats(t *testing.T) {
	store := seededStore()
	e := newTestEngine(t, store)

	env := e.ProcessQuery(context.Background(), "How many points did Stephen Curry score in 2023-24?")
	assert.Equal(t, "player_stats", env.Type)
	assert.Equal(t, "How many points did Stephen Curry score in 2023-24?", env.OriginalQuery)
	data, ok := env.Data.(apptype.PlayerStatsResult)
	require.True(t, ok)
	assert.InDelta(t, 26.4, data.Stats.PointsPerGame, 0.001)
}

func TestProcessQueryPlayerComparison(t *testing.T) {
	e := newTestEngine(t, seededStore())

	env := e.ProcessQuery(context.Background(), "Compare Stephen Curry and LeBron James in 2023-24")
	assert.Equal(t, "player_comparison", env.Type)
	data, ok := env.Data.(apptype.PlayerComparison)
	require.True(t, ok)
	assert.Equal(t, "Stephen Curry", data.Player1.Name)
	assert.Equal(t, "LeBron James", data.Player2.Name)
}

func TestProcessQueryHeadToHead(t *testing.T) {
	store := seededStore()
	e := newTestEngine(t, store)

	env := e.ProcessQuery(context.Background(), "Compare Stephen Curry and LeBron James last 5 games")
	assert.Equal(t, "player_comparison_game_logs", env.Type)
	data, ok := env.Data.(apptype.HeadToHeadResult)
	require.True(t, ok)
	assert.Len(t, data.GameLogs, 2)
	assert.Equal(t, 5, store.gotLastN)
}

func TestProcessQueryTeamComparison(t *testing.T) {
	store := seededStore()
	e := newTestEngine(t, store)

	env := e.ProcessQuery(context.Background(), "Compare Lakers and Warriors in 2023-24")
	assert.Equal(t, "team_comparison", env.Type)
	// The store is asked with canonical names, not the typed fragments.
	assert.Equal(t, []string{"Los Angeles Lakers", "Golden State Warriors"}, store.gotTeams)
}

func TestProcessQueryFuzzyNickname(t *testing.T) {
	store := seededStore()
	e := newTestEngine(t, store)

	env := e.ProcessQuery(context.Background(), "How many points did Steph score in 2023-24?")
	assert.Equal(t, "player_stats", env.Type)
	assert.Equal(t, []string{"Stephen Curry"}, store.gotPlayers)
}

func TestProcessQueryAmbiguity(t *testing.T) {
	e := newTestEngine(t, seededStore())

	env := e.ProcessQuery(context.Background(), "Curry stats in 2023-24")
	assert.Equal(t, "error", env.Type)
	msg := env.Data.(ErrorData).Message
	assert.Contains(t, msg, "Seth Curry")
	assert.Contains(t, msg, "Stephen Curry")
}

func TestProcessQueryInvalidSeason(t *testing.T) {
	e := newTestEngine(t, seededStore())

	env := e.ProcessQuery(context.Background(), "Compare Stephen Curry and LeBron James in 2023-2024")
	assert.Equal(t, "error", env.Type)
	msg := env.Data.(ErrorData).Message
	assert.Contains(t, msg, "Invalid season")
	assert.Contains(t, msg, "2023-2024")
}

func TestProcessQueryUnrecognized(t *testing.T) {
	e := newTestEngine(t, seededStore())

	env := e.ProcessQuery(context.Background(), "What's the weather like today?")
	assert.Equal(t, "error", env.Type)
	assert.Equal(t, "What's the weather like today?", env.OriginalQuery)
	msg := env.Data.(ErrorData).Message
	assert.Contains(t, msg, "Could not parse query. Please try rephrasing.")
	assert.Contains(t, msg, "Compare Lakers and Warriors in 2023-24")
}

func TestProcessQueryEmpty(t *testing.T) {
	e := newTestEngine(t, seededStore())

	env := e.ProcessQuery(context.Background(), "   ")
	assert.Equal(t, "error", env.Type)
	assert.Equal(t, "A query is required.", env.Data.(ErrorData).Message)
}

func TestProcessQueryStoreFault(t *testing.T) {
	store := seededStore()
	store.lines = nil
	e := newTestEngine(t, store)

	// The store has nothing; the caller still gets a well-formed envelope.
	env := e.ProcessQuery(context.Background(), "How many points did Stephen Curry score in 2023-24?")
	assert.Equal(t, "error", env.Type)
	assert.Contains(t, env.Data.(ErrorData).Message, "No stats found for Stephen Curry")
}

func TestRefreshIndexPicksUpNewPlayers(t *testing.T) {
	store := seededStore()
	e := newTestEngine(t, store)

	env := e.ProcessQuery(context.Background(), "Victor Wembanyama stats in 2023-24")
	assert.Equal(t, "error", env.Type)

	store.extraPlayers = []apptype.NameEntry{{ID: 20, Name: "Victor Wembanyama", Kind: apptype.KindPlayer}}
	store.lines["Victor Wembanyama|2023-24"] = &apptype.PlayerSeasonLine{Name: "Victor Wembanyama", Season: "2023-24", PointsPerGame: 21.4}

	players, teams, err := e.RefreshIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, players)
	assert.Equal(t, 4, teams)

	env = e.ProcessQuery(context.Background(), "Victor Wembanyama stats in 2023-24")
	assert.Equal(t, "player_stats", env.Type)
}

func TestIndexCounts(t *testing.T) {
	e := newTestEngine(t, seededStore())

	players, teams := e.IndexCounts()
	assert.Equal(t, 5, players)
	assert.Equal(t, 4, teams)
}
