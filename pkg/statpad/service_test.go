package statpad

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/nlq"
	"github.com/Chrisc1124/statpad/internal/statstore"
)

// setupService seeds an in-memory database through a direct store handle,
// then opens a Service over the same shared cache. The direct handle stays
// open so the in-memory database survives for the whole test.
func setupService(t *testing.T) (*Service, *statstore.Store) {
	t.Helper()
	ctx := context.Background()

	storeCfg := statstore.NewConfig()
	storeCfg.URL = "file:svcdb?mode=memory&cache=shared"
	seeder, err := statstore.NewStore(storeCfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, seeder.Close()) })

	_, err = seeder.SeedSeasons(ctx)
	require.NoError(t, err)
	_, err = seeder.SeedTeams(ctx)
	require.NoError(t, err)
	_, err = seeder.UpsertPlayerSeasonStats(ctx, "2023-24", []apptype.PlayerSeasonLine{
		{Name: "Stephen Curry", TeamAbbrev: "GSW", GamesPlayed: 74, PointsPerGame: 26.4},
		{Name: "LeBron James", TeamAbbrev: "LAL", GamesPlayed: 71, PointsPerGame: 25.7},
	})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.DatabaseURL = storeCfg.URL
	cfg.QueryTimeout = time.Second
	svc, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, svc.Close()) })

	return svc, seeder
}

func TestServiceProcessQuery(t *testing.T) {
	svc, _ := setupService(t)

	env := svc.ProcessQuery(context.Background(), "How many points did Stephen Curry score in 2023-24?")
	require.Equal(t, "player_stats", env.Type)
	data, ok := env.Data.(apptype.PlayerStatsResult)
	require.True(t, ok)
	assert.Equal(t, "Stephen Curry", data.Stats.Name)
	assert.InDelta(t, 26.4, data.Stats.PointsPerGame, 0.001)
}

func TestServiceTypedLookups(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	line, err := svc.PlayerSeasonStats(ctx, "LeBron James", "2023-24")
	require.NoError(t, err)
	assert.InDelta(t, 25.7, line.PointsPerGame, 0.001)

	lines, err := svc.PlayerAllSeasons(ctx, "Stephen Curry")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "2023-24", lines[0].Season)

	_, err = svc.PlayerSeasonStats(ctx, "Nobody", "2023-24")
	assert.True(t, statstore.IsNotFound(err))
}

func TestServiceResolveName(t *testing.T) {
	svc, _ := setupService(t)

	name, err := svc.ResolveName("Steph", apptype.KindPlayer)
	require.NoError(t, err)
	assert.Equal(t, "Stephen Curry", name)

	name, err = svc.ResolveName("GSW", apptype.KindTeam)
	require.NoError(t, err)
	assert.Equal(t, "Golden State Warriors", name)

	_, err = svc.ResolveName("Nobody Anywhere", apptype.KindPlayer)
	assert.True(t, nlq.IsEntityNotFound(err))
}

func TestServiceRefreshEntityIndex(t *testing.T) {
	svc, seeder := setupService(t)
	ctx := context.Background()

	playersBefore, teams := svc.IndexCounts()
	assert.Equal(t, 30, teams)

	// A player imported after startup is invisible until a refresh.
	_, err := seeder.UpsertPlayerSeasonStats(ctx, "2023-24", []apptype.PlayerSeasonLine{
		{Name: "Nikola Jokic", TeamAbbrev: "DEN", GamesPlayed: 79, PointsPerGame: 26.4},
	})
	require.NoError(t, err)
	_, err = svc.ResolveName("Nikola Jokic", apptype.KindPlayer)
	assert.True(t, nlq.IsEntityNotFound(err))

	players, teams, err := svc.RefreshEntityIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, playersBefore+1, players)
	assert.Equal(t, 30, teams)

	name, err := svc.ResolveName("Jokic", apptype.KindPlayer)
	require.NoError(t, err)
	assert.Equal(t, "Nikola Jokic", name)
}

func TestServiceKnownNames(t *testing.T) {
	svc, _ := setupService(t)

	teams, err := svc.KnownNames(context.Background(), apptype.KindTeam)
	require.NoError(t, err)
	assert.Len(t, teams, 30)

	players, err := svc.KnownNames(context.Background(), apptype.KindPlayer)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(players), 2)
}

func TestServicePing(t *testing.T) {
	svc, _ := setupService(t)
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestFromAppConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "file:./statpad.db", cfg.DatabaseURL)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)

	sc := cfg.storeConfig()
	assert.Equal(t, cfg.DatabaseURL, sc.URL)

	opts := cfg.engineOptions()
	assert.Equal(t, cfg.QueryTimeout, opts.QueryTimeout)
	assert.Equal(t, cfg.MaxCandidates, opts.MaxCandidates)
}
