// Package server exposes the query engine and the typed lookups behind it
// as MCP tools over stdio or SSE.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/buildinfo"
	"github.com/Chrisc1124/statpad/internal/logger"
	"github.com/Chrisc1124/statpad/internal/metrics"
	"github.com/Chrisc1124/statpad/internal/nlq"
	"github.com/Chrisc1124/statpad/internal/statstore"
)

// Service is the statpad surface the tools call into. The library facade
// satisfies it; tests may substitute their own.
type Service interface {
	ProcessQuery(ctx context.Context, text string) nlq.ResultEnvelope
	ResolveName(fragment string, kind apptype.EntityKind) (string, error)
	PlayerSeasonStats(ctx context.Context, player, season string) (*apptype.PlayerSeasonLine, error)
	PlayerAllSeasons(ctx context.Context, player string) ([]apptype.PlayerSeasonLine, error)
	HeadToHeadGameLogs(ctx context.Context, player1, player2, season string, lastN int) ([]apptype.HeadToHeadLog, error)
	TeamSeasonComparison(ctx context.Context, team1, team2, season string, includeGameLogs bool, lastN int) (*apptype.TeamComparison, error)
	KnownNames(ctx context.Context, kind apptype.EntityKind) ([]apptype.NameEntry, error)
	RefreshEntityIndex(ctx context.Context) (players, teams int, err error)
	IndexCounts() (players, teams int)
	PoolStats()
	Ping(ctx context.Context) error
}

// MCPServer handles MCP protocol communication
type MCPServer struct {
	server *mcp.Server
	svc    Service
}

// NewMCPServer creates a new MCP server
func NewMCPServer(svc Service) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "statpad",
		Version: buildinfo.Version,
	}, nil)

	mcpServer := &MCPServer{
		server: server,
		svc:    svc,
	}
	mcpServer.setupToolHandlers()
	return mcpServer
}

// setupToolHandlers registers all MCP tools
func (s *MCPServer) setupToolHandlers() {
	queryInputSchema, err := jsonschema.For[apptype.QueryArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for QueryArgs: %v", err))
	}
	// The query tool's payload shape depends on the interpreted intent, so
	// it declares no output schema. The typed tools below all do.
	playerSeasonStatsInputSchema, err := jsonschema.For[apptype.PlayerSeasonStatsArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for PlayerSeasonStatsArgs: %v", err))
	}
	playerSeasonStatsOutputSchema, err := jsonschema.For[apptype.PlayerSeasonStatsResult]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for PlayerSeasonStatsResult: %v", err))
	}
	comparePlayersInputSchema, err := jsonschema.For[apptype.ComparePlayersArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for ComparePlayersArgs: %v", err))
	}
	comparePlayersOutputSchema, err := jsonschema.For[apptype.PlayerComparison]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for PlayerComparison: %v", err))
	}
	headToHeadInputSchema, err := jsonschema.For[apptype.HeadToHeadGamesArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for HeadToHeadGamesArgs: %v", err))
	}
	headToHeadOutputSchema, err := jsonschema.For[apptype.HeadToHeadResult]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for HeadToHeadResult: %v", err))
	}
	compareTeamsInputSchema, err := jsonschema.For[apptype.CompareTeamsArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for CompareTeamsArgs: %v", err))
	}
	compareTeamsOutputSchema, err := jsonschema.For[apptype.TeamComparison]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for TeamComparison: %v", err))
	}
	listKnownNamesInputSchema, err := jsonschema.For[apptype.ListKnownNamesArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for ListKnownNamesArgs: %v", err))
	}
	listKnownNamesOutputSchema, err := jsonschema.For[apptype.KnownNamesResult]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for KnownNamesResult: %v", err))
	}
	refreshIndexInputSchema, err := jsonschema.For[apptype.RefreshEntityIndexArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for RefreshEntityIndexArgs: %v", err))
	}
	refreshIndexOutputSchema, err := jsonschema.For[apptype.RefreshEntityIndexResult]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for RefreshEntityIndexResult: %v", err))
	}
	healthInputSchema, err := jsonschema.For[apptype.HealthArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for HealthArgs: %v", err))
	}
	healthOutputSchema, err := jsonschema.For[apptype.HealthResult]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for HealthResult: %v", err))
	}

	queryAnnotations := mcp.ToolAnnotations{
		Title: "Ask a Basketball Question",
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Annotations: &queryAnnotations,
		Name:        "query",
		Title:       "Ask a Basketball Question",
		Description: "Answer a free-text basketball statistics question. Returns a typed envelope whose data shape follows the interpreted intent.",
		InputSchema: queryInputSchema,
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "player_season_stats",
		Title:        "Player Season Stats",
		Description:  "Look up one player's season averages, or every recorded season when no season is given.",
		InputSchema:  playerSeasonStatsInputSchema,
		OutputSchema: playerSeasonStatsOutputSchema,
	}, s.handlePlayerSeasonStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "compare_players",
		Title:        "Compare Players",
		Description:  "Compare two players' season averages for one season.",
		InputSchema:  comparePlayersInputSchema,
		OutputSchema: comparePlayersOutputSchema,
	}, s.handleComparePlayers)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "head_to_head_games",
		Title:        "Head-to-Head Games",
		Description:  "List the games in which two players faced each other, most recent first.",
		InputSchema:  headToHeadInputSchema,
		OutputSchema: headToHeadOutputSchema,
	}, s.handleHeadToHeadGames)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "compare_teams",
		Title:        "Compare Teams",
		Description:  "Compare two teams' season records, optionally with the meetings between them.",
		InputSchema:  compareTeamsInputSchema,
		OutputSchema: compareTeamsOutputSchema,
	}, s.handleCompareTeams)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "list_known_names",
		Title:        "List Known Names",
		Description:  "List the player and team names the engine can resolve, for client-side pickers.",
		InputSchema:  listKnownNamesInputSchema,
		OutputSchema: listKnownNamesOutputSchema,
	}, s.handleListKnownNames)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "refresh_entity_index",
		Title:        "Refresh Entity Index",
		Description:  "Rebuild the name index from the database after an import.",
		InputSchema:  refreshIndexInputSchema,
		OutputSchema: refreshIndexOutputSchema,
	}, s.handleRefreshEntityIndex)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "health_check",
		Title:        "Health Check",
		Description:  "Returns server, database, and index information.",
		InputSchema:  healthInputSchema,
		OutputSchema: healthOutputSchema,
	}, s.handleHealth)
}

// handleQuery handles the query tool call
func (s *MCPServer) handleQuery(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.QueryArgs],
) (*mcp.CallToolResultFor[any], error) {
	done := metrics.TimeTool("query")
	defer func() { done(true) }()

	env := s.svc.ProcessQuery(ctx, params.Arguments.Query)

	summary := "Answered as " + env.Type
	if env.Type == "error" {
		if data, ok := env.Data.(nlq.ErrorData); ok {
			summary = data.Message
		}
	}
	return &mcp.CallToolResultFor[any]{
		Content:           []mcp.Content{&mcp.TextContent{Text: summary}},
		StructuredContent: env,
	}, nil
}

// handlePlayerSeasonStats handles the player_season_stats tool call
func (s *MCPServer) handlePlayerSeasonStats(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.PlayerSeasonStatsArgs],
) (*mcp.CallToolResultFor[apptype.PlayerSeasonStatsResult], error) {
	done := metrics.TimeTool("player_season_stats")
	var success bool
	defer func() { done(success) }()

	name, err := s.svc.ResolveName(params.Arguments.Player, apptype.KindPlayer)
	if err != nil {
		return nil, err
	}

	if season := params.Arguments.Season; season != "" {
		line, err := s.svc.PlayerSeasonStats(ctx, name, season)
		if err != nil {
			if statstore.IsNotFound(err) {
				return nil, errors.Newf("no stats found for %s in season %s", name, season)
			}
			return nil, errors.Wrap(err, "player season lookup failed")
		}
		success = true
		return &mcp.CallToolResultFor[apptype.PlayerSeasonStatsResult]{
			Content: []mcp.Content{&mcp.TextContent{
				Text: fmt.Sprintf("%s averaged %.1f points per game in %s", name, line.PointsPerGame, season),
			}},
			StructuredContent: apptype.PlayerSeasonStatsResult{Stats: line},
		}, nil
	}

	lines, err := s.svc.PlayerAllSeasons(ctx, name)
	if err != nil {
		if statstore.IsNotFound(err) {
			return nil, errors.Newf("no stats found for %s", name)
		}
		return nil, errors.Wrap(err, "player seasons lookup failed")
	}
	success = true
	return &mcp.CallToolResultFor[apptype.PlayerSeasonStatsResult]{
		Content: []mcp.Content{&mcp.TextContent{
			Text: fmt.Sprintf("%d seasons on record for %s", len(lines), name),
		}},
		StructuredContent: apptype.PlayerSeasonStatsResult{Seasons: lines},
	}, nil
}

// handleComparePlayers handles the compare_players tool call
func (s *MCPServer) handleComparePlayers(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.ComparePlayersArgs],
) (*mcp.CallToolResultFor[apptype.PlayerComparison], error) {
	done := metrics.TimeTool("compare_players")
	var success bool
	defer func() { done(success) }()

	season := params.Arguments.Season
	if season == "" {
		return nil, errors.New("season is required, e.g. 2023-24")
	}
	name1, err := s.svc.ResolveName(params.Arguments.Player1, apptype.KindPlayer)
	if err != nil {
		return nil, err
	}
	name2, err := s.svc.ResolveName(params.Arguments.Player2, apptype.KindPlayer)
	if err != nil {
		return nil, err
	}

	line1, err := s.svc.PlayerSeasonStats(ctx, name1, season)
	if err != nil {
		if statstore.IsNotFound(err) {
			return nil, errors.Newf("no stats found for %s in season %s", name1, season)
		}
		return nil, errors.Wrap(err, "player comparison failed")
	}
	line2, err := s.svc.PlayerSeasonStats(ctx, name2, season)
	if err != nil {
		if statstore.IsNotFound(err) {
			return nil, errors.Newf("no stats found for %s in season %s", name2, season)
		}
		return nil, errors.Wrap(err, "player comparison failed")
	}
	success = true
	return &mcp.CallToolResultFor[apptype.PlayerComparison]{
		Content: []mcp.Content{&mcp.TextContent{
			Text: fmt.Sprintf("%s vs %s in %s", name1, name2, season),
		}},
		StructuredContent: apptype.PlayerComparison{Season: season, Player1: line1, Player2: line2},
	}, nil
}

// handleHeadToHeadGames handles the head_to_head_games tool call
func (s *MCPServer) handleHeadToHeadGames(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.HeadToHeadGamesArgs],
) (*mcp.CallToolResultFor[apptype.HeadToHeadResult], error) {
	done := metrics.TimeTool("head_to_head_games")
	var success bool
	defer func() { done(success) }()

	name1, err := s.svc.ResolveName(params.Arguments.Player1, apptype.KindPlayer)
	if err != nil {
		return nil, err
	}
	name2, err := s.svc.ResolveName(params.Arguments.Player2, apptype.KindPlayer)
	if err != nil {
		return nil, err
	}

	logs, err := s.svc.HeadToHeadGameLogs(ctx, name1, name2, params.Arguments.Season, params.Arguments.LastN)
	if err != nil {
		return nil, errors.Wrap(err, "head-to-head lookup failed")
	}
	success = true
	return &mcp.CallToolResultFor[apptype.HeadToHeadResult]{
		Content: []mcp.Content{&mcp.TextContent{
			Text: fmt.Sprintf("%d meetings between %s and %s", len(logs), name1, name2),
		}},
		StructuredContent: apptype.HeadToHeadResult{
			Player1:  name1,
			Player2:  name2,
			Season:   params.Arguments.Season,
			LastN:    params.Arguments.LastN,
			GameLogs: logs,
		},
	}, nil
}

// handleCompareTeams handles the compare_teams tool call
func (s *MCPServer) handleCompareTeams(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.CompareTeamsArgs],
) (*mcp.CallToolResultFor[apptype.TeamComparison], error) {
	done := metrics.TimeTool("compare_teams")
	var success bool
	defer func() { done(success) }()

	name1, err := s.svc.ResolveName(params.Arguments.Team1, apptype.KindTeam)
	if err != nil {
		return nil, err
	}
	name2, err := s.svc.ResolveName(params.Arguments.Team2, apptype.KindTeam)
	if err != nil {
		return nil, err
	}
	season := params.Arguments.Season
	if season == "" {
		season = statstore.CurrentSeason()
	}

	cmp, err := s.svc.TeamSeasonComparison(ctx, name1, name2, season,
		params.Arguments.IncludeGameLogs, params.Arguments.LastN)
	if err != nil {
		if statstore.IsNotFound(err) {
			return nil, errors.Newf("no records found for %s and %s in season %s", name1, name2, season)
		}
		return nil, errors.Wrap(err, "team comparison failed")
	}
	success = true
	return &mcp.CallToolResultFor[apptype.TeamComparison]{
		Content: []mcp.Content{&mcp.TextContent{
			Text: fmt.Sprintf("%s vs %s in %s", name1, name2, season),
		}},
		StructuredContent: *cmp,
	}, nil
}

// handleListKnownNames handles the list_known_names tool call
func (s *MCPServer) handleListKnownNames(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.ListKnownNamesArgs],
) (*mcp.CallToolResultFor[apptype.KnownNamesResult], error) {
	done := metrics.TimeTool("list_known_names")
	var success bool
	defer func() { done(success) }()

	var result apptype.KnownNamesResult
	kind := params.Arguments.Kind
	if kind != "" && kind != string(apptype.KindPlayer) && kind != string(apptype.KindTeam) {
		return nil, errors.Newf("unknown kind %q (expected player or team)", kind)
	}
	if kind == "" || kind == string(apptype.KindPlayer) {
		players, err := s.svc.KnownNames(ctx, apptype.KindPlayer)
		if err != nil {
			return nil, errors.Wrap(err, "list player names failed")
		}
		result.Players = players
	}
	if kind == "" || kind == string(apptype.KindTeam) {
		teams, err := s.svc.KnownNames(ctx, apptype.KindTeam)
		if err != nil {
			return nil, errors.Wrap(err, "list team names failed")
		}
		result.Teams = teams
	}
	success = true
	return &mcp.CallToolResultFor[apptype.KnownNamesResult]{
		Content: []mcp.Content{&mcp.TextContent{
			Text: fmt.Sprintf("%d players, %d teams", len(result.Players), len(result.Teams)),
		}},
		StructuredContent: result,
	}, nil
}

// handleRefreshEntityIndex handles the refresh_entity_index tool call
func (s *MCPServer) handleRefreshEntityIndex(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.RefreshEntityIndexArgs],
) (*mcp.CallToolResultFor[apptype.RefreshEntityIndexResult], error) {
	done := metrics.TimeTool("refresh_entity_index")
	var success bool
	defer func() { done(success) }()

	start := time.Now()
	players, teams, err := s.svc.RefreshEntityIndex(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "index rebuild failed")
	}
	success = true
	return &mcp.CallToolResultFor[apptype.RefreshEntityIndexResult]{
		Content: []mcp.Content{&mcp.TextContent{
			Text: fmt.Sprintf("Index rebuilt: %d players, %d teams", players, teams),
		}},
		StructuredContent: apptype.RefreshEntityIndexResult{
			Players:   players,
			Teams:     teams,
			ElapsedMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

// handleHealth returns basic server health information
func (s *MCPServer) handleHealth(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.HealthArgs],
) (*mcp.CallToolResultFor[apptype.HealthResult], error) {
	done := metrics.TimeTool("health_check")
	defer func() { done(true) }()

	database := "connected"
	if err := s.svc.Ping(ctx); err != nil {
		database = "disconnected"
	}
	s.svc.PoolStats()
	players, teams := s.svc.IndexCounts()

	res := &apptype.HealthResult{
		Name:      "statpad",
		Version:   buildinfo.Version,
		Revision:  buildinfo.Revision,
		BuildDate: buildinfo.BuildDate,
		Database:  database,
		Players:   players,
		Teams:     teams,
	}
	return &mcp.CallToolResultFor[apptype.HealthResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: database}},
		StructuredContent: *res,
	}, nil
}

// poolStatsLoop publishes connection pool gauges every five seconds until
// ctx is canceled.
func (s *MCPServer) poolStatsLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.svc.PoolStats()
		}
	}
}

// Run starts the MCP server with stdio transport
func (s *MCPServer) Run(ctx context.Context) error {
	go s.poolStatsLoop(ctx)
	transport := mcp.NewStdioTransport()
	return s.server.Run(ctx, transport)
}

// SSEHandler returns the SSE endpoint handler, for mounting alongside the
// REST routes on an existing listener.
func (s *MCPServer) SSEHandler() http.Handler {
	return mcp.NewSSEHandler(func(r *http.Request) *mcp.Server { return s.server })
}

// RunSSE starts the MCP server over SSE at the given address and endpoint
func (s *MCPServer) RunSSE(ctx context.Context, addr string, endpoint string) error {
	go s.poolStatsLoop(ctx)
	mux := http.NewServeMux()
	mux.Handle(endpoint, s.SSEHandler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Named("mcp").Infow("sse mcp server listening", "addr", addr, "endpoint", endpoint)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
