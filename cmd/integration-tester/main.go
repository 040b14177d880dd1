package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Chrisc1124/statpad/internal/apptype"
)

type StepResult struct {
	Name      string `json:"name"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

type Report struct {
	SSEURL     string       `json:"sse_url"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMs int64        `json:"duration_ms"`
	Steps      []StepResult `json:"steps"`
	Passed     bool         `json:"passed"`
}

func main() {
	sseURL := flag.String("sse-url", "http://localhost:8000/sse", "SSE endpoint URL")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{Name: "integration-tester", Version: "dev"}, nil)
	transport := mcp.NewSSEClientTransport(*sseURL, nil)

	start := time.Now()
	report := Report{SSEURL: *sseURL, StartedAt: start}
	steps := make([]StepResult, 0, 16)

	// Connect
	tConn := time.Now()
	connRes := StepResult{Name: "connect"}
	session, err := client.Connect(ctx, transport)
	if err != nil {
		connRes.Success = false
		connRes.Error = err.Error()
		connRes.ElapsedMs = elapsedMsSince(tConn)
		steps = append(steps, connRes)
		report.Steps = steps
		report.DurationMs = elapsedMsSince(start)
		report.Passed = false
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
		os.Exit(1)
	}
	defer session.Close()
	connRes.Success = true
	connRes.ElapsedMs = elapsedMsSince(tConn)
	steps = append(steps, connRes)

	// Individual steps
	steps = append(steps, runListTools(ctx, session))
	steps = append(steps, runHealthCheck(ctx, session))
	steps = append(steps, runRefreshEntityIndex(ctx, session))
	steps = append(steps, runListKnownNames(ctx, session))
	// canonical query set, one per envelope type
	steps = append(steps, runQuery(ctx, session, "query_player_stats",
		"How many points did Stephen Curry average in 2023-24?", "player_stats"))
	steps = append(steps, runQuery(ctx, session, "query_player_comparison",
		"Compare Stephen Curry and LeBron James in 2023-24", "player_comparison"))
	steps = append(steps, runQuery(ctx, session, "query_h2h_game_logs",
		"Stephen Curry vs LeBron James last 5 games", "player_comparison_game_logs"))
	steps = append(steps, runQuery(ctx, session, "query_team_comparison",
		"Compare Lakers and Warriors in 2023-24", "team_comparison"))
	steps = append(steps, runQuery(ctx, session, "query_team_game_logs",
		"Lakers vs Warriors last 10 games", "team_comparison_game_logs"))
	// malformed queries still answer, with an error envelope
	steps = append(steps, runQuery(ctx, session, "query_invalid_season",
		"Compare Stephen Curry and LeBron James in 2023-2024", "error"))
	steps = append(steps, runQuery(ctx, session, "query_unrecognized",
		"What is the meaning of life?", "error"))
	// typed tools, with partial names to exercise resolution
	steps = append(steps, runPlayerSeasonStats(ctx, session, "Steph", "2023-24"))
	steps = append(steps, runComparePlayers(ctx, session, "Steph", "LeBron", "2023-24"))
	steps = append(steps, runHeadToHeadGames(ctx, session, "Stephen Curry", "LeBron James", 5))
	steps = append(steps, runCompareTeams(ctx, session, "GSW", "LAL"))

	// finalize report
	report.Steps = steps
	report.DurationMs = elapsedMsSince(start)
	report.Passed = true
	for _, s := range steps {
		if !s.Success {
			report.Passed = false
			break
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)

	if !report.Passed {
		os.Exit(1)
	}
}

func runListTools(ctx context.Context, session *mcp.ClientSession) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "list_tools"}
	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	switch {
	case err != nil:
		res.Error = err.Error()
	case len(tools.Tools) != 8:
		res.Error = fmt.Sprintf("expected 8 tools, got %d", len(tools.Tools))
	default:
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func runHealthCheck(ctx context.Context, session *mcp.ClientSession) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "health_check"}
	out, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "health_check", Arguments: json.RawMessage(`{}`)})
	switch {
	case err != nil:
		res.Error = err.Error()
	case out.IsError:
		res.Error = "tool returned error"
	case structuredField(out, "database") != "connected":
		res.Error = fmt.Sprintf("database %q, want connected", structuredField(out, "database"))
	default:
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func runRefreshEntityIndex(ctx context.Context, session *mcp.ClientSession) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "refresh_entity_index"}
	out, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "refresh_entity_index", Arguments: json.RawMessage(`{}`)})
	switch {
	case err != nil:
		res.Error = err.Error()
	case out.IsError:
		res.Error = "tool returned error"
	default:
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func runListKnownNames(ctx context.Context, session *mcp.ClientSession) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "list_known_names"}
	args := apptype.ListKnownNamesArgs{Kind: "team"}
	raw, _ := json.Marshal(args)
	out, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "list_known_names", Arguments: json.RawMessage(raw)})
	switch {
	case err != nil:
		res.Error = err.Error()
	case out.IsError:
		res.Error = "tool returned error"
	default:
		body, _ := out.StructuredContent.(map[string]any)
		teams, _ := body["teams"].([]any)
		if len(teams) != 30 {
			res.Error = fmt.Sprintf("expected 30 teams, got %d", len(teams))
		} else {
			res.Success = true
		}
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

// runQuery sends free text through the query tool and checks the envelope
// type. Error envelopes are ordinary results, not tool errors.
func runQuery(ctx context.Context, session *mcp.ClientSession, name, text, wantType string) StepResult {
	t0 := time.Now()
	res := StepResult{Name: name}
	raw, _ := json.Marshal(apptype.QueryArgs{Query: text})
	out, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "query", Arguments: json.RawMessage(raw)})
	switch {
	case err != nil:
		res.Error = err.Error()
	case out.IsError:
		res.Error = "tool returned error"
	default:
		if typ := structuredField(out, "type"); typ != wantType {
			res.Error = fmt.Sprintf("envelope type %q, want %q", typ, wantType)
		} else {
			res.Success = true
		}
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func runPlayerSeasonStats(ctx context.Context, session *mcp.ClientSession, player, season string) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "player_season_stats"}
	args := apptype.PlayerSeasonStatsArgs{Player: player, Season: season}
	raw, _ := json.Marshal(args)
	out, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "player_season_stats", Arguments: json.RawMessage(raw)})
	switch {
	case err != nil:
		res.Error = err.Error()
	case out.IsError:
		res.Error = "tool returned error"
	default:
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func runComparePlayers(ctx context.Context, session *mcp.ClientSession, player1, player2, season string) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "compare_players"}
	args := apptype.ComparePlayersArgs{Player1: player1, Player2: player2, Season: season}
	raw, _ := json.Marshal(args)
	out, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "compare_players", Arguments: json.RawMessage(raw)})
	switch {
	case err != nil:
		res.Error = err.Error()
	case out.IsError:
		res.Error = "tool returned error"
	default:
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func runHeadToHeadGames(ctx context.Context, session *mcp.ClientSession, player1, player2 string, lastN int) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "head_to_head_games"}
	args := apptype.HeadToHeadGamesArgs{Player1: player1, Player2: player2, LastN: lastN}
	raw, _ := json.Marshal(args)
	out, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "head_to_head_games", Arguments: json.RawMessage(raw)})
	switch {
	case err != nil:
		res.Error = err.Error()
	case out.IsError:
		res.Error = "tool returned error"
	default:
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func runCompareTeams(ctx context.Context, session *mcp.ClientSession, team1, team2 string) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "compare_teams"}
	args := apptype.CompareTeamsArgs{Team1: team1, Team2: team2}
	raw, _ := json.Marshal(args)
	out, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "compare_teams", Arguments: json.RawMessage(raw)})
	switch {
	case err != nil:
		res.Error = err.Error()
	case out.IsError:
		res.Error = "tool returned error"
	default:
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

// structuredField pulls one string field out of a structured result.
func structuredField(out *mcp.CallToolResult, key string) string {
	body, ok := out.StructuredContent.(map[string]any)
	if !ok {
		return ""
	}
	val, _ := body[key].(string)
	return val
}

// elapsedMsSince returns max(1ms, elapsed) to avoid zero durations on fast steps
func elapsedMsSince(t0 time.Time) int64 {
	d := time.Since(t0) / time.Millisecond
	if d <= 0 {
		return 1
	}
	return int64(d)
}
