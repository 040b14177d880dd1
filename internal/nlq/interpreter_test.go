package nlq

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestInterpreter(t *testing.T) *Interpreter {
	t.Helper()
	return NewInterpreter(NewIndexHolder(buildTestIndex(t)), 5)
}

func TestInterpretPlayerStats(t *testing.T) {
	it := newTestInterpreter(t)

	q, err := it.Interpret("How many points did Stephen Curry score in 2023-24?")
	require.NoError(t, err)
	assert.Equal(t, IntentPlayerStats, q.Kind)
	require.Len(t, q.Entities, 1)
	assert.Equal(t, "Stephen Curry", q.Entities[0].Name)
	assert.Equal(t, "2023-24", q.Season)
	assert.Zero(t, q.LastN)
}

func TestInterpretPlayerComparisonSeason(t *testing.T) {
	it := newTestInterpreter(t)

	q, err := it.Interpret("Compare Stephen Curry and LeBron James in 2023-24")
	require.NoError(t, err)
	assert.Equal(t, IntentPlayerComparisonSeason, q.Kind)
	require.Len(t, q.Entities, 2)
	assert.Equal(t, "Stephen Curry", q.Entities[0].Name)
	assert.Equal(t, "LeBron James", q.Entities[1].Name)
	assert.Equal(t, "2023-24", q.Season)
}

func TestInterpretPlayerComparisonGameLogs(t *testing.T) {
	it := newTestInterpreter(t)

	q, err := it.Interpret("Compare Stephen Curry and LeBron James last 5 games")
	require.NoError(t, err)
	assert.Equal(t, IntentPlayerComparisonGameLogs, q.Kind)
	assert.Equal(t, 5, q.LastN)
	assert.Empty(t, q.Season)
}

func TestInterpretTeamComparisonSeason(t *testing.T) {
	it := newTestInterpreter(t)

	// Neither span resolves as a player, so the team pool decides.
	q, err := it.Interpret("Compare Lakers and Warriors in 2023-24")
	require.NoError(t, err)
	assert.Equal(t, IntentTeamComparisonSeason, q.Kind)
	require.Len(t, q.Entities, 2)
	assert.Equal(t, "Los Angeles Lakers", q.Entities[0].Name)
	assert.Equal(t, "Golden State Warriors", q.Entities[1].Name)
	assert.Equal(t, "2023-24", q.Season)
}

func TestInterpretTeamComparisonGameLogs(t *testing.T) {
	it := newTestInterpreter(t)

	q, err := it.Interpret("Lakers vs Warriors last 10 games")
	require.NoError(t, err)
	assert.Equal(t, IntentTeamComparisonGameLogs, q.Kind)
	assert.Equal(t, 10, q.LastN)
}

func TestInterpretPlayersWinTieOverTeams(t *testing.T) {
	it := newTestInterpreter(t)

	// Both spans are unique players; the player pool is preferred without
	// ever consulting teams for the flavor.
	q, err := it.Interpret("Steph vs LeBron last 3 games")
	require.NoError(t, err)
	assert.Equal(t, IntentPlayerComparisonGameLogs, q.Kind)
	assert.Equal(t, "Stephen Curry", q.Entities[0].Name)
	assert.Equal(t, "LeBron James", q.Entities[1].Name)
}

func TestInterpretMissingSeason(t *testing.T) {
	it := newTestInterpreter(t)

	_, err := it.Interpret("Compare Stephen Curry and LeBron James")
	require.Error(t, err)
	assert.True(t, IsMissingRequiredField(err))
	qe, _ := AsQueryError(err)
	assert.Equal(t, "season", qe.Field)
	assert.Contains(t, err.Error(), "season is required")
}

func TestInterpretInvalidSeason(t *testing.T) {
	it := newTestInterpreter(t)

	_, err := it.Interpret("Compare Stephen Curry and LeBron James in 2023-2024")
	require.Error(t, err)
	assert.True(t, IsInvalidSeason(err))
	qe, _ := AsQueryError(err)
	assert.Equal(t, "2023-2024", qe.Text)
	assert.Contains(t, err.Error(), "2023-2024")

	_, err = it.Interpret("Stephen Curry stats in 2023-2024")
	require.Error(t, err)
	assert.True(t, IsInvalidSeason(err))
}

func TestInterpretAmbiguousEntity(t *testing.T) {
	it := newTestInterpreter(t)

	_, err := it.Interpret("Curry stats in 2023-24")
	require.Error(t, err)
	assert.True(t, IsAmbiguousEntity(err))
	qe, _ := AsQueryError(err)
	assert.Equal(t, "Curry", qe.Span)
	assert.Equal(t, []string{"Seth Curry", "Stephen Curry"}, qe.Candidates)
	assert.Contains(t, err.Error(), "Seth Curry")
	assert.Contains(t, err.Error(), "Stephen Curry")
}

func TestInterpretEntityNotFound(t *testing.T) {
	it := newTestInterpreter(t)

	_, err := it.Interpret("Compare Michael Jardan and LeBron James in 2023-24")
	require.Error(t, err)
	assert.True(t, IsEntityNotFound(err))
	qe, _ := AsQueryError(err)
	assert.Equal(t, "Michael Jardan", qe.Span)
	// Missing from both pools reads neutrally.
	assert.Contains(t, err.Error(), "No player or team found")
}

func TestInterpretMixedPairFailsOnUnresolvedSpan(t *testing.T) {
	it := newTestInterpreter(t)

	// One player and one team never form a comparison; the player pool won
	// the tie, so the team name is the unresolved span.
	_, err := it.Interpret("Compare LeBron James and Warriors in 2023-24")
	require.Error(t, err)
	assert.True(t, IsEntityNotFound(err))
	qe, _ := AsQueryError(err)
	assert.Equal(t, "Warriors", qe.Span)
	assert.Contains(t, err.Error(), "No player found")
}

func TestInterpretEmptyQuery(t *testing.T) {
	it := newTestInterpreter(t)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := it.Interpret(text)
		require.Error(t, err)
		assert.True(t, IsMissingRequiredField(err))
		qe, _ := AsQueryError(err)
		assert.Equal(t, "query", qe.Field)
	}
}

func TestInterpretUnrecognized(t *testing.T) {
	it := newTestInterpreter(t)

	_, err := it.Interpret("What's the weather like today?")
	require.Error(t, err)
	assert.True(t, IsUnrecognized(err))
	assert.Contains(t, err.Error(), "rephrasing")
	assert.Contains(t, err.Error(), "How many points did Stephen Curry score in 2023-24?")
}

// Interpretation is pure: same text, same snapshot, same outcome, and a
// successful query always satisfies the intent's field invariants.
func TestInterpretDeterministic(t *testing.T) {
	it := newTestInterpreter(t)

	wordGen := rapid.SampledFrom([]string{
		"Compare", "Stephen", "Curry", "Steph", "LeBron", "James",
		"Lakers", "Warriors", "vs", "versus", "and", "to", "in", "for",
		"2023-24", "2023-2024", "last", "5", "games", "game", "logs",
		"stats", "points", "score", "the", "weather", "?", "Jardan",
	})
	rapid.Check(t, func(rt *rapid.T) {
		words := rapid.SliceOfN(wordGen, 0, 8).Draw(rt, "words")
		text := strings.Join(words, " ")

		q1, err1 := it.Interpret(text)
		q2, err2 := it.Interpret(text)

		if (err1 == nil) != (err2 == nil) {
			rt.Fatalf("interpret %q: inconsistent failure: %v vs %v", text, err1, err2)
		}
		if err1 != nil {
			if err1.Error() != err2.Error() {
				rt.Fatalf("interpret %q: message changed: %q vs %q", text, err1, err2)
			}
			return
		}
		if !reflect.DeepEqual(q1, q2) {
			rt.Fatalf("interpret %q: query changed between runs", text)
		}

		switch q1.Kind {
		case IntentPlayerStats:
			if len(q1.Entities) != 1 || q1.Season == "" {
				rt.Fatalf("interpret %q: malformed player stats query %+v", text, q1)
			}
		case IntentPlayerComparisonSeason, IntentTeamComparisonSeason:
			if len(q1.Entities) != 2 || !seasonRe.MatchString(q1.Season) {
				rt.Fatalf("interpret %q: malformed season comparison %+v", text, q1)
			}
		case IntentPlayerComparisonGameLogs, IntentTeamComparisonGameLogs:
			if len(q1.Entities) != 2 || q1.Season != "" || q1.LastN < 0 {
				rt.Fatalf("interpret %q: malformed game-log comparison %+v", text, q1)
			}
		default:
			rt.Fatalf("interpret %q: unexpected kind %v", text, q1.Kind)
		}
		for _, e := range q1.Entities {
			if e == nil {
				rt.Fatalf("interpret %q: nil entity", text)
			}
		}
	})
}
