// Package nlq turns free-text basketball questions into typed queries and
// executes them against the stats store. The pipeline is classify (ordered
// shape rules), resolve (entity index lookup), then dispatch (one bounded
// store call), and every outcome folds into a ResultEnvelope.
package nlq

import "github.com/Chrisc1124/statpad/internal/apptype"

// IntentKind is the settled shape of a query after entity resolution has
// decided whether a comparison is about players or teams.
type IntentKind int

const (
	IntentUnrecognized IntentKind = iota
	IntentPlayerStats
	IntentPlayerComparisonSeason
	IntentPlayerComparisonGameLogs
	IntentTeamComparisonSeason
	IntentTeamComparisonGameLogs
)

func (k IntentKind) String() string {
	switch k {
	case IntentPlayerStats:
		return "player_stats"
	case IntentPlayerComparisonSeason:
		return "player_comparison_season"
	case IntentPlayerComparisonGameLogs:
		return "player_comparison_game_logs"
	case IntentTeamComparisonSeason:
		return "team_comparison_season"
	case IntentTeamComparisonGameLogs:
		return "team_comparison_game_logs"
	default:
		return "unrecognized"
	}
}

// EnvelopeType is the response type tag carried by successful envelopes of
// this kind. Season and game-log comparisons share the tag family used by
// the HTTP and MCP surfaces.
func (k IntentKind) EnvelopeType() string {
	switch k {
	case IntentPlayerStats:
		return "player_stats"
	case IntentPlayerComparisonSeason:
		return "player_comparison"
	case IntentPlayerComparisonGameLogs:
		return "player_comparison_game_logs"
	case IntentTeamComparisonSeason:
		return "team_comparison"
	case IntentTeamComparisonGameLogs:
		return "team_comparison_game_logs"
	default:
		return envelopeTypeError
	}
}

const envelopeTypeError = "error"

// MatchTier records how strong an index match was. Lower tiers are tried
// first and the resolver never mixes tiers in one result.
type MatchTier int

const (
	TierExact MatchTier = iota + 1
	TierCaseInsensitive
	TierFuzzy
)

func (t MatchTier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierCaseInsensitive:
		return "case_insensitive"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Candidate is one index entity considered for a name fragment, with the
// best edit distance any of its names achieved. Substring and token-prefix
// hits count as distance zero.
type Candidate struct {
	Entity   *Entity
	Distance int
}

// ResolvedEntity is the outcome of resolving one name fragment against one
// pool. Matches are ordered by (distance, canonical name); the resolution is
// unique only when the leading candidate is strictly closer than the next.
type ResolvedEntity struct {
	Kind    apptype.EntityKind
	Tier    MatchTier
	Matches []Candidate
}

// Found reports whether the fragment matched anything at all.
func (r ResolvedEntity) Found() bool {
	return len(r.Matches) > 0
}

// Unique reports whether exactly one entity won the fragment outright.
// Distinct entities tied at the same distance are ambiguous, never picked.
func (r ResolvedEntity) Unique() bool {
	if len(r.Matches) == 0 {
		return false
	}
	if len(r.Matches) == 1 {
		return true
	}
	return r.Matches[0].Distance < r.Matches[1].Distance
}

// Best returns the winning entity. Only meaningful when Unique.
func (r ResolvedEntity) Best() *Entity {
	if len(r.Matches) == 0 {
		return nil
	}
	return r.Matches[0].Entity
}

// CandidateNames lists canonical names of the tied leading candidates, up to
// limit, for ambiguity reporting.
func (r ResolvedEntity) CandidateNames(limit int) []string {
	if len(r.Matches) == 0 {
		return nil
	}
	best := r.Matches[0].Distance
	names := make([]string, 0, limit)
	for _, m := range r.Matches {
		if m.Distance != best || len(names) == limit {
			break
		}
		names = append(names, m.Entity.Name)
	}
	return names
}

// Query is a fully interpreted request, ready to dispatch. Entities hold the
// resolved canonical entities in the order their names appeared in the text.
type Query struct {
	Kind     IntentKind
	Entities []*Entity
	Season   string
	LastN    int
}

// ResultEnvelope is the uniform response shape for every query, including
// failures. Data holds the intent-specific payload, or an ErrorData for
// envelopes of type "error".
type ResultEnvelope struct {
	Type          string `json:"type"`
	OriginalQuery string `json:"original_query"`
	Data          any    `json:"data"`
}

// ErrorData is the payload of an error envelope.
type ErrorData struct {
	Message string `json:"message"`
}

// ErrorEnvelope builds the uniform failure response for a query.
func ErrorEnvelope(original, message string) ResultEnvelope {
	return ResultEnvelope{
		Type:          envelopeTypeError,
		OriginalQuery: original,
		Data:          ErrorData{Message: message},
	}
}
