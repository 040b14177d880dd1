package nlq

import (
	"regexp"
	"strings"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/metrics"
)

// seasonRe is the only accepted season form, e.g. "2023-24".
var seasonRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Interpreter turns raw text into a typed Query against the current index
// snapshot. It is pure: the same text and snapshot always produce the same
// outcome, and interpreting has no effect on either.
type Interpreter struct {
	holder        *IndexHolder
	maxCandidates int
}

// NewInterpreter binds the interpreter to the holder it reads snapshots
// from. maxCandidates caps the names listed in ambiguity failures.
func NewInterpreter(holder *IndexHolder, maxCandidates int) *Interpreter {
	if maxCandidates <= 0 {
		maxCandidates = 5
	}
	return &Interpreter{holder: holder, maxCandidates: maxCandidates}
}

// Interpret classifies and resolves text into a Query. All failures are
// *QueryError values whose Error text is safe to show the caller.
func (it *Interpreter) Interpret(text string) (*Query, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, newMissingFieldError("query")
	}
	m := classify(trimmed)
	resolver := NewResolver(it.holder.Current())

	switch m.shape {
	case shapePlayerStats:
		return it.playerStatsQuery(resolver, m)
	case shapeComparisonSeason, shapeComparisonGameLogs:
		return it.comparisonQuery(resolver, m)
	default:
		return nil, newUnrecognizedError()
	}
}

func (it *Interpreter) playerStatsQuery(resolver *Resolver, m match) (*Query, error) {
	res := resolver.Resolve(m.spans[0], apptype.KindPlayer)
	if qerr := it.failure(m.spans[0], res); qerr != nil {
		return nil, qerr
	}
	season, err := validSeason(m.season)
	if err != nil {
		return nil, err
	}
	recordTiers(res)
	return &Query{Kind: IntentPlayerStats, Entities: []*Entity{res.Best()}, Season: season}, nil
}

// comparisonQuery settles whether a comparison is about players or teams:
// the player pool is tried for both spans first, then the team pool. When
// neither pool resolves both, the failure is reported from the pool that
// resolved more spans, players on a tie, naming the first failing span.
func (it *Interpreter) comparisonQuery(resolver *Resolver, m match) (*Query, error) {
	players := resolveAll(resolver, m.spans, apptype.KindPlayer)
	teams := resolveAll(resolver, m.spans, apptype.KindTeam)

	var chosen []ResolvedEntity
	switch {
	case allUnique(players):
		chosen = players
	case allUnique(teams):
		chosen = teams
	default:
		pool, other := players, teams
		if uniqueCount(teams) > uniqueCount(players) {
			pool, other = teams, players
		}
		for i, res := range pool {
			if res.Unique() {
				continue
			}
			qerr := it.failure(m.spans[i], res)
			if qerr.Kind == ErrEntityNotFound && !other[i].Found() {
				// Missing from both pools, keep the message neutral.
				qerr.EntityKind = ""
			}
			return nil, qerr
		}
		return nil, newUnrecognizedError()
	}

	entities := []*Entity{chosen[0].Best(), chosen[1].Best()}
	isTeam := entities[0].Kind == apptype.KindTeam

	if m.shape == shapeComparisonGameLogs {
		kind := IntentPlayerComparisonGameLogs
		if isTeam {
			kind = IntentTeamComparisonGameLogs
		}
		recordTiers(chosen...)
		return &Query{Kind: kind, Entities: entities, LastN: m.lastN}, nil
	}

	season, err := validSeason(m.season)
	if err != nil {
		return nil, err
	}
	kind := IntentPlayerComparisonSeason
	if isTeam {
		kind = IntentTeamComparisonSeason
	}
	recordTiers(chosen...)
	return &Query{Kind: kind, Entities: entities, Season: season}, nil
}

// failure maps a non-unique resolution to its QueryError, nil when unique.
func (it *Interpreter) failure(span string, res ResolvedEntity) *QueryError {
	if res.Unique() {
		return nil
	}
	if !res.Found() {
		return newEntityNotFoundError(span, res.Kind)
	}
	return newAmbiguousEntityError(span, res.Kind, res.CandidateNames(it.maxCandidates))
}

// validSeason enforces the exact "YYYY-YY" form. "2023-2024" is rejected,
// never coerced, and an absent token is a missing required field.
func validSeason(text string) (string, error) {
	if text == "" {
		return "", newMissingFieldError("season")
	}
	if !seasonRe.MatchString(text) {
		return "", newInvalidSeasonError(text)
	}
	return text, nil
}

func resolveAll(resolver *Resolver, spans []string, kind apptype.EntityKind) []ResolvedEntity {
	out := make([]ResolvedEntity, len(spans))
	for i, span := range spans {
		out[i] = resolver.Resolve(span, kind)
	}
	return out
}

func allUnique(results []ResolvedEntity) bool {
	for _, res := range results {
		if !res.Unique() {
			return false
		}
	}
	return true
}

func uniqueCount(results []ResolvedEntity) int {
	n := 0
	for _, res := range results {
		if res.Unique() {
			n++
		}
	}
	return n
}

func recordTiers(results ...ResolvedEntity) {
	for _, res := range results {
		metrics.Default().IncResolverTier(string(res.Kind), res.Tier.String())
	}
}
