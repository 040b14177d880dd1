package nlq

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Chrisc1124/statpad/internal/apptype"
)

// Resolver matches name fragments against one immutable index snapshot.
type Resolver struct {
	index *Index
}

// NewResolver wraps one snapshot. Construct a fresh Resolver per request so
// all resolutions in the request see the same snapshot.
func NewResolver(idx *Index) *Resolver {
	return &Resolver{index: idx}
}

// Resolve matches fragment against the pool for kind. Tiers are tried in
// order: exact, case-insensitive, then fuzzy; the first tier with any hit
// decides the result, so a weak fuzzy hit never competes with an exact one.
func (r *Resolver) Resolve(fragment string, kind apptype.EntityKind) ResolvedEntity {
	fragment = strings.TrimSpace(fragment)
	res := ResolvedEntity{Kind: kind}
	if fragment == "" {
		return res
	}
	p := r.index.pool(kind)
	if hits := p.byName[fragment]; len(hits) > 0 {
		res.Tier = TierExact
		res.Matches = zeroDistance(hits)
		return res
	}
	if hits := p.byLower[strings.ToLower(fragment)]; len(hits) > 0 {
		res.Tier = TierCaseInsensitive
		res.Matches = zeroDistance(hits)
		return res
	}
	if matches := fuzzyMatches(p, fragment); len(matches) > 0 {
		res.Tier = TierFuzzy
		res.Matches = matches
	}
	return res
}

func zeroDistance(hits []*Entity) []Candidate {
	matches := make([]Candidate, len(hits))
	for i, e := range hits {
		matches[i] = Candidate{Entity: e}
	}
	sortCandidates(matches)
	return matches
}

// fuzzyMatches scans every normalized spelling in the pool, keeping each
// entity's best distance. Substring containment counts as distance zero, so
// "Steph" lands on "Stephen Curry" without edits.
func fuzzyMatches(p *pool, fragment string) []Candidate {
	frag := normalizeName(fragment)
	if frag == "" {
		return nil
	}
	budget := editBudget(utf8.RuneCountInString(frag))
	best := make(map[*Entity]int)
	for _, form := range p.forms {
		d, ok := formDistance(frag, form, budget)
		if !ok {
			continue
		}
		if have, seen := best[form.entity]; !seen || d < have {
			best[form.entity] = d
		}
	}
	matches := make([]Candidate, 0, len(best))
	for e, d := range best {
		matches = append(matches, Candidate{Entity: e, Distance: d})
	}
	sortCandidates(matches)
	return matches
}

// sortCandidates orders by distance, then canonical name, so resolution is
// deterministic for a given snapshot.
func sortCandidates(matches []Candidate) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Entity.Name < matches[j].Entity.Name
	})
}

// formDistance scores frag against one spelling: the full normalized name
// and each of its tokens, so "Lebrn" reaches "LeBron James" through the
// first-name token.
func formDistance(frag string, form nameForm, budget int) (int, bool) {
	if strings.Contains(form.norm, frag) {
		return 0, true
	}
	best, ok := 0, false
	if d := boundedLevenshtein(frag, form.norm, budget); d <= budget {
		best, ok = d, true
	}
	for _, tok := range form.tokens {
		if d := boundedLevenshtein(frag, tok, budget); d <= budget && (!ok || d < best) {
			best, ok = d, true
		}
	}
	return best, ok
}

// editBudget scales the allowed edit distance with fragment length: short
// fragments must match verbatim, long ones absorb a few typos.
func editBudget(runes int) int {
	switch {
	case runes <= 3:
		return 0
	case runes <= 7:
		return 1
	case runes <= 11:
		return 2
	default:
		return 3
	}
}

// boundedLevenshtein is a two-row edit distance that gives up once a whole
// row exceeds max, returning max+1.
func boundedLevenshtein(a, b string, max int) int {
	ra, rb := []rune(a), []rune(b)
	if d := len(ra) - len(rb); d > max || -d > max {
		return max + 1
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if rowMin > max {
			return max + 1
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
