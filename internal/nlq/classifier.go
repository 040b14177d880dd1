package nlq

import (
	"regexp"
	"strconv"
	"strings"
)

// shape is a classifier verdict. Comparison shapes stay player-or-team
// agnostic; resolution settles the flavor later.
type shape int

const (
	shapeUnrecognized shape = iota
	shapePlayerStats
	shapeComparisonSeason
	shapeComparisonGameLogs
)

// match is the raw capture of one shape rule: name spans in text order plus
// the season token and game window when present. The season token is kept
// verbatim so malformed seasons surface as validation failures, never as
// parse failures.
type match struct {
	shape  shape
	rule   string
	spans  []string
	season string
	lastN  int
}

var (
	seasonTokenRe   = regexp.MustCompile(`\b(\d{4}-\d{2,4})\b`)
	lastNRe         = regexp.MustCompile(`(?i)\b(?:in\s+|over\s+)?(?:the\s+)?last\s+(\d+)\s+games?\b`)
	gameLogMarkerRe = regexp.MustCompile(`(?i)\b(?:game\s?logs?|head\s?to\s?head)\b`)
	statKeywordRe   = regexp.MustCompile(`(?i)\b(?:points?|rebounds?|assists?|steals?|blocks?|stats?|statistics|numbers|averag(?:e|es|ed|ing)|scor(?:e|ed|es|ing)|ppg)\b`)

	compareLeadRe = regexp.MustCompile(`(?i)^compare\s+(.+?)\s+(?:and|to|with|versus|vs\.?|against)\s+(.+)$`)
	versusRe      = regexp.MustCompile(`(?i)^(.+?)\s+(?:versus|vs\.?|against)\s+(.+)$`)

	nameShapeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.'\- ]*$`)
)

// fillerWords are connectives left dangling once the season or window phrase
// is cut out of the text.
var fillerWords = map[string]bool{
	"in": true, "for": true, "during": true, "over": true,
	"the": true, "season": true, "of": true, "from": true,
}

// scaffoldWords are question scaffolding around a player name.
var scaffoldWords = map[string]bool{
	"how": true, "many": true, "much": true, "what": true, "who": true,
	"did": true, "does": true, "do": true, "is": true, "are": true,
	"was": true, "were": true, "have": true, "has": true, "had": true,
	"get": true, "got": true, "a": true, "an": true, "per": true,
	"game": true, "games": true, "his": true, "her": true, "their": true,
	"this": true, "that": true, "show": true, "tell": true, "me": true,
	"about": true,
}

// features are extracted once per query and shared by every rule.
type features struct {
	season   string
	lastN    int
	hasLastN bool
	gameLog  bool
	statWord bool

	remainder string // text with the feature phrases removed
	span1     string
	span2     string
	hasPair   bool
}

func extractFeatures(text string) features {
	var f features
	rest := text
	if m := lastNRe.FindStringSubmatch(rest); m != nil {
		f.lastN, _ = strconv.Atoi(m[1])
		f.hasLastN = true
		rest = lastNRe.ReplaceAllString(rest, " ")
	}
	if m := seasonTokenRe.FindStringSubmatch(rest); m != nil {
		f.season = m[1]
		rest = seasonTokenRe.ReplaceAllString(rest, " ")
	}
	if gameLogMarkerRe.MatchString(rest) {
		f.gameLog = true
		rest = gameLogMarkerRe.ReplaceAllString(rest, " ")
	}
	f.statWord = statKeywordRe.MatchString(rest)
	f.remainder = trimFiller(rest)
	f.span1, f.span2, f.hasPair = extractPair(f.remainder)
	return f
}

// extractPair captures the two compared names. A pair needs an explicit
// comparison marker: a leading "compare" verb, or an infix versus word.
// "A and B" with no marker is not a pair.
func extractPair(s string) (string, string, bool) {
	for _, re := range []*regexp.Regexp{compareLeadRe, versusRe} {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		a, b := cleanSpan(m[1]), cleanSpan(m[2])
		if a != "" && b != "" && nameShapeRe.MatchString(a) && nameShapeRe.MatchString(b) {
			return a, b, true
		}
	}
	return "", "", false
}

// cleanSpan trims punctuation, a leading article and trailing fillers from a
// captured name span, preserving its case.
func cleanSpan(s string) string {
	s = trimFiller(strings.Trim(s, " \t?.!,"))
	words := strings.Fields(s)
	if len(words) > 1 && strings.EqualFold(words[0], "the") {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// trimFiller collapses whitespace, strips outer punctuation and drops
// trailing filler words.
func trimFiller(s string) string {
	s = strings.Trim(s, " \t?.!,")
	words := strings.Fields(s)
	for len(words) > 0 && fillerWords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// extractName pulls the longest run of tokens that are neither question
// scaffolding, fillers nor stat keywords; that run is the candidate player
// name.
func extractName(s string) string {
	var best, cur []string
	flush := func() {
		if len(cur) > len(best) {
			best = cur
		}
		cur = nil
	}
	for _, w := range strings.Fields(s) {
		bare := strings.Trim(w, "?.!,")
		lower := strings.ToLower(bare)
		if bare == "" || scaffoldWords[lower] || fillerWords[lower] || statKeywordRe.MatchString(bare) {
			flush()
			continue
		}
		cur = append(cur, bare)
	}
	flush()
	span := strings.Join(best, " ")
	if !nameShapeRe.MatchString(span) {
		return ""
	}
	return span
}

type rule struct {
	name  string
	apply func(features) (match, bool)
}

// rules are tried in order and the first whose conditions hold wins. A pair
// with a game window outranks one with a season token, so "last 5 games"
// sticks even when a season also appears in the text.
var rules = []rule{
	{
		name: "comparison_last_n_games",
		apply: func(f features) (match, bool) {
			if !f.hasPair || !f.hasLastN {
				return match{}, false
			}
			return match{shape: shapeComparisonGameLogs, spans: []string{f.span1, f.span2}, lastN: f.lastN}, true
		},
	},
	{
		name: "comparison_game_logs",
		apply: func(f features) (match, bool) {
			if !f.hasPair || !f.gameLog {
				return match{}, false
			}
			return match{shape: shapeComparisonGameLogs, spans: []string{f.span1, f.span2}}, true
		},
	},
	{
		name: "comparison_season",
		apply: func(f features) (match, bool) {
			if !f.hasPair || f.season == "" {
				return match{}, false
			}
			return match{shape: shapeComparisonSeason, spans: []string{f.span1, f.span2}, season: f.season}, true
		},
	},
	{
		name: "comparison_bare",
		apply: func(f features) (match, bool) {
			if !f.hasPair {
				return match{}, false
			}
			// Season stays empty so interpretation reports the missing field.
			return match{shape: shapeComparisonSeason, spans: []string{f.span1, f.span2}}, true
		},
	},
	{
		name: "player_season_stats",
		apply: func(f features) (match, bool) {
			if f.season == "" || !f.statWord {
				return match{}, false
			}
			span := extractName(f.remainder)
			if span == "" {
				return match{}, false
			}
			return match{shape: shapePlayerStats, spans: []string{span}, season: f.season}, true
		},
	},
}

// classify runs the ordered shape rules over trimmed text.
func classify(text string) match {
	f := extractFeatures(text)
	for _, r := range rules {
		if m, ok := r.apply(f); ok {
			m.rule = r.name
			return m
		}
	}
	return match{shape: shapeUnrecognized, rule: "unrecognized"}
}
