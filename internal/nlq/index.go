package nlq

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/apptype"
)

// NameSource supplies the known names one pool at a time. The stats store
// satisfies it.
type NameSource interface {
	AllKnownNames(ctx context.Context, kind apptype.EntityKind) ([]apptype.NameEntry, error)
}

// Entity is one resolvable player or team. Name is canonical and is the
// string handed to the store on dispatch.
type Entity struct {
	ID      int64
	Name    string
	Aliases []string
	Kind    apptype.EntityKind
}

// nameForm is one normalized spelling of an entity, precomputed for the
// fuzzy tier.
type nameForm struct {
	entity *Entity
	norm   string
	tokens []string
}

type pool struct {
	entities []*Entity
	byName   map[string][]*Entity
	byLower  map[string][]*Entity
	forms    []nameForm
}

// Index is an immutable snapshot of both name pools. Rebuilds produce a new
// Index; readers keep whichever snapshot they started with.
type Index struct {
	players *pool
	teams   *pool
	builtAt time.Time
}

// BuildIndex loads both pools from src and precomputes every lookup
// structure. The returned Index is never mutated afterwards.
func BuildIndex(ctx context.Context, src NameSource) (*Index, error) {
	players, err := src.AllKnownNames(ctx, apptype.KindPlayer)
	if err != nil {
		return nil, errors.Wrap(err, "load player names")
	}
	teams, err := src.AllKnownNames(ctx, apptype.KindTeam)
	if err != nil {
		return nil, errors.Wrap(err, "load team names")
	}

	idx := &Index{
		players: buildPool(players, nil),
		teams:   buildPool(teams, teamAliases),
		builtAt: time.Now(),
	}
	return idx, nil
}

// Counts reports pool sizes, for health reporting.
func (idx *Index) Counts() (players, teams int) {
	return len(idx.players.entities), len(idx.teams.entities)
}

// BuiltAt is the snapshot's build time.
func (idx *Index) BuiltAt() time.Time {
	return idx.builtAt
}

func (idx *Index) pool(kind apptype.EntityKind) *pool {
	if kind == apptype.KindTeam {
		return idx.teams
	}
	return idx.players
}

func buildPool(entries []apptype.NameEntry, derive func(apptype.NameEntry) []string) *pool {
	p := &pool{
		entities: make([]*Entity, 0, len(entries)),
		byName:   make(map[string][]*Entity, len(entries)),
		byLower:  make(map[string][]*Entity, len(entries)),
	}
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		aliases := entry.Aliases
		if derive != nil {
			aliases = derive(entry)
		}
		e := &Entity{ID: entry.ID, Name: entry.Name, Aliases: aliases, Kind: entry.Kind}
		p.entities = append(p.entities, e)
		for _, name := range append([]string{e.Name}, e.Aliases...) {
			addKey(p.byName, name, e)
			addKey(p.byLower, strings.ToLower(name), e)
			if norm := normalizeName(name); norm != "" {
				p.forms = append(p.forms, nameForm{entity: e, norm: norm, tokens: strings.Fields(norm)})
			}
		}
	}
	sort.Slice(p.entities, func(i, j int) bool { return p.entities[i].Name < p.entities[j].Name })
	return p
}

func addKey(m map[string][]*Entity, key string, e *Entity) {
	for _, have := range m[key] {
		if have == e {
			return
		}
	}
	m[key] = append(m[key], e)
}

// teamAliases derives the spoken names of a franchise: its abbreviation, its
// name with the city stripped, and its final word. "Golden State Warriors"
// gains "GSW" and "Warriors"; "Portland Trail Blazers" gains "POR",
// "Trail Blazers" and "Blazers".
func teamAliases(entry apptype.NameEntry) []string {
	seen := map[string]bool{entry.Name: true}
	var out []string
	add := func(alias string) {
		alias = strings.TrimSpace(alias)
		if alias != "" && !seen[alias] {
			seen[alias] = true
			out = append(out, alias)
		}
	}
	add(entry.Abbrev)
	if entry.City != "" {
		add(strings.TrimPrefix(entry.Name, entry.City+" "))
	}
	if i := strings.LastIndex(entry.Name, " "); i >= 0 {
		add(entry.Name[i+1:])
	}
	for _, alias := range entry.Aliases {
		add(alias)
	}
	return out
}

// normalizeName lowercases, drops apostrophes, maps the rest of the
// punctuation to spaces and collapses runs. "D'Angelo  Russell" becomes
// "dangelo russell".
func normalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// IndexHolder publishes the current Index and lets rebuilds swap in a new
// snapshot atomically. In-flight requests keep the snapshot they loaded.
type IndexHolder struct {
	current atomic.Pointer[Index]
}

// NewIndexHolder starts the holder at idx.
func NewIndexHolder(idx *Index) *IndexHolder {
	h := &IndexHolder{}
	h.current.Store(idx)
	return h
}

// Current returns the live snapshot.
func (h *IndexHolder) Current() *Index {
	return h.current.Load()
}

// Swap publishes a freshly built snapshot.
func (h *IndexHolder) Swap(idx *Index) {
	h.current.Store(idx)
}
