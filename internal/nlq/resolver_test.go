package nlq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chrisc1124/statpad/internal/apptype"
)

// namesFixture is a small two-pool name source shared by the resolver and
// interpreter tests.
type namesFixture struct{}

func (namesFixture) AllKnownNames(_ context.Context, kind apptype.EntityKind) ([]apptype.NameEntry, error) {
	if kind == apptype.KindTeam {
		return []apptype.NameEntry{
			{ID: 1, Name: "Golden State Warriors", Abbrev: "GSW", City: "San Francisco", Kind: kind},
			{ID: 2, Name: "Los Angeles Lakers", Abbrev: "LAL", City: "Los Angeles", Kind: kind},
			{ID: 3, Name: "Los Angeles Clippers", Abbrev: "LAC", City: "Los Angeles", Kind: kind},
			{ID: 4, Name: "Portland Trail Blazers", Abbrev: "POR", City: "Portland", Kind: kind},
		}, nil
	}
	return []apptype.NameEntry{
		{ID: 10, Name: "Stephen Curry", Kind: kind},
		{ID: 11, Name: "Seth Curry", Kind: kind},
		{ID: 12, Name: "LeBron James", Kind: kind},
		{ID: 13, Name: "Giannis Antetokounmpo", Kind: kind},
		{ID: 14, Name: "D'Angelo Russell", Kind: kind},
	}, nil
}

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := BuildIndex(context.Background(), namesFixture{})
	require.NoError(t, err)
	return idx
}

func TestResolveExactTier(t *testing.T) {
	r := NewResolver(buildTestIndex(t))

	res := r.Resolve("Stephen Curry", apptype.KindPlayer)
	require.True(t, res.Unique())
	assert.Equal(t, TierExact, res.Tier)
	assert.Equal(t, int64(10), res.Best().ID)

	res = r.Resolve("GSW", apptype.KindTeam)
	require.True(t, res.Unique())
	assert.Equal(t, TierExact, res.Tier)
	assert.Equal(t, "Golden State Warriors", res.Best().Name)
}

func TestResolveCaseInsensitiveTier(t *testing.T) {
	r := NewResolver(buildTestIndex(t))

	res := r.Resolve("stephen curry", apptype.KindPlayer)
	require.True(t, res.Unique())
	assert.Equal(t, TierCaseInsensitive, res.Tier)
	assert.Equal(t, "Stephen Curry", res.Best().Name)

	res = r.Resolve("gsw", apptype.KindTeam)
	require.True(t, res.Unique())
	assert.Equal(t, TierCaseInsensitive, res.Tier)
}

func TestResolveFuzzyFirstName(t *testing.T) {
	r := NewResolver(buildTestIndex(t))

	// "Steph" is a substring of exactly one player.
	res := r.Resolve("Steph", apptype.KindPlayer)
	require.True(t, res.Unique())
	assert.Equal(t, TierFuzzy, res.Tier)
	assert.Equal(t, "Stephen Curry", res.Best().Name)
}

func TestResolveFuzzyTypo(t *testing.T) {
	r := NewResolver(buildTestIndex(t))

	res := r.Resolve("Stephon Curry", apptype.KindPlayer)
	require.True(t, res.Unique())
	assert.Equal(t, TierFuzzy, res.Tier)
	assert.Equal(t, "Stephen Curry", res.Best().Name)
	assert.Equal(t, 1, res.Matches[0].Distance)

	// A first-name typo matches through the name token.
	res = r.Resolve("Lebrn", apptype.KindPlayer)
	require.True(t, res.Unique())
	assert.Equal(t, "LeBron James", res.Best().Name)
}

func TestResolveAmbiguousSurname(t *testing.T) {
	r := NewResolver(buildTestIndex(t))

	res := r.Resolve("Curry", apptype.KindPlayer)
	require.True(t, res.Found())
	assert.False(t, res.Unique())
	// Tied candidates are listed in canonical-name order.
	assert.Equal(t, []string{"Seth Curry", "Stephen Curry"}, res.CandidateNames(5))
}

func TestResolveAmbiguousCity(t *testing.T) {
	r := NewResolver(buildTestIndex(t))

	res := r.Resolve("Los Angeles", apptype.KindTeam)
	require.True(t, res.Found())
	assert.False(t, res.Unique())
	assert.Equal(t, []string{"Los Angeles Clippers", "Los Angeles Lakers"}, res.CandidateNames(5))
}

func TestResolveTeamAliases(t *testing.T) {
	r := NewResolver(buildTestIndex(t))

	tests := []struct {
		fragment string
		want     string
	}{
		{"Warriors", "Golden State Warriors"},
		{"Lakers", "Los Angeles Lakers"},
		{"Trail Blazers", "Portland Trail Blazers"},
		{"Blazers", "Portland Trail Blazers"},
		{"LAC", "Los Angeles Clippers"},
	}
	for _, tt := range tests {
		res := r.Resolve(tt.fragment, apptype.KindTeam)
		require.True(t, res.Unique(), tt.fragment)
		assert.Equal(t, tt.want, res.Best().Name, tt.fragment)
	}
}

func TestResolveApostropheInsensitive(t *testing.T) {
	r := NewResolver(buildTestIndex(t))

	res := r.Resolve("Dangelo Russell", apptype.KindPlayer)
	require.True(t, res.Unique())
	assert.Equal(t, "D'Angelo Russell", res.Best().Name)
}

func TestResolveNoMatch(t *testing.T) {
	r := NewResolver(buildTestIndex(t))

	res := r.Resolve("Zydrunas Ilgauskas", apptype.KindPlayer)
	assert.False(t, res.Found())

	// Short fragments get no edit budget, so near misses stay misses.
	res = r.Resolve("Xyz", apptype.KindPlayer)
	assert.False(t, res.Found())

	res = r.Resolve("", apptype.KindPlayer)
	assert.False(t, res.Found())
}

func TestResolvePoolsAreSeparate(t *testing.T) {
	r := NewResolver(buildTestIndex(t))

	// A team name asked of the player pool does not resolve.
	res := r.Resolve("Warriors", apptype.KindPlayer)
	assert.False(t, res.Found())

	res = r.Resolve("Stephen Curry", apptype.KindTeam)
	assert.False(t, res.Found())
}

func TestEditBudgetScalesWithLength(t *testing.T) {
	assert.Equal(t, 0, editBudget(3))
	assert.Equal(t, 1, editBudget(5))
	assert.Equal(t, 2, editBudget(11))
	assert.Equal(t, 3, editBudget(20))
}

func TestBoundedLevenshtein(t *testing.T) {
	assert.Equal(t, 0, boundedLevenshtein("curry", "curry", 3))
	assert.Equal(t, 1, boundedLevenshtein("stephon", "stephen", 3))
	assert.Equal(t, 1, boundedLevenshtein("lbron", "lebron", 3))
	// Past the bound the exact value is not computed.
	assert.Equal(t, 2, boundedLevenshtein("giannis", "lebron", 1))
}
