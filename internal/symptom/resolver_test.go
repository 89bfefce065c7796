package symptom

import (
	"testing"

	"github.com/agnivade/levenshtein"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usman11267/ai-project/internal/catalog"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	cat, err := catalog.New("")
	require.NoError(t, err)
	return NewResolver(cat)
}

func TestResolveExactMatch(t *testing.T) {
	r := newResolver(t)

	assert.Equal(t, []string{"fever"}, r.Resolve([]string{"fever"}))
	assert.Equal(t, []string{"fever"}, r.Resolve([]string{"  FeVer "}), "matching is case-insensitive")
	assert.Equal(t, []string{"migraine"}, r.Resolve([]string{"migraine"}))
}

func TestResolveFuzzyMatch(t *testing.T) {
	r := newResolver(t)

	assert.Equal(t, []string{"fever"}, r.Resolve([]string{"feever"}))
	assert.Equal(t, []string{"cough"}, r.Resolve([]string{"cogh"}))
	assert.Equal(t, []string{"migraine"}, r.Resolve([]string{"migrane"}))
}

func TestResolveContainment(t *testing.T) {
	r := newResolver(t)

	// Too far for edit distance, but contains a catalog entry.
	assert.Equal(t, []string{"headache"}, r.Resolve([]string{"really bad headache"}))
}

func TestResolveUnknownKeptVerbatim(t *testing.T) {
	r := newResolver(t)

	got := r.Resolve([]string{"glowing elbow"})
	assert.Equal(t, []string{"glowing elbow"}, got, "novel complaints are never rejected")
}

func TestResolveDeduplicates(t *testing.T) {
	r := newResolver(t)

	got := r.Resolve([]string{"fever", "FEVER", "feever", "cough"})
	assert.Equal(t, []string{"fever", "cough"}, got, "duplicates collapse, first occurrence order kept")
}

func TestResolveFiltersEmptyEntries(t *testing.T) {
	r := newResolver(t)

	assert.Empty(t, r.Resolve([]string{"", "   "}))
	assert.Equal(t, []string{"fever"}, r.Resolve([]string{"", "fever", " "}))
}

func TestResolveTieBreaksByCatalogOrder(t *testing.T) {
	r := newResolver(t)

	// "dwt cough" is edit distance 2 from both "dry cough" and "wet cough";
	// "dry cough" comes first in the catalog and must win the tie.
	require.Equal(t, 2, levenshtein.ComputeDistance("dwt cough", "dry cough"))
	require.Equal(t, 2, levenshtein.ComputeDistance("dwt cough", "wet cough"))

	got := r.Resolve([]string{"dwt cough"})
	assert.Equal(t, []string{"dry cough"}, got)
}
