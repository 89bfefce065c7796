package symptom

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/usman11267/ai-project/internal/catalog"
)

// DefaultDistanceThreshold is the maximum edit distance at which a raw
// symptom is considered a misspelling of a catalog entry.
const DefaultDistanceThreshold = 2

// Resolver normalizes free-form symptom text against the catalog. Unmatched
// symptoms are kept verbatim; patients must be able to report complaints the
// catalog has never seen.
type Resolver struct {
	entries   []string
	threshold int
}

func NewResolver(cat *catalog.Catalog) *Resolver {
	return &Resolver{
		entries:   cat.Entries(),
		threshold: DefaultDistanceThreshold,
	}
}

// Resolve normalizes each raw symptom and collapses duplicates, preserving
// the order of first occurrence. Pure: no side effects, deterministic.
func (r *Resolver) Resolve(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		resolved := r.resolveOne(s)
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
	}
	return out
}

// resolveOne matches a single normalized symptom: exact catalog hit, then
// closest edit distance within the threshold, then substring containment.
// Entries are walked in catalog order, so at equal distance the first
// catalog entry wins.
func (r *Resolver) resolveOne(s string) string {
	best := ""
	bestDist := r.threshold + 1
	for _, entry := range r.entries {
		if entry == s {
			return entry
		}
		if d := levenshtein.ComputeDistance(s, entry); d < bestDist {
			best = entry
			bestDist = d
		}
	}
	if best != "" {
		return best
	}
	for _, entry := range r.entries {
		if strings.Contains(entry, s) || strings.Contains(s, entry) {
			return entry
		}
	}
	return s
}
