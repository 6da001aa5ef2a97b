// Package naming suggests close matches for mistyped identifiers.
package naming

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// Closest returns the candidate nearest to name by edit distance, or "" when
// nothing is close enough to be a plausible typo.
func Closest(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	limit := len(name) / 3
	if limit < 2 {
		limit = 2
	}
	best, bestDist := "", limit+1
	for _, c := range sorted {
		d := levenshtein.ComputeDistance(name, c)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// Hint formats a " (did you mean %q?)" suffix, or "" without a match.
func Hint(name string, candidates []string) string {
	if c := Closest(name, candidates); c != "" {
		return " (did you mean \"" + c + "\"?)"
	}
	return ""
}
