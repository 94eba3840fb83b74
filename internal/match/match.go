// Package match suggests the closest valid client#task key for a key that is
// not in the template.
package match

import (
	"sort"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Similarity returns the Jaro-Winkler similarity of a and b in [0, 1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	return strutil.Similarity(a, b, metrics.NewJaroWinkler())
}

// BestMatch returns the candidate most similar to key, or "" when key or
// candidates are empty.
func BestMatch(key string, candidates []string) string {
	best, _ := BestMatchScore(key, candidates)
	return best
}

// BestMatchScore is BestMatch that also returns the winning score.
// Candidates are visited in sorted order and a later candidate wins only with
// a strictly higher score, so ties resolve to the smallest key.
func BestMatchScore(key string, candidates []string) (string, float64) {
	if key == "" || len(candidates) == 0 {
		return "", 0
	}
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	best, bestScore := "", -1.0
	for _, c := range sorted {
		if c == key {
			return c, 1
		}
		if s := Similarity(key, c); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, bestScore
}

// Matcher suggests replacements, suppressing suggestions below Floor.
type Matcher struct {
	Floor float64
}

// Suggest returns the best candidate for key and whether it reaches the floor.
func (m Matcher) Suggest(key string, candidates []string) (string, bool) {
	best, score := BestMatchScore(key, candidates)
	if best == "" || score < m.Floor {
		return "", false
	}
	return best, true
}
