package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tiliavir/enats/internal/match"
)

var keys = []string{"2305#Pricing", "2305#Planning", "1100#Audit", "ACME#Onboarding"}

func TestBestMatchExact(t *testing.T) {
	for _, k := range keys {
		assert.Equal(t, k, match.BestMatch(k, keys))
	}
}

func TestBestMatchEmpty(t *testing.T) {
	assert.Equal(t, "", match.BestMatch("", keys))
	assert.Equal(t, "", match.BestMatch("2305#Pricing", nil))
	assert.Equal(t, "", match.BestMatch("2305#Pricing", []string{}))
}

func TestBestMatchSuggestions(t *testing.T) {
	tests := []struct {
		key, want string
	}{
		{"2305#Pricng", "2305#Pricing"},
		{"2305#pricing", "2305#Pricing"},
		{"1100#Audits", "1100#Audit"},
		{"ACME#Onboard", "ACME#Onboarding"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, match.BestMatch(tt.key, keys), tt.key)
	}
}

func TestBestMatchSingleCandidate(t *testing.T) {
	assert.Equal(t, "2305#Pricing", match.BestMatch("9999#Unknown", []string{"2305#Pricing"}))
}

func TestBestMatchTieKeepsSmallestKey(t *testing.T) {
	// Equal length, one differing character at the same position.
	got := match.BestMatch("abc#x", []string{"abc#z", "abc#y"})
	assert.Equal(t, "abc#y", got)
}

func TestBestMatchDoesNotMutateCandidates(t *testing.T) {
	in := []string{"b", "a"}
	match.BestMatch("a", in)
	assert.Equal(t, []string{"b", "a"}, in)
}

func TestMatcherFloor(t *testing.T) {
	got, ok := match.Matcher{}.Suggest("zzzz", []string{"2305#Pricing"})
	assert.True(t, ok)
	assert.Equal(t, "2305#Pricing", got)

	_, ok = match.Matcher{Floor: 0.9}.Suggest("zzzz", []string{"2305#Pricing"})
	assert.False(t, ok)

	got, ok = match.Matcher{Floor: 0.9}.Suggest("2305#Pricng", keys)
	assert.True(t, ok)
	assert.Equal(t, "2305#Pricing", got)

	_, ok = match.Matcher{}.Suggest("", keys)
	assert.False(t, ok)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, match.Similarity("same", "same"))
	assert.Less(t, match.Similarity("abcd", "wxyz"), 0.5)
}
