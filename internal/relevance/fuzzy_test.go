package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "cat", 3},
		{"cat", "", 3},
		{"cat", "cat", 0},
		{"cat", "bat", 1},
		{"kitten", "sitting", 3},
		{"return", "retrun", 2},
		{"shipping", "shipping-fee", 4},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "distance must be symmetric")
		})
	}
}

func TestLevenshtein_Identity(t *testing.T) {
	for _, s := range []string{"a", "refund", "co-pay", "12345", "warranty-claims"} {
		assert.Zero(t, Levenshtein(s, s), s)
	}
}

func TestMatchToken(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		token   string
		want    MatchTier
	}{
		{"exact", "refund", "refund", TierExact},
		{"token contains keyword", "ship", "shipping", TierContainment},
		{"keyword contains token", "shipping", "ship", TierContainment},
		{"distance one", "refund", "refnd", TierEditDistance1},
		{"distance one at floor", "card", "cart", TierEditDistance1},
		{"distance one below floor", "cat", "bat", TierNoMatch},
		{"distance two", "return", "retrun", TierEditDistance2},
		{"distance two below floor", "abcd", "abef", TierNoMatch},
		{"length gap prunes", "track", "trucking", TierNoMatch},
		{"unrelated", "policy", "within", TierNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchToken(tt.keyword, tt.token))
		})
	}
}

func TestFuzzyMatchScore(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		tokens  []string
		want    float64
	}{
		{"exact", "cat", []string{"cat"}, 1.0},
		{"short distance one suppressed", "cat", []string{"bat"}, 0},
		{"empty field", "cat", nil, 0},
		{"best tier wins", "refund", []string{"refnd", "refunds"}, 0.9},
		{"exact short-circuits", "refund", []string{"refnd", "refund", "refunds"}, 1.0},
		{"distance two", "return", []string{"retrun", "policy"}, 0.5},
		{"no match", "warranty", []string{"shipping", "delay"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FuzzyMatchScore(tt.keyword, tt.tokens))
		})
	}
}

func TestFuzzyMatchScore_PluralVariant(t *testing.T) {
	assert.GreaterOrEqual(t, FuzzyMatchScore("shipping", []string{"shippings"}), 0.8)
}

func TestMatchTier_String(t *testing.T) {
	assert.Equal(t, "exact", TierExact.String())
	assert.Equal(t, "containment", TierContainment.String())
	assert.Equal(t, "edit-distance-1", TierEditDistance1.String())
	assert.Equal(t, "edit-distance-2", TierEditDistance2.String())
	assert.Equal(t, "none", TierNoMatch.String())
}
