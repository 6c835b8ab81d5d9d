package relevance

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// MatchTier is the quantized strength of one keyword-to-token comparison.
type MatchTier float64

// Match tiers, strongest first. The values are tuned heuristics and must stay
// exactly as they are to keep rankings stable.
const (
	TierExact         MatchTier = 1.0
	TierContainment   MatchTier = 0.9
	TierEditDistance1 MatchTier = 0.8
	TierEditDistance2 MatchTier = 0.5
	TierNoMatch       MatchTier = 0
)

const (
	// maxLenDiff skips edit distance for tokens whose lengths differ by more
	// than this; they can never land in a fuzzy tier.
	maxLenDiff = 2

	// Short words one edit apart ("to"/"go") are usually unrelated, so the
	// fuzzy tiers only apply from these lengths on.
	minLenEditDistance1 = 4
	minLenEditDistance2 = 5
)

// String returns the tier name.
func (t MatchTier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierContainment:
		return "containment"
	case TierEditDistance1:
		return "edit-distance-1"
	case TierEditDistance2:
		return "edit-distance-2"
	default:
		return "none"
	}
}

// Levenshtein returns the minimum number of single-character insertions,
// deletions and substitutions turning a into b. Characters are compared as
// runes.
func Levenshtein(a, b string) int {
	// go-edlib keeps one row sized by its first argument.
	if len(b) < len(a) {
		a, b = b, a
	}
	return edlib.LevenshteinDistance(a, b)
}

// MatchToken returns the tier reached by comparing keyword with one token.
func MatchToken(keyword, token string) MatchTier {
	if token == keyword {
		return TierExact
	}
	if strings.Contains(token, keyword) || strings.Contains(keyword, token) {
		return TierContainment
	}

	lenDiff := len(token) - len(keyword)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > maxLenDiff {
		return TierNoMatch
	}

	maxLen := max(len(token), len(keyword))
	switch dist := Levenshtein(keyword, token); {
	case dist == 1 && maxLen >= minLenEditDistance1:
		return TierEditDistance1
	case dist == 2 && maxLen >= minLenEditDistance2:
		return TierEditDistance2
	default:
		return TierNoMatch
	}
}

// FuzzyMatchScore returns the best tier keyword reaches against any token of
// a field, as a float in [0, 1]. An empty field scores 0.
func FuzzyMatchScore(keyword string, fieldTokens []string) float64 {
	best := TierNoMatch
	for _, tok := range fieldTokens {
		tier := MatchToken(keyword, tok)
		if tier == TierExact {
			return float64(TierExact)
		}
		if tier > best {
			best = tier
		}
	}
	return float64(best)
}
