package relevance

import (
	"strings"
	"unicode/utf8"
)

const (
	// titleWeight and tagWeight scale title and tag matches relative to
	// content, which carries weight 1.
	titleWeight = 0.35
	tagWeight   = 0.25

	// proximityStep is added for each adjacent keyword pair found within
	// proximityWindow characters of each other in the content, up to
	// proximityCap in total.
	proximityStep   = 0.1
	proximityCap    = 0.2
	proximityWindow = 50

	// coverageBonus rewards documents whose content matches every keyword.
	coverageBonus = 0.1
)

// Breakdown lists the signals that make up a document score.
type Breakdown struct {
	Keywords        []string `json:"keywords"`
	MatchedKeywords int      `json:"matchedKeywords"`
	Base            float64  `json:"base"`
	Title           float64  `json:"title"`
	Tags            float64  `json:"tags"`
	Proximity       float64  `json:"proximity"`
	Coverage        float64  `json:"coverage"`
	Score           float64  `json:"score"`
}

// ScoreDocument scores one document against query with the default stop
// words. It never fails; degenerate input scores 0.
func ScoreDocument(query, content, title string, tags []string) float64 {
	return scoreKeywords(extractKeywords(query, defaultStopWords), content, title, tags).Score
}

// scoreKeywords computes the full breakdown for already-extracted keywords.
func scoreKeywords(keywords []string, content, title string, tags []string) Breakdown {
	b := Breakdown{Keywords: keywords}
	if len(keywords) == 0 {
		return b
	}

	contentTokens := Tokenize(content)
	if len(contentTokens) == 0 {
		return b
	}
	titleTokens := Tokenize(title)
	var tagTokens []string
	for _, tag := range tags {
		tagTokens = append(tagTokens, Tokenize(tag)...)
	}

	var contentScore float64
	for _, kw := range keywords {
		if m := FuzzyMatchScore(kw, contentTokens); m > 0 {
			contentScore += m
			b.MatchedKeywords++
		}
		if m := FuzzyMatchScore(kw, titleTokens); m > 0 {
			b.Title += m * titleWeight
		}
		if m := FuzzyMatchScore(kw, tagTokens); m > 0 {
			b.Tags += m * tagWeight
		}
	}

	// Averaged, so unrelated keywords dilute rather than inflate the score.
	b.Base = contentScore / float64(len(keywords))
	b.Proximity = proximityBonus(keywords, content)
	if b.MatchedKeywords == len(keywords) {
		b.Coverage = coverageBonus
	}

	total := b.Base + b.Title + b.Tags + b.Proximity + b.Coverage
	b.Score = min(1, max(0, total))
	return b
}

// proximityBonus checks adjacent keyword pairs by raw substring position in
// the lowercased content. It is a cheap approximation of "the keywords appear
// in the same sentence" and deliberately ignores the fuzzy tiers, so a pair
// can earn the bonus through an unrelated substring hit.
func proximityBonus(keywords []string, content string) float64 {
	if len(keywords) < 2 {
		return 0
	}

	lower := strings.ToLower(content)
	positions := make([]int, len(keywords))
	for i, kw := range keywords {
		positions[i] = charIndex(lower, kw)
	}

	var bonus float64
	for i := 0; i < len(keywords)-1; i++ {
		p1, p2 := positions[i], positions[i+1]
		if p1 < 0 || p2 < 0 {
			continue
		}
		d := p1 - p2
		if d < 0 {
			d = -d
		}
		if d < proximityWindow {
			bonus += proximityStep
		}
	}
	return min(bonus, proximityCap)
}

// charIndex returns the position of the first occurrence of sub in s counted
// in UTF-16 code units, or -1.
func charIndex(s, sub string) int {
	idx := strings.Index(s, sub)
	if idx <= 0 {
		return idx
	}

	prefix := s[:idx]
	n := 0
	for len(prefix) > 0 {
		r, size := utf8.DecodeRuneInString(prefix)
		prefix = prefix[size:]
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
