package relevance

import (
	"strings"
	"unicode"
)

// minKeywordLen is the shortest token kept as a query keyword.
const minKeywordLen = 3

// Tokenize lowercases text and splits it into word tokens.
//
// Every character outside [a-z0-9-] and whitespace is replaced by a space, so
// hyphenated terms such as "co-pay" stay one token while apostrophes split
// words ("don't" becomes "don" and "t"). Duplicates and source order are kept.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}

	normalized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, strings.ToLower(text))

	return strings.Fields(normalized)
}

// StopWords is an immutable set of words dropped from query keywords.
type StopWords struct {
	words map[string]struct{}
}

// NewStopWords builds a stop-word set. Words are matched after lowercasing.
func NewStopWords(words ...string) StopWords {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return StopWords{words: set}
}

// Contains reports whether token is a stop word.
func (s StopWords) Contains(token string) bool {
	_, ok := s.words[token]
	return ok
}

// Len returns the number of stop words in the set.
func (s StopWords) Len() int {
	return len(s.words)
}

// defaultStopWordList holds common English function words and the
// conversational fillers typical of support chat ("hi", "please", "thanks").
var defaultStopWordList = []string{
	"a", "an", "the", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did", "will", "would", "could",
	"should", "may", "might", "can", "shall", "to", "of", "in", "for",
	"on", "with", "at", "by", "from", "as", "into", "through", "during",
	"before", "after", "above", "below", "between", "and", "but", "or",
	"not", "no", "nor", "so", "yet", "both", "either", "neither", "each",
	"every", "all", "any", "few", "more", "most", "other", "some", "such",
	"than", "too", "very", "just", "about", "up", "out", "if", "then",
	"what", "which", "who", "whom", "this", "that", "these", "those",
	"i", "me", "my", "we", "our", "you", "your", "he", "him", "his",
	"she", "her", "it", "its", "they", "them", "their", "how", "when",
	"where", "why", "hi", "hello", "hey", "please", "thanks", "thank",
	"want", "need", "know", "get", "got", "like", "also", "well", "back",
	"even", "new", "way", "use", "come", "make", "go", "see", "look",
}

var defaultStopWords = NewStopWords(defaultStopWordList...)

// DefaultStopWords returns the built-in English stop-word set.
func DefaultStopWords() StopWords {
	return defaultStopWords
}

// ExtractKeywords returns the deduplicated query keywords of text using the
// default stop words, in first-seen order.
func ExtractKeywords(text string) []string {
	return extractKeywords(text, defaultStopWords)
}

func extractKeywords(text string, stopWords StopWords) []string {
	tokens := Tokenize(text)
	keywords := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))

	for _, tok := range tokens {
		if len(tok) < minKeywordLen || stopWords.Contains(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}

	return keywords
}
