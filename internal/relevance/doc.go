/*
Package relevance implements the lexical relevance scoring engine used for
knowledge-base retrieval (RAG context selection) and free-text article search.

The engine extracts keywords from a query, matches each keyword against the
content, title and tag tokens of every candidate document using exact,
substring and Levenshtein tiers, and combines the per-field matches into a
single score in [0, 1]. A ranker then applies a threshold, sorts by score and
keeps the top K.

The engine is pure: it holds no mutable state, performs no I/O and never
returns an error for degenerate input. Empty queries, empty documents and text
outside the accepted character class all score 0.
*/
package relevance

// Document is a candidate for scoring. The engine only reads it.
type Document struct {
	ID      string
	Content string
	Title   string
	Tags    []string
}

// ScoredDocument is a Document paired with its relevance score in [0, 1].
type ScoredDocument struct {
	Document
	Score float64 `json:"score"`
}
