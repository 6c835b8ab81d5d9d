/*
Package search provides a BM25 baseline over the same documents the lexical
relevance engine scores.

Documents are indexed into an in-memory Bleve index with content, title and
tags as text fields. The baseline is used to compare rankings, not to serve
assistant context.
*/
package search

// SearchResult is a single BM25 hit.
type SearchResult struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}
