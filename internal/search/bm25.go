package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
)

// SearchBM25 runs query as a Bleve match query and returns up to limit hits
// in descending score order. A limit below 1 means 10.
func (i *Indexer) SearchBM25(query string, limit int) ([]SearchResult, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	searchRequest := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	searchRequest.Fields = []string{"title"}

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}
	return convertBleveResults(results), nil
}

func convertBleveResults(results *bleve.SearchResult) []SearchResult {
	out := make([]SearchResult, 0, len(results.Hits))
	for _, hit := range results.Hits {
		title, _ := hit.Fields["title"].(string)
		out = append(out, SearchResult{
			ID:    hit.ID,
			Title: title,
			Score: hit.Score,
		})
	}
	return out
}
