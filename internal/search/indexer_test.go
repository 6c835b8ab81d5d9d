package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/kbscore/internal/relevance"
)

func newTestIndexer(t *testing.T) *Indexer {
	t.Helper()
	indexer, err := NewIndexer(nil)
	require.NoError(t, err)
	t.Cleanup(func() { indexer.Close() })
	return indexer
}

func testDocuments() []relevance.Document {
	return []relevance.Document{
		{ID: "returns", Title: "Return policy", Content: "Refunds are issued within 30 days of delivery.", Tags: []string{"refund"}},
		{ID: "shipping", Title: "Shipping times", Content: "Standard shipping takes five business days."},
		{ID: "billing", Title: "Billing", Content: "Invoices are emailed monthly.", Tags: []string{"invoice", "payment"}},
	}
}

func TestIndexDocuments(t *testing.T) {
	indexer := newTestIndexer(t)

	docs := append(testDocuments(), relevance.Document{Title: "No id", Content: "dropped"})
	require.NoError(t, indexer.IndexDocuments(docs))

	count, err := indexer.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count, "documents without id are skipped")

	// Re-indexing the same ids replaces them.
	require.NoError(t, indexer.IndexDocuments(testDocuments()[:1]))
	count, err = indexer.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearchBM25(t *testing.T) {
	indexer := newTestIndexer(t)
	require.NoError(t, indexer.IndexDocuments(testDocuments()))

	results, err := indexer.SearchBM25("shipping", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "shipping", results[0].ID)
	assert.Equal(t, "Shipping times", results[0].Title)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestSearchBM25_Tags(t *testing.T) {
	indexer := newTestIndexer(t)
	require.NoError(t, indexer.IndexDocuments(testDocuments()))

	results, err := indexer.SearchBM25("payment", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "billing", results[0].ID)
}

func TestSearchBM25_Limit(t *testing.T) {
	indexer := newTestIndexer(t)

	docs := make([]relevance.Document, 15)
	for i := range docs {
		docs[i] = relevance.Document{ID: string(rune('a'+i)) + "-doc", Content: "refund request"}
	}
	require.NoError(t, indexer.IndexDocuments(docs))

	results, err := indexer.SearchBM25("refund", 4)
	require.NoError(t, err)
	assert.Len(t, results, 4)

	results, err = indexer.SearchBM25("refund", 0)
	require.NoError(t, err)
	assert.Len(t, results, 10, "non-positive limit defaults to 10")
}

func TestSearchBM25_NoMatch(t *testing.T) {
	indexer := newTestIndexer(t)
	require.NoError(t, indexer.IndexDocuments(testDocuments()))

	results, err := indexer.SearchBM25("xylophone", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
