package search

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/sirupsen/logrus"

	"github.com/khanglvm/kbscore/internal/relevance"
)

// Indexer manages an in-memory BM25 index of documents.
type Indexer struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
	log        *logrus.Entry
}

// NewIndexer creates an indexer backed by an in-memory Bleve index.
func NewIndexer(log *logrus.Entry) (*Indexer, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	return &Indexer{
		bleveIndex: index,
		log:        log.WithField("component", "search"),
	}, nil
}

// buildIndexMapping maps content, title and tags as searchable text. Title
// is also stored so hits can be shown without a second lookup.
func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	titleFieldMapping := bleve.NewTextFieldMapping()
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// IndexDocuments adds docs to the index in one batch. Documents are keyed by
// ID; an existing ID is replaced.
func (i *Indexer) IndexDocuments(docs []relevance.Document) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()
	for _, d := range docs {
		if d.ID == "" {
			i.log.WithField("title", d.Title).Warn("skipping document without id")
			continue
		}
		doc := map[string]interface{}{
			"content": d.Content,
			"title":   d.Title,
			"tags":    d.Tags,
		}
		if err := batch.Index(d.ID, doc); err != nil {
			i.log.WithError(err).WithField("id", d.ID).Warn("failed to index document")
		}
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index documents: %w", err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (i *Indexer) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}
	return docCount, nil
}

// Close closes the index and releases resources.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}
	return nil
}
