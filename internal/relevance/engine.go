package relevance

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
)

const (
	// DefaultRAGMinScore is the minimum score for an article to be used as
	// assistant context.
	DefaultRAGMinScore = 0.3

	// DefaultRAGTopK is the maximum number of context articles.
	DefaultRAGTopK = 5

	// DefaultParallelThreshold is the candidate count from which documents
	// are scored on a worker pool.
	DefaultParallelThreshold = 256
)

// Engine scores and ranks documents. It is safe for concurrent use.
type Engine struct {
	stopWords         StopWords
	workers           int
	parallelThreshold int
}

// Option configures an Engine.
type Option func(*Engine)

// WithStopWords replaces the default English stop words.
func WithStopWords(sw StopWords) Option {
	return func(e *Engine) {
		e.stopWords = sw
	}
}

// WithWorkers sets the worker pool size used for large candidate sets.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithParallelThreshold sets the candidate count from which scoring runs on
// the worker pool. Values below 1 disable parallel scoring.
func WithParallelThreshold(n int) Option {
	return func(e *Engine) {
		e.parallelThreshold = n
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	e := &Engine{
		stopWords:         defaultStopWords,
		workers:           workers,
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Workers returns the worker pool size used for large candidate sets.
func (e *Engine) Workers() int {
	return e.workers
}

// ExtractKeywords returns the query keywords using the engine's stop words.
func (e *Engine) ExtractKeywords(query string) []string {
	return extractKeywords(query, e.stopWords)
}

// HasKeywords reports whether query yields at least one keyword. Callers use
// it to skip retrieval for greetings and other content-free messages.
func (e *Engine) HasKeywords(query string) bool {
	return len(e.ExtractKeywords(query)) > 0
}

// Score returns the relevance of a single document to query.
func (e *Engine) Score(query, content, title string, tags []string) float64 {
	return scoreKeywords(e.ExtractKeywords(query), content, title, tags).Score
}

// Explain returns the individual signals behind Score.
func (e *Engine) Explain(query, content, title string, tags []string) Breakdown {
	return scoreKeywords(e.ExtractKeywords(query), content, title, tags)
}

// ScoreAndSelect scores documents, keeps those with score >= minScore, sorts
// them by descending score and returns at most topK. Ties keep input order.
// A topK below 1 means no limit.
func (e *Engine) ScoreAndSelect(query string, documents []Document, minScore float64, topK int) []ScoredDocument {
	// Background is never cancelled.
	ranked, _ := e.ScoreAndSelectContext(context.Background(), query, documents, minScore, topK)
	return ranked
}

// ScoreAndSelectContext is ScoreAndSelect with cancellation of the whole
// scoring pass.
func (e *Engine) ScoreAndSelectContext(ctx context.Context, query string, documents []Document, minScore float64, topK int) ([]ScoredDocument, error) {
	return e.rank(ctx, query, documents, func(s float64) bool { return s >= minScore }, topK)
}

// SelectContext applies the assistant-context policy: score >= 0.3, top 5.
func (e *Engine) SelectContext(query string, documents []Document) []ScoredDocument {
	return e.ScoreAndSelect(query, documents, DefaultRAGMinScore, DefaultRAGTopK)
}

// Search applies the free-text search policy: every document with any signal
// (score > 0), best first, without truncation. Use Paginate for display.
func (e *Engine) Search(ctx context.Context, query string, documents []Document) ([]ScoredDocument, error) {
	return e.rank(ctx, query, documents, func(s float64) bool { return s > 0 }, 0)
}

func (e *Engine) rank(ctx context.Context, query string, documents []Document, keep func(float64) bool, topK int) ([]ScoredDocument, error) {
	keywords := e.ExtractKeywords(query)

	scores, err := e.scoreAll(ctx, keywords, documents)
	if err != nil {
		return nil, err
	}
	return selectTop(documents, scores, keep, topK), nil
}

// selectTop pairs documents with their scores, filters with keep, sorts by
// descending score (stable) and truncates to topK when topK > 0.
func selectTop(documents []Document, scores []float64, keep func(float64) bool, topK int) []ScoredDocument {
	ranked := make([]ScoredDocument, 0, len(documents))
	for i, doc := range documents {
		if keep(scores[i]) {
			ranked = append(ranked, ScoredDocument{Document: doc, Score: scores[i]})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// scoreAll returns one score per document, by index.
func (e *Engine) scoreAll(ctx context.Context, keywords []string, documents []Document) ([]float64, error) {
	scores := make([]float64, len(documents))
	if len(keywords) == 0 {
		return scores, ctx.Err()
	}

	if e.parallelThreshold < 1 || len(documents) < e.parallelThreshold || e.workers < 2 {
		for i := range documents {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			d := &documents[i]
			scores[i] = scoreKeywords(keywords, d.Content, d.Title, d.Tags).Score
		}
		return scores, nil
	}

	pool, err := ants.NewPool(e.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range documents {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		d := &documents[i]
		idx := i
		task := func() {
			defer wg.Done()
			scores[idx] = scoreKeywords(keywords, d.Content, d.Title, d.Tags).Score
		}

		wg.Add(1)
		if err := pool.Submit(task); err != nil {
			// Pool refused the task; score inline.
			task()
		}
	}
	wg.Wait()

	return scores, ctx.Err()
}

// Paginate returns the 1-based page of size limit from ranked, together with
// the number of pages. page is clamped to at least 1 and limit to at least 1.
func Paginate(ranked []ScoredDocument, page, limit int) ([]ScoredDocument, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	totalPages := (len(ranked) + limit - 1) / limit
	start := (page - 1) * limit
	if start >= len(ranked) {
		return []ScoredDocument{}, totalPages
	}
	end := min(start+limit, len(ranked))
	return ranked[start:end], totalPages
}
