/*
Package benchmark measures the relevance engine.

It reports two things:
 1. Latency: mean time to rank a document set sequentially and on the
    worker pool.
 2. Agreement: how many of the engine's top-K documents a BM25 baseline
    (Bleve) also ranks in its top K for the same query.
*/
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/khanglvm/kbscore/internal/relevance"
	"github.com/khanglvm/kbscore/internal/search"
)

// LatencyResult holds mean ranking latency per iteration.
type LatencyResult struct {
	Documents  int           `json:"documents"`
	Iterations int           `json:"iterations"`
	Workers    int           `json:"workers"`
	Sequential time.Duration `json:"sequential"`
	Pooled     time.Duration `json:"pooled"`
	Speedup    float64       `json:"speedup"`
}

// CompareResult holds the top-K rankings of both scorers and their overlap.
type CompareResult struct {
	Query   string   `json:"query"`
	K       int      `json:"k"`
	Lexical []string `json:"lexical"`
	BM25    []string `json:"bm25"`
	Overlap int      `json:"overlap"`
	// Agreement is Overlap divided by the size of the larger ranking, 1 when
	// both rankings are empty.
	Agreement float64 `json:"agreement"`
}

// RunLatency ranks docs for query iterations times with scoring forced
// sequential, then forced onto a pool of workers, and reports the mean of
// each. workers below 2 uses one per CPU with a minimum of 2.
func RunLatency(ctx context.Context, query string, docs []relevance.Document, iterations, workers int) (*LatencyResult, error) {
	if iterations < 1 {
		iterations = 1
	}
	if workers < 2 {
		workers = max(2, relevance.New().Workers())
	}

	sequential := relevance.New(relevance.WithParallelThreshold(0))
	pooled := relevance.New(relevance.WithParallelThreshold(1), relevance.WithWorkers(workers))

	seq, err := timeSearch(ctx, sequential, query, docs, iterations)
	if err != nil {
		return nil, fmt.Errorf("sequential run failed: %w", err)
	}
	par, err := timeSearch(ctx, pooled, query, docs, iterations)
	if err != nil {
		return nil, fmt.Errorf("pooled run failed: %w", err)
	}

	result := &LatencyResult{
		Documents:  len(docs),
		Iterations: iterations,
		Workers:    workers,
		Sequential: seq,
		Pooled:     par,
	}
	if par > 0 {
		result.Speedup = float64(seq) / float64(par)
	}
	return result, nil
}

func timeSearch(ctx context.Context, engine *relevance.Engine, query string, docs []relevance.Document, iterations int) (time.Duration, error) {
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := engine.Search(ctx, query, docs); err != nil {
			return 0, err
		}
	}
	return time.Since(start) / time.Duration(iterations), nil
}

// CompareBM25 ranks docs with engine and with a Bleve BM25 index and
// compares the top k IDs of each. The lexical side keeps only documents
// scoring above zero, matching Engine.Search. Documents must have unique
// non-empty IDs.
func CompareBM25(ctx context.Context, engine *relevance.Engine, query string, docs []relevance.Document, k int, log *logrus.Entry) (*CompareResult, error) {
	if k < 1 {
		return nil, errors.New("k must be at least 1")
	}
	for i, d := range docs {
		if d.ID == "" {
			return nil, fmt.Errorf("document %d has no id", i)
		}
	}

	ranked, err := engine.Search(ctx, query, docs)
	if err != nil {
		return nil, fmt.Errorf("lexical ranking failed: %w", err)
	}
	lexical := make([]string, 0, min(k, len(ranked)))
	for _, r := range ranked[:min(k, len(ranked))] {
		lexical = append(lexical, r.ID)
	}

	indexer, err := search.NewIndexer(log)
	if err != nil {
		return nil, err
	}
	defer indexer.Close()

	if err := indexer.IndexDocuments(docs); err != nil {
		return nil, err
	}
	hits, err := indexer.SearchBM25(query, k)
	if err != nil {
		return nil, err
	}
	bm25 := make([]string, len(hits))
	for i, h := range hits {
		bm25[i] = h.ID
	}

	overlap := countOverlap(lexical, bm25)
	agreement := 1.0
	if n := max(len(lexical), len(bm25)); n > 0 {
		agreement = float64(overlap) / float64(n)
	}

	return &CompareResult{
		Query:     query,
		K:         k,
		Lexical:   lexical,
		BM25:      bm25,
		Overlap:   overlap,
		Agreement: agreement,
	}, nil
}

func countOverlap(a, b []string) int {
	seen := make(map[string]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	n := 0
	for _, id := range b {
		if _, ok := seen[id]; ok {
			n++
		}
	}
	return n
}

// FormatLatency formats a latency result for display.
func FormatLatency(r *LatencyResult) string {
	var sb strings.Builder

	sb.WriteString("╔══════════════════════════════════════════════════════════════╗\n")
	sb.WriteString("║                 SCORING LATENCY BENCHMARK                    ║\n")
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString(fmt.Sprintf("║  Documents:  %-48d║\n", r.Documents))
	sb.WriteString(fmt.Sprintf("║  Iterations: %-48d║\n", r.Iterations))
	sb.WriteString(fmt.Sprintf("║  Workers:    %-48d║\n", r.Workers))
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString(fmt.Sprintf("║  Sequential: %-48s║\n", r.Sequential))
	sb.WriteString(fmt.Sprintf("║  Pooled:     %-48s║\n", r.Pooled))
	sb.WriteString(fmt.Sprintf("║  Speedup:    %-48s║\n", fmt.Sprintf("%.2fx", r.Speedup)))
	sb.WriteString("╚══════════════════════════════════════════════════════════════╝\n")

	return sb.String()
}

// FormatCompare formats a comparison result for display.
func FormatCompare(r *CompareResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Query: %q (top %d)\n\n", r.Query, r.K)
	fmt.Fprintf(&sb, "%-4s  %-30s  %-30s\n", "#", "LEXICAL", "BM25")
	rows := max(len(r.Lexical), len(r.BM25))
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "%-4d  %-30s  %-30s\n", i+1, at(r.Lexical, i), at(r.BM25, i))
	}
	fmt.Fprintf(&sb, "\nOverlap: %d (%.0f%% agreement)\n", r.Overlap, math.Round(r.Agreement*100))

	return sb.String()
}

func at(ids []string, i int) string {
	if i < len(ids) {
		return ids[i]
	}
	return "-"
}
