package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/kbscore/internal/relevance"
)

func corpus(n int) []relevance.Document {
	topics := []string{
		"refund policy for damaged items",
		"shipping times for international orders",
		"resetting your account password",
		"invoice and billing questions",
	}
	docs := make([]relevance.Document, n)
	for i := range docs {
		docs[i] = relevance.Document{
			ID:      fmt.Sprintf("doc-%03d", i),
			Title:   fmt.Sprintf("Article %d", i),
			Content: topics[i%len(topics)],
		}
	}
	return docs
}

func TestRunLatency(t *testing.T) {
	result, err := RunLatency(context.Background(), "refund policy", corpus(40), 3, 4)
	require.NoError(t, err)

	assert.Equal(t, 40, result.Documents)
	assert.Equal(t, 3, result.Iterations)
	assert.Equal(t, 4, result.Workers)
	assert.Greater(t, result.Sequential, time.Duration(0))
	assert.Greater(t, result.Pooled, time.Duration(0))
	assert.Greater(t, result.Speedup, 0.0)
}

func TestRunLatency_Defaults(t *testing.T) {
	result, err := RunLatency(context.Background(), "refund", corpus(4), 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Iterations)
	assert.GreaterOrEqual(t, result.Workers, 2)
}

func TestRunLatency_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunLatency(ctx, "refund", corpus(4), 1, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompareBM25(t *testing.T) {
	docs := []relevance.Document{
		{ID: "returns", Title: "Returns", Content: "Our refund policy covers damaged items for 30 days."},
		{ID: "shipping", Title: "Shipping", Content: "International orders ship within ten days."},
		{ID: "password", Title: "Passwords", Content: "Reset your password from the login page."},
	}

	result, err := CompareBM25(context.Background(), relevance.New(), "refund policy", docs, 2, nil)
	require.NoError(t, err)

	require.NotEmpty(t, result.Lexical)
	require.NotEmpty(t, result.BM25)
	assert.Equal(t, "returns", result.Lexical[0])
	assert.Equal(t, "returns", result.BM25[0])
	assert.GreaterOrEqual(t, result.Overlap, 1)
	assert.LessOrEqual(t, len(result.Lexical), 2)
	assert.LessOrEqual(t, len(result.BM25), 2)
	assert.Greater(t, result.Agreement, 0.0)
}

func TestCompareBM25_Validation(t *testing.T) {
	_, err := CompareBM25(context.Background(), relevance.New(), "refund", corpus(2), 0, nil)
	assert.ErrorContains(t, err, "k must be")

	_, err = CompareBM25(context.Background(), relevance.New(), "refund",
		[]relevance.Document{{Content: "refund"}}, 3, nil)
	assert.ErrorContains(t, err, "no id")
}

func TestCompareBM25_NoMatches(t *testing.T) {
	result, err := CompareBM25(context.Background(), relevance.New(), "xylophone", corpus(4), 3, nil)
	require.NoError(t, err)

	assert.Empty(t, result.Lexical)
	assert.Empty(t, result.BM25)
	assert.Equal(t, 1.0, result.Agreement)
}

func TestCountOverlap(t *testing.T) {
	assert.Equal(t, 2, countOverlap([]string{"a", "b", "c"}, []string{"c", "x", "a"}))
	assert.Equal(t, 0, countOverlap(nil, []string{"a"}))
}

func TestFormat(t *testing.T) {
	latency := FormatLatency(&LatencyResult{Documents: 10, Iterations: 2, Workers: 4, Speedup: 1.5})
	assert.Contains(t, latency, "SCORING LATENCY BENCHMARK")
	assert.Contains(t, latency, "1.50x")

	compare := FormatCompare(&CompareResult{
		Query:     "refund",
		K:         2,
		Lexical:   []string{"a", "b"},
		BM25:      []string{"b"},
		Overlap:   1,
		Agreement: 0.5,
	})
	assert.Contains(t, compare, `Query: "refund" (top 2)`)
	assert.Contains(t, compare, "50% agreement")
	lines := strings.Split(compare, "\n")
	assert.Contains(t, lines[4], "-", "missing BM25 row is shown as a dash")
}
