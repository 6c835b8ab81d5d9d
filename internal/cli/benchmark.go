package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/kbscore/internal/benchmark"
	"github.com/khanglvm/kbscore/internal/kb"
	"github.com/khanglvm/kbscore/internal/relevance"
)

// loadDocuments returns the documents to benchmark: the articles in file when
// given, otherwise the tenant's active articles.
func loadDocuments(ctx context.Context, g *Globals, file string) ([]relevance.Document, *relevance.Engine, error) {
	if file != "" {
		inputs, err := kb.LoadInputs(file)
		if err != nil {
			return nil, nil, err
		}
		cfg, err := g.loadConfig()
		if err != nil {
			return nil, nil, err
		}
		docs := make([]relevance.Document, len(inputs))
		for i, in := range inputs {
			docs[i] = relevance.Document{
				ID:      fmt.Sprintf("%s#%d", file, i+1),
				Content: in.Content,
				Title:   in.Title,
				Tags:    in.Tags,
			}
		}
		return docs, newEngine(cfg), nil
	}

	tenant, err := g.tenant()
	if err != nil {
		return nil, nil, err
	}
	a, err := g.open()
	if err != nil {
		return nil, nil, err
	}
	defer a.Close()

	active := true
	articles, err := a.store.FindArticles(ctx, tenant, kb.Filter{IsActive: &active})
	if err != nil {
		return nil, nil, err
	}
	docs := make([]relevance.Document, len(articles))
	for i, article := range articles {
		docs[i] = article.Document()
	}
	return docs, a.engine, nil
}

// NewBenchmarkCmd creates the 'benchmark' command for scoring latency.
func NewBenchmarkCmd(g *Globals) *cobra.Command {
	var (
		file       string
		iterations int
		workers    int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "benchmark <query>",
		Short: "Measure ranking latency, sequential vs worker pool",
		Long: `Rank the tenant's active articles (or the articles in --file) against a
query repeatedly, once with sequential scoring and once on the worker pool,
and report the mean time per ranking.`,
		Example: `  kbscore benchmark "refund policy"
  kbscore benchmark "refund policy" --file articles.yaml -n 50 --workers 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, _, err := loadDocuments(cmd.Context(), g, file)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("no articles to benchmark. Run 'kbscore import' first")
			}

			result, err := benchmark.RunLatency(cmd.Context(), strings.Join(args, " "), docs, iterations, workers)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprint(cmd.OutOrStdout(), benchmark.FormatLatency(result))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Benchmark articles from a JSON or YAML file instead of the store")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 20, "Rankings per mode")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Pool size (default one per CPU)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// NewCompareBenchmarkCmd creates the 'benchmark compare' command.
func NewCompareBenchmarkCmd(g *Globals) *cobra.Command {
	var (
		file       string
		k          int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "compare <query>",
		Short: "Compare the top results with a BM25 baseline",
		Long: `Rank the same articles with the lexical engine and with a Bleve BM25
index, then show both top-K lists and how many documents they share.`,
		Example: `  kbscore benchmark compare "refund policy"
  kbscore benchmark compare "late delivery" --file articles.json --top 10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, engine, err := loadDocuments(cmd.Context(), g, file)
			if err != nil {
				return err
			}

			result, err := benchmark.CompareBM25(cmd.Context(), engine, strings.Join(args, " "), docs, k, nil)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprint(cmd.OutOrStdout(), benchmark.FormatCompare(result))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Compare over articles from a JSON or YAML file instead of the store")
	cmd.Flags().IntVarP(&k, "top", "k", 5, "Number of top results to compare")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
