package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/kbscore/internal/kb"
	"github.com/khanglvm/kbscore/internal/rag"
	"github.com/khanglvm/kbscore/internal/relevance"
)

// NewSearchCmd creates the 'search' command for relevance-ranked lookup.
func NewSearchCmd(g *Globals) *cobra.Command {
	var (
		category   string
		page       int
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search articles by relevance",
		Long: `Score every article of the tenant against the query and list those
with any match, best first.`,
		Example: `  kbscore search "how do I get a refund"
  kbscore search shipping --category logistics --limit 5 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := g.tenant()
			if err != nil {
				return err
			}

			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			result, err := a.service.SearchArticles(cmd.Context(), tenant, query, kb.Filter{Category: category}, page, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printPage(cmd.OutOrStdout(), result, true)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only articles in this category")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Page size (default from config)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// NewContextCmd creates the 'context' command that renders assistant context.
func NewContextCmd(g *Globals) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "context <message>",
		Short: "Render knowledge-base context for a chat message",
		Long: `Select the active articles most relevant to a customer message and
render them as the knowledge-base section of the assistant prompt.

Only articles reaching engine.ragMinScore are used, at most engine.ragTopK of
them. Messages without keywords produce no context.`,
		Example: `  kbscore context "my package never arrived, can I get a refund?"
  kbscore context "reset password" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := g.tenant()
			if err != nil {
				return err
			}

			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			assembler := rag.NewAssembler(a.service, a.engine.HasKeywords, a.cfg.Context.MaxArticleChars,
				a.log.WithField("component", "cli"))

			message := strings.Join(args, " ")
			articles, prompt, err := assembler.Assemble(cmd.Context(), tenant, message)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if articles == nil {
					articles = []kb.ContextArticle{}
				}
				return printJSON(out, map[string]interface{}{
					"articles": articles,
					"context":  prompt,
				})
			}
			if prompt == "" {
				fmt.Fprintln(out, "No relevant articles.")
				return nil
			}
			fmt.Fprintln(out, prompt)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// NewScoreCmd creates the 'score' command that explains a single score.
func NewScoreCmd(g *Globals) *cobra.Command {
	var (
		id         string
		content    string
		title      string
		tags       []string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "score <query>",
		Short: "Explain how a query scores against one document",
		Long: `Show each scoring signal for a query against either a stored article
(--id) or an ad-hoc document (--content, --title, --tag).`,
		Example: `  kbscore score "refund policy" --content "Refunds within 30 days" --title Returns --tag refund
  kbscore score "refund policy" --id 3f2a...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			var doc relevance.Document
			var engine *relevance.Engine
			if id != "" {
				tenant, err := g.tenant()
				if err != nil {
					return err
				}
				a, err := g.open()
				if err != nil {
					return err
				}
				defer a.Close()

				article, err := a.store.GetArticle(cmd.Context(), tenant, id)
				if err != nil {
					return fmt.Errorf("article '%s': %w", id, err)
				}
				doc = article.Document()
				engine = a.engine
			} else {
				if content == "" && title == "" && len(tags) == 0 {
					return fmt.Errorf("give --id or at least one of --content, --title, --tag")
				}
				cfg, err := g.loadConfig()
				if err != nil {
					return err
				}
				doc = relevance.Document{Content: content, Title: title, Tags: tags}
				engine = newEngine(cfg)
			}

			b := engine.Explain(query, doc.Content, doc.Title, doc.Tags)
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), b)
			}
			printBreakdown(cmd, b)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Score a stored article")
	cmd.Flags().StringVar(&content, "content", "", "Document content")
	cmd.Flags().StringVar(&title, "title", "", "Document title")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Document tag (repeatable)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func printBreakdown(cmd *cobra.Command, b relevance.Breakdown) {
	out := cmd.OutOrStdout()
	if len(b.Keywords) == 0 {
		fmt.Fprintln(out, "Query has no keywords; score is 0.")
		return
	}

	fmt.Fprintf(out, "Keywords:   %s\n", strings.Join(b.Keywords, ", "))
	fmt.Fprintf(out, "Matched:    %d of %d\n\n", b.MatchedKeywords, len(b.Keywords))
	fmt.Fprintf(out, "  content   %.4f\n", b.Base)
	fmt.Fprintf(out, "  title     %.4f\n", b.Title)
	fmt.Fprintf(out, "  tags      %.4f\n", b.Tags)
	fmt.Fprintf(out, "  proximity %.4f\n", b.Proximity)
	fmt.Fprintf(out, "  coverage  %.4f\n", b.Coverage)
	fmt.Fprintln(out, "  ─────────────────")
	fmt.Fprintf(out, "  score     %.4f\n", b.Score)
}
