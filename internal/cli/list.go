package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/kbscore/internal/kb"
)

type listOptions struct {
	category   string
	sourceType string
	active     bool
	search     string
	page       int
	limit      int
	jsonOutput bool
}

// NewListCmd creates the 'list' command for paging through articles.
func NewListCmd(g *Globals) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List knowledge-base articles",
		Long: `List the tenant's articles, most recently updated first.

With --search the listing switches to relevance order and only articles that
match the query are shown.`,
		Example: `  kbscore list
  kbscore list --category billing --active
  kbscore list --search "refund policy" --page 2 --limit 10
  kbscore ls --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := kb.ListFilters{
				Category:   opts.category,
				SourceType: opts.sourceType,
				Search:     opts.search,
				Page:       opts.page,
				Limit:      opts.limit,
			}
			if cmd.Flags().Changed("active") {
				active := opts.active
				f.IsActive = &active
			}
			return runList(cmd, g, f, opts.jsonOutput)
		},
	}

	cmd.Flags().StringVar(&opts.category, "category", "", "Only articles in this category")
	cmd.Flags().StringVar(&opts.sourceType, "source-type", "", "Only articles of this source type")
	cmd.Flags().BoolVar(&opts.active, "active", false, "Only active (--active) or inactive (--active=false) articles")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Rank by relevance to this query")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page number")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 0, "Page size (default from config)")
	cmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runList(cmd *cobra.Command, g *Globals, f kb.ListFilters, jsonOutput bool) error {
	tenant, err := g.tenant()
	if err != nil {
		return err
	}

	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := a.service.ListArticles(cmd.Context(), tenant, f)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), page)
	}
	printPage(cmd.OutOrStdout(), page, strings.TrimSpace(f.Search) != "")
	return nil
}
