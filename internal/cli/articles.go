package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCategoriesCmd creates the 'categories' command.
func NewCategoriesCmd(g *Globals) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the tenant's article categories",
		Args:  cobra.NoArgs,
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

			cats, err := a.service.Categories(cmd.Context(), tenant)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), cats)
			}
			if len(cats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No categories.")
				return nil
			}
			for _, c := range cats {
				fmt.Fprintf(cmd.OutOrStdout(), "  • %s\n", c)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

// NewDeleteCmd creates the 'delete' command for removing an article.
func NewDeleteCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an article",
		Example: `  kbscore delete 3f2a9c1e-...
  kbscore rm 3f2a9c1e-... --tenant acme`,
		Args: cobra.ExactArgs(1),
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

			ok, err := a.store.DeleteArticle(cmd.Context(), tenant, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("article '%s' not found", args[0])
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted article '%s'\n", args[0])
			return nil
		},
	}
}

// NewCleanupCmd creates the 'cleanup' command that prunes search history.
func NewCleanupCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete search history older than storage.historyRetentionDays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Cleanup(cmd.Context(), a.retention()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed search history older than %d days\n", a.cfg.Storage.HistoryRetentionDays)
			return nil
		},
	}
}
