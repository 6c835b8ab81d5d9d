package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/kbscore/internal/kb"
)

// NewImportCmd creates the 'import' command for loading articles from a file.
func NewImportCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import articles from a JSON or YAML file",
		Long: `Create knowledge-base articles from a file holding a list of
{title, content, category, tags, sourceType, sourceUrl, isActive} entries.

The format is chosen by extension: .json, .yaml or .yml. Every entry needs
content; the import stops at the first article that fails.`,
		Example: `  kbscore import articles.yaml
  kbscore import faq.json --tenant acme`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, g, args[0])
		},
	}
	return cmd
}

func runImport(cmd *cobra.Command, g *Globals, path string) error {
	tenant, err := g.tenant()
	if err != nil {
		return err
	}

	inputs, err := kb.LoadInputs(path)
	if err != nil {
		return err
	}

	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := kb.Import(cmd.Context(), a.store, tenant, inputs)
	if err != nil {
		if len(created) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d articles before failing.\n", len(created), len(inputs))
		}
		return err
	}

	a.log.WithField("tenant", tenant).WithField("count", len(created)).Info("imported articles")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d articles for tenant '%s'\n", len(created), tenant)
	return nil
}
