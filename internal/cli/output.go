package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/khanglvm/kbscore/internal/kb"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printPage writes one page of articles, with scores when withScore is set.
func printPage(w io.Writer, page *kb.ArticlePage, withScore bool) {
	if page.Total == 0 {
		fmt.Fprintln(w, "No articles found.")
		return
	}

	fmt.Fprintf(w, "Articles (%d, page %d of %d):\n\n", page.Total, page.Page, page.TotalPages)
	for _, a := range page.Articles {
		status := "active"
		if !a.IsActive {
			status = "inactive"
		}
		if withScore {
			fmt.Fprintf(w, "  %s  [%.3f]\n", a.Title, a.Score)
		} else {
			fmt.Fprintf(w, "  %s\n", a.Title)
		}
		fmt.Fprintf(w, "    ID:       %s\n", a.ID)
		fmt.Fprintf(w, "    Category: %s (%s)\n", a.Category, status)
		if len(a.Tags) > 0 {
			fmt.Fprintf(w, "    Tags:     %s\n", strings.Join(a.Tags, ", "))
		}
	}
}
