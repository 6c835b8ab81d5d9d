/*
Package main is the entry point for the kbscore CLI.

kbscore ranks knowledge-base articles against free-text queries with a
deterministic lexical scorer and renders the best matches as assistant
prompt context.

Usage:

	kbscore [command]

Available Commands:

	import      Import articles from a JSON or YAML file
	list        List knowledge-base articles
	search      Search articles by relevance
	context     Render knowledge-base context for a chat message
	score       Explain how a query scores against one document
	categories  List the tenant's article categories
	delete      Delete an article
	cleanup     Delete old search history
	benchmark   Measure ranking latency; 'benchmark compare' checks BM25 agreement
	config      Create or show the configuration file
	version     Show version information

Examples:

	kbscore import articles.yaml --tenant acme
	kbscore search "refund policy" --tenant acme
	kbscore context "my order never arrived" --tenant acme
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/kbscore/internal/cli"
	"github.com/khanglvm/kbscore/internal/version"
)

func main() {
	rootCmd := cli.NewRootCmd(version.GetVersion())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
