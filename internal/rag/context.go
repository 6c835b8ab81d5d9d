// Package rag assembles the knowledge-base section of the support assistant's
// system prompt from the articles the relevance engine selects.
package rag

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/khanglvm/kbscore/internal/kb"
)

// DefaultMaxArticleChars is the per-article content budget in the prompt.
const DefaultMaxArticleChars = 1500

const (
	sectionHeader = "=== KNOWLEDGE BASE (use this to answer questions) ==="
	sectionFooter = "=== END KNOWLEDGE BASE ==="
	ellipsis      = "..."
)

// BuildContext renders the knowledge-base prompt section for results. Each
// article's content is cut to maxChars characters. No results render as "".
func BuildContext(results []kb.ContextArticle, maxChars int) string {
	if len(results) == 0 {
		return ""
	}
	if maxChars < 1 {
		maxChars = DefaultMaxArticleChars
	}

	var b strings.Builder
	b.WriteString(sectionHeader)
	b.WriteString("\n")
	for _, a := range results {
		fmt.Fprintf(&b, "\n--- %s [%s] (relevance: %d%%) ---\n", a.Title, a.Category, int(math.Round(a.Score*100)))
		b.WriteString(Truncate(a.Content, maxChars))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(sectionFooter)
	return b.String()
}

// Truncate cuts s to at most maxChars runes and appends "..." when it did.
func Truncate(s string, maxChars int) string {
	if maxChars < 0 {
		maxChars = 0
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i] + ellipsis
		}
		n++
	}
	return s
}

// Searcher selects context articles for a tenant.
type Searcher interface {
	SearchKnowledgeBase(ctx context.Context, tenantID, query string) ([]kb.ContextArticle, error)
}

// Assembler builds prompt context for incoming chat messages.
type Assembler struct {
	searcher    Searcher
	hasKeywords func(string) bool
	maxChars    int
	log         *logrus.Entry
}

// NewAssembler creates an Assembler. hasKeywords decides whether a message
// is worth a lookup; nil looks up every message.
func NewAssembler(searcher Searcher, hasKeywords func(string) bool, maxChars int, log *logrus.Entry) *Assembler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if maxChars < 1 {
		maxChars = DefaultMaxArticleChars
	}
	return &Assembler{
		searcher:    searcher,
		hasKeywords: hasKeywords,
		maxChars:    maxChars,
		log:         log.WithField("component", "rag"),
	}
}

// Assemble returns the selected articles and the rendered prompt section for
// message. Messages without keywords skip the lookup and yield no context.
func (a *Assembler) Assemble(ctx context.Context, tenantID, message string) ([]kb.ContextArticle, string, error) {
	if a.hasKeywords != nil && !a.hasKeywords(message) {
		a.log.WithField("tenant", tenantID).Debug("message has no keywords, skipping knowledge base lookup")
		return nil, "", nil
	}

	results, err := a.searcher.SearchKnowledgeBase(ctx, tenantID, message)
	if err != nil {
		return nil, "", fmt.Errorf("knowledge base lookup failed: %w", err)
	}

	a.log.WithFields(logrus.Fields{
		"tenant":   tenantID,
		"articles": len(results),
	}).Debug("assembled knowledge base context")

	return results, BuildContext(results, a.maxChars), nil
}
