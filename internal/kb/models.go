package kb

import (
	"errors"
	"time"

	"github.com/khanglvm/kbscore/internal/relevance"
)

var (
	// ErrArticleNotFound is returned when no article matches the tenant and ID.
	ErrArticleNotFound = errors.New("article not found")

	// ErrTenantRequired is returned when an operation is called without a tenant.
	ErrTenantRequired = errors.New("tenant id is required")

	// ErrContentRequired is returned when an article is created without content.
	ErrContentRequired = errors.New("article content is required")
)

const (
	defaultCategory   = "general"
	defaultSourceType = "text"
)

// Article is a knowledge-base entry owned by one tenant.
type Article struct {
	ID         string    `json:"id" yaml:"id"`
	TenantID   string    `json:"tenantId" yaml:"tenantId"`
	Title      string    `json:"title" yaml:"title"`
	Content    string    `json:"content" yaml:"content"`
	Category   string    `json:"category" yaml:"category"`
	Tags       []string  `json:"tags" yaml:"tags"`
	SourceType string    `json:"sourceType" yaml:"sourceType"`
	SourceURL  string    `json:"sourceUrl,omitempty" yaml:"sourceUrl,omitempty"`
	IsActive   bool      `json:"isActive" yaml:"isActive"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Document returns the view of the article the relevance engine scores.
func (a Article) Document() relevance.Document {
	return relevance.Document{
		ID:      a.ID,
		Content: a.Content,
		Title:   a.Title,
		Tags:    a.Tags,
	}
}

// ArticleInput holds the fields accepted when creating an article.
// Zero values fall back to defaults: category "general", source type "text",
// active.
type ArticleInput struct {
	Title      string   `json:"title" yaml:"title"`
	Content    string   `json:"content" yaml:"content"`
	Category   string   `json:"category,omitempty" yaml:"category,omitempty"`
	Tags       []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	SourceType string   `json:"sourceType,omitempty" yaml:"sourceType,omitempty"`
	SourceURL  string   `json:"sourceUrl,omitempty" yaml:"sourceUrl,omitempty"`
	IsActive   *bool    `json:"isActive,omitempty" yaml:"isActive,omitempty"`
}

// ArticleUpdate holds optional field changes. Nil fields are left untouched.
type ArticleUpdate struct {
	Title      *string
	Content    *string
	Category   *string
	Tags       []string
	SourceType *string
	SourceURL  *string
	IsActive   *bool
}

// Filter narrows FindArticles. Empty fields match everything.
type Filter struct {
	Category   string
	SourceType string
	IsActive   *bool
}

// ScoredArticle is an article with its search relevance.
type ScoredArticle struct {
	Article
	Score float64 `json:"score"`
}

// ArticlePage is one page of a listing or search.
type ArticlePage struct {
	Articles   []ScoredArticle `json:"articles"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}

// ContextArticle is an article selected as assistant context.
type ContextArticle struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// SearchRecord is a search event kept for analytics. Queries are stored
// hashed.
type SearchRecord struct {
	SearchID     string
	TenantID     string
	QueryHash    string
	Kind         string
	Timestamp    time.Time
	ResultsCount int
}

// Search kinds recorded in the search history.
const (
	SearchKindList    = "list"
	SearchKindContext = "context"
)
