package kb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/khanglvm/kbscore/internal/relevance"
)

// ServiceOptions holds the retrieval and pagination policy.
type ServiceOptions struct {
	// RAGMinScore is the minimum score for assistant context articles.
	RAGMinScore float64

	// RAGTopK is the maximum number of assistant context articles.
	RAGTopK int

	// DefaultPageSize is used when a listing asks for no page size.
	DefaultPageSize int

	// MaxPageSize caps the page size of a listing.
	MaxPageSize int
}

// DefaultServiceOptions returns the stock policy: context articles need a
// score of 0.3 and at most 5 are used; listings show 20 per page, up to 100.
func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		RAGMinScore:     relevance.DefaultRAGMinScore,
		RAGTopK:         relevance.DefaultRAGTopK,
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

// ListFilters narrows ListArticles. A non-blank Search switches the listing
// to relevance order.
type ListFilters struct {
	Category   string
	SourceType string
	IsActive   *bool
	Search     string
	Page       int
	Limit      int
}

// Service lists, searches and selects knowledge-base articles.
type Service struct {
	store   Store
	history HistoryRecorder
	engine  *relevance.Engine
	opts    ServiceOptions
	log     *logrus.Entry
}

// NewService creates a Service. A nil engine uses relevance.New().
func NewService(store Store, engine *relevance.Engine, opts ServiceOptions, log *logrus.Entry) *Service {
	if engine == nil {
		engine = relevance.New()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	defaults := DefaultServiceOptions()
	if opts.RAGTopK < 1 {
		opts.RAGTopK = defaults.RAGTopK
	}
	if opts.DefaultPageSize < 1 {
		opts.DefaultPageSize = defaults.DefaultPageSize
	}
	if opts.MaxPageSize < 1 {
		opts.MaxPageSize = defaults.MaxPageSize
	}
	return &Service{
		store:   store,
		history: store,
		engine:  engine,
		opts:    opts,
		log:     log.WithField("component", "kb-service"),
	}
}

// SetHistoryRecorder routes search history to r instead of the store, for
// example a SearchTracker.
func (s *Service) SetHistoryRecorder(r HistoryRecorder) {
	s.history = r
}

// Engine returns the relevance engine used by the service.
func (s *Service) Engine() *relevance.Engine {
	return s.engine
}

// ListArticles returns one page of the tenant's articles. Without a search
// term articles are ordered by last update; with one, by relevance.
func (s *Service) ListArticles(ctx context.Context, tenantID string, f ListFilters) (*ArticlePage, error) {
	page, limit := s.clampPage(f.Page, f.Limit)
	filter := Filter{Category: f.Category, SourceType: f.SourceType, IsActive: f.IsActive}

	if strings.TrimSpace(f.Search) != "" {
		return s.SearchArticles(ctx, tenantID, f.Search, filter, page, limit)
	}

	articles, err := s.store.FindArticles(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	total := len(articles)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	out := make([]ScoredArticle, 0, end-start)
	for _, a := range articles[start:end] {
		out = append(out, ScoredArticle{Article: a})
	}

	return &ArticlePage{
		Articles:   out,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// SearchArticles scores every article matching filter against query, keeps
// those with any signal and returns the requested page, best first.
func (s *Service) SearchArticles(ctx context.Context, tenantID, query string, filter Filter, page, limit int) (*ArticlePage, error) {
	page, limit = s.clampPage(page, limit)

	articles, err := s.store.FindArticles(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}

	byID := make(map[string]Article, len(articles))
	docs := make([]relevance.Document, len(articles))
	for i, a := range articles {
		byID[a.ID] = a
		docs[i] = a.Document()
	}

	ranked, err := s.engine.Search(ctx, query, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to score articles: %w", err)
	}

	pageDocs, pages := relevance.Paginate(ranked, page, limit)
	out := make([]ScoredArticle, 0, len(pageDocs))
	for _, d := range pageDocs {
		out = append(out, ScoredArticle{Article: byID[d.ID], Score: d.Score})
	}

	s.record(ctx, tenantID, query, SearchKindList, len(ranked))
	s.log.WithFields(logrus.Fields{
		"tenant":     tenantID,
		"candidates": len(docs),
		"matches":    len(ranked),
	}).Debug("article search")

	return &ArticlePage{
		Articles:   out,
		Total:      len(ranked),
		Page:       page,
		TotalPages: pages,
	}, nil
}

// SearchKnowledgeBase selects the tenant's active articles most relevant to
// query for use as assistant context.
func (s *Service) SearchKnowledgeBase(ctx context.Context, tenantID, query string) ([]ContextArticle, error) {
	active := true
	articles, err := s.store.FindArticles(ctx, tenantID, Filter{IsActive: &active})
	if err != nil {
		return nil, fmt.Errorf("failed to load active articles: %w", err)
	}

	byID := make(map[string]Article, len(articles))
	docs := make([]relevance.Document, len(articles))
	for i, a := range articles {
		byID[a.ID] = a
		docs[i] = a.Document()
	}

	ranked, err := s.engine.ScoreAndSelectContext(ctx, query, docs, s.opts.RAGMinScore, s.opts.RAGTopK)
	if err != nil {
		return nil, fmt.Errorf("failed to score articles: %w", err)
	}

	out := make([]ContextArticle, 0, len(ranked))
	for _, d := range ranked {
		a := byID[d.ID]
		out = append(out, ContextArticle{
			ID:       a.ID,
			Title:    a.Title,
			Content:  a.Content,
			Category: a.Category,
			Score:    d.Score,
		})
	}

	s.record(ctx, tenantID, query, SearchKindContext, len(out))
	return out, nil
}

// Categories returns the tenant's distinct categories.
func (s *Service) Categories(ctx context.Context, tenantID string) ([]string, error) {
	return s.store.Categories(ctx, tenantID)
}

func (s *Service) record(ctx context.Context, tenantID, query, kind string, results int) {
	err := s.history.RecordSearch(ctx, SearchRecord{
		TenantID:     tenantID,
		QueryHash:    HashQuery(query),
		Kind:         kind,
		Timestamp:    time.Now(),
		ResultsCount: results,
	})
	if err != nil {
		s.log.WithError(err).Warn("failed to record search")
	}
}

// clampPage applies the paging policy: page >= 1; a zero limit means the
// default page size; otherwise limit is clamped to [1, MaxPageSize].
func (s *Service) clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit == 0 {
		limit = s.opts.DefaultPageSize
	}
	limit = max(1, min(limit, s.opts.MaxPageSize))
	return page, limit
}

func totalPages(total, limit int) int {
	if limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}
