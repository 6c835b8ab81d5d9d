/*
Package kb implements the knowledge-base article store and the search
service built on the relevance engine.

Articles are stored in SQLite via modernc.org/sqlite (a pure Go, CGo-free
implementation) at ~/.kbscore/kb.db by default. Every query is scoped to a
tenant. Search history keeps only a SHA256 hash of each query.
*/
package kb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var errNotInitialized = errors.New("store is not initialized")

// Store defines the persistence operations the search service needs.
type Store interface {
	// CreateArticle inserts a new article for tenantID.
	CreateArticle(ctx context.Context, tenantID string, in ArticleInput) (*Article, error)

	// GetArticle returns one article or ErrArticleNotFound.
	GetArticle(ctx context.Context, tenantID, id string) (*Article, error)

	// UpdateArticle applies changes to an existing article.
	UpdateArticle(ctx context.Context, tenantID, id string, upd ArticleUpdate) (*Article, error)

	// DeleteArticle removes an article and reports whether it existed.
	DeleteArticle(ctx context.Context, tenantID, id string) (bool, error)

	// FindArticles returns the tenant's articles matching filter, most
	// recently updated first.
	FindArticles(ctx context.Context, tenantID string, filter Filter) ([]Article, error)

	// Categories returns the tenant's distinct categories in ascending order.
	Categories(ctx context.Context, tenantID string) ([]string, error)

	// RecordSearch stores a search event for analytics.
	RecordSearch(ctx context.Context, rec SearchRecord) error

	// Cleanup removes search history older than retention.
	Cleanup(ctx context.Context, retention time.Duration) error

	// Close closes the database connection.
	Close() error
}

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db       *sql.DB
	dbPath   string
	log      *logrus.Entry
	mu       sync.Mutex
	initOnce sync.Once
	now      func() time.Time
}

// NewSQLiteStore creates a store backed by the database file at dbPath.
// Call Init before use.
func NewSQLiteStore(dbPath string, log *logrus.Entry) *SQLiteStore {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SQLiteStore{
		dbPath: dbPath,
		log:    log.WithField("component", "kb-store"),
		now:    time.Now,
	}
}

// DefaultDBPath returns ~/.kbscore/kb.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".kbscore", "kb.db"), nil
}

// Init opens the database and runs migrations. It is safe to call more than
// once; only the first call does any work.
func (s *SQLiteStore) Init() error {
	var initErr error
	s.initOnce.Do(func() {
		if s.dbPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
				initErr = fmt.Errorf("failed to create db directory: %w", err)
				return
			}
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			return
		}
		// A single connection keeps :memory: databases shared and serializes
		// writers.
		db.SetMaxOpenConns(1)

		if err := db.Ping(); err != nil {
			db.Close()
			initErr = fmt.Errorf("failed to ping database: %w", err)
			return
		}
		s.db = db

		if err := s.runMigrations(); err != nil {
			db.Close()
			s.db = nil
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			return
		}
	})
	if initErr == nil && s.db == nil {
		return errNotInitialized
	}
	return initErr
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	return nil
}

// CreateArticle inserts a new article.
func (s *SQLiteStore) CreateArticle(ctx context.Context, tenantID string, in ArticleInput) (*Article, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrContentRequired
	}

	now := s.now().UTC()
	a := &Article{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		Title:      in.Title,
		Content:    in.Content,
		Category:   orDefault(in.Category, defaultCategory),
		Tags:       in.Tags,
		SourceType: orDefault(in.SourceType, defaultSourceType),
		SourceURL:  in.SourceURL,
		IsActive:   in.IsActive == nil || *in.IsActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errNotInitialized
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (id, tenant_id, title, content, category, tags, source_type, source_url, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID, a.TenantID, a.Title, a.Content, a.Category, tagsToJSON(a.Tags),
		a.SourceType, a.SourceURL, boolToInt(a.IsActive),
		a.CreatedAt.Format(timeLayout), a.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert article: %w", err)
	}
	return a, nil
}

// GetArticle returns one article scoped to tenantID.
func (s *SQLiteStore) GetArticle(ctx context.Context, tenantID, id string) (*Article, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.getArticleLocked(ctx, tenantID, id)
}

func (s *SQLiteStore) getArticleLocked(ctx context.Context, tenantID, id string) (*Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ? AND tenant_id = ?`, id, tenantID)

	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return a, nil
}

// UpdateArticle applies non-nil fields of upd and bumps updated_at.
func (s *SQLiteStore) UpdateArticle(ctx context.Context, tenantID, id string, upd ArticleUpdate) (*Article, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errNotInitialized
	}

	a, err := s.getArticleLocked(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Content != nil {
		a.Content = *upd.Content
	}
	if upd.Category != nil {
		a.Category = *upd.Category
	}
	if upd.Tags != nil {
		a.Tags = upd.Tags
	}
	if upd.SourceType != nil {
		a.SourceType = *upd.SourceType
	}
	if upd.SourceURL != nil {
		a.SourceURL = *upd.SourceURL
	}
	if upd.IsActive != nil {
		a.IsActive = *upd.IsActive
	}
	a.UpdatedAt = s.now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE articles
		SET title = ?, content = ?, category = ?, tags = ?, source_type = ?, source_url = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?
	`,
		a.Title, a.Content, a.Category, tagsToJSON(a.Tags), a.SourceType, a.SourceURL,
		boolToInt(a.IsActive), a.UpdatedAt.Format(timeLayout), id, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	return a, nil
}

// DeleteArticle removes an article scoped to tenantID.
func (s *SQLiteStore) DeleteArticle(ctx context.Context, tenantID, id string) (bool, error) {
	if tenantID == "" {
		return false, ErrTenantRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return false, errNotInitialized
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return false, fmt.Errorf("failed to delete article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete article: %w", err)
	}
	return n > 0, nil
}

// FindArticles returns the tenant's articles matching filter.
func (s *SQLiteStore) FindArticles(ctx context.Context, tenantID string, filter Filter) ([]Article, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}

	query := `SELECT ` + articleColumns + ` FROM articles WHERE tenant_id = ?`
	args := []any{tenantID}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.SourceType != "" {
		query += ` AND source_type = ?`
		args = append(args, filter.SourceType)
	}
	if filter.IsActive != nil {
		query += ` AND is_active = ?`
		args = append(args, boolToInt(*filter.IsActive))
	}
	// rowid keeps insertion order among equal timestamps.
	query += ` ORDER BY updated_at DESC, rowid ASC`

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read articles: %w", err)
	}
	return articles, nil
}

// Categories returns the tenant's distinct categories.
func (s *SQLiteStore) Categories(ctx context.Context, tenantID string) ([]string, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errNotInitialized
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM articles WHERE tenant_id = ? ORDER BY category ASC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// RecordSearch stores a search event. Failures are logged, not returned, so
// analytics never break a search.
func (s *SQLiteStore) RecordSearch(ctx context.Context, rec SearchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}

	if rec.SearchID == "" {
		rec.SearchID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (search_id, tenant_id, query_hash, kind, timestamp, results_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rec.SearchID, rec.TenantID, rec.QueryHash, rec.Kind,
		rec.Timestamp.UTC().Format(time.RFC3339), rec.ResultsCount,
	)
	if err != nil {
		s.log.WithError(err).Warn("failed to record search")
	}
	return nil
}

// SearchCount returns the number of recorded searches for tenantID.
func (s *SQLiteStore) SearchCount(ctx context.Context, tenantID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, errNotInitialized
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM search_history WHERE tenant_id = ?`, tenantID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count searches: %w", err)
	}
	return n, nil
}

// Cleanup removes search history older than retention and vacuums.
func (s *SQLiteStore) Cleanup(ctx context.Context, retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}

	cutoff := s.now().Add(-retention).UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, "DELETE FROM search_history WHERE timestamp < ?", cutoff); err != nil {
		return fmt.Errorf("failed to cleanup search_history: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		s.log.WithError(err).Warn("failed to vacuum database")
	}
	return nil
}

// HashQuery creates a SHA256 hash of a query string for privacy.
func HashQuery(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:])
}

// timeLayout is fixed-width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const articleColumns = `id, tenant_id, title, content, category, tags, source_type, source_url, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var (
		a                    Article
		tags                 string
		active               int
		createdAt, updatedAt string
	)
	if err := row.Scan(&a.ID, &a.TenantID, &a.Title, &a.Content, &a.Category, &tags,
		&a.SourceType, &a.SourceURL, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	a.Tags = tagsFromJSON(tags)
	a.IsActive = active != 0
	a.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	a.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &a, nil
}

func tagsToJSON(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func tagsFromJSON(s string) []string {
	tags := []string{}
	if s == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return []string{}
	}
	return tags
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
