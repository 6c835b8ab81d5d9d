package kb

import (
	"fmt"
)

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

// runMigrations executes database schema migrations in version order.
func (s *SQLiteStore) runMigrations() error {
	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "articles", up: s.migration001Articles},
		{version: 2, name: "search_history", up: s.migration002SearchHistory},
	}

	for _, m := range migrations {
		if version >= m.version {
			continue
		}
		s.log.WithField("version", m.version).Debugf("running migration %s", m.name)
		if err := m.up(); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
		if err := s.setMigrationVersion(m.version, m.name); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLiteStore) createMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	return err
}

func (s *SQLiteStore) getCurrentMigrationVersion() (int, error) {
	var version int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func (s *SQLiteStore) setMigrationVersion(version int, name string) error {
	_, err := s.db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", version, name)
	return err
}

func (s *SQLiteStore) migration001Articles() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'general',
			tags TEXT NOT NULL DEFAULT '[]',
			source_type TEXT NOT NULL DEFAULT 'text',
			source_url TEXT NOT NULL DEFAULT '',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create articles table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_articles_tenant
		ON articles(tenant_id, is_active)
	`); err != nil {
		return fmt.Errorf("failed to create articles tenant index: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_articles_category
		ON articles(tenant_id, category)
	`); err != nil {
		return fmt.Errorf("failed to create articles category index: %w", err)
	}

	return nil
}

func (s *SQLiteStore) migration002SearchHistory() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS search_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			search_id TEXT NOT NULL UNIQUE,
			tenant_id TEXT NOT NULL,
			query_hash TEXT NOT NULL,
			kind TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			results_count INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create search_history table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_search_history_timestamp
		ON search_history(timestamp DESC)
	`); err != nil {
		return fmt.Errorf("failed to create search_history timestamp index: %w", err)
	}

	return nil
}
