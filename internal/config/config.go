/*
Package config handles loading and saving kbscore configuration.

Configuration is stored in ~/.kbscore.yaml. Every field is optional; missing
values fall back to the defaults from NewConfig. Values may reference
environment variables as ${VAR} or ${VAR:-default}.

Schema:

	engine:
	  ragMinScore: 0.3
	  ragTopK: 5
	  workers: 8
	  parallelThreshold: 256
	search:
	  defaultPageSize: 20
	  maxPageSize: 100
	context:
	  maxArticleChars: 1500
	storage:
	  path: ~/.kbscore/kb.db
	  historyRetentionDays: 30
	logging:
	  level: info
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the root configuration structure.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Search  SearchConfig  `yaml:"search"`
	Context ContextConfig `yaml:"context"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig tunes relevance scoring and context selection.
type EngineConfig struct {
	// RAGMinScore is the minimum score for an article to be used as context.
	RAGMinScore float64 `yaml:"ragMinScore"`

	// RAGTopK is the maximum number of context articles.
	RAGTopK int `yaml:"ragTopK"`

	// Workers sizes the scoring pool. Zero uses one worker per CPU.
	Workers int `yaml:"workers,omitempty"`

	// ParallelThreshold is the document count at which scoring goes parallel.
	ParallelThreshold int `yaml:"parallelThreshold"`
}

// SearchConfig controls article listing pagination.
type SearchConfig struct {
	DefaultPageSize int `yaml:"defaultPageSize"`
	MaxPageSize     int `yaml:"maxPageSize"`
}

// ContextConfig controls prompt context rendering.
type ContextConfig struct {
	// MaxArticleChars is the per-article content budget.
	MaxArticleChars int `yaml:"maxArticleChars"`
}

// StorageConfig locates the article database.
type StorageConfig struct {
	// Path is the sqlite database file. A leading ~ expands to the home directory.
	Path string `yaml:"path"`

	// HistoryRetentionDays is how long search history is kept.
	HistoryRetentionDays int `yaml:"historyRetentionDays"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

const (
	defaultRAGMinScore       = 0.3
	defaultRAGTopK           = 5
	defaultParallelThreshold = 256
	defaultPageSize          = 20
	defaultMaxPageSize       = 100
	defaultMaxArticleChars   = 1500
	defaultRetentionDays     = 30
	defaultLogLevel          = "info"
	defaultDBPath            = "~/.kbscore/kb.db"
)

// NewConfig creates a configuration holding every default.
func NewConfig() *Config {
	cfg := &Config{Engine: EngineConfig{RAGMinScore: defaultRAGMinScore}}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields with default values. RAGMinScore is not
// touched since 0 is a meaningful threshold; files are decoded over
// NewConfig so an absent key keeps its default.
func (c *Config) ApplyDefaults() {
	if c.Engine.RAGTopK <= 0 {
		c.Engine.RAGTopK = defaultRAGTopK
	}
	if c.Engine.ParallelThreshold <= 0 {
		c.Engine.ParallelThreshold = defaultParallelThreshold
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = defaultPageSize
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = defaultMaxPageSize
	}
	if c.Context.MaxArticleChars <= 0 {
		c.Context.MaxArticleChars = defaultMaxArticleChars
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultDBPath
	}
	if c.Storage.HistoryRetentionDays <= 0 {
		c.Storage.HistoryRetentionDays = defaultRetentionDays
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// GetDefaultConfigPath returns the path to ~/.kbscore.yaml
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".kbscore.yaml"), nil
}

// Load reads the configuration from the default path. A missing file yields
// the defaults.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadOrDefault(configPath)
}

// DBPath returns the storage path with a leading ~ expanded.
func (c *Config) DBPath() (string, error) {
	return expandHome(c.Storage.Path)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
