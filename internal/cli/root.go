/*
Package cli implements the kbscore commands.

Every command resolves configuration the same way: --config when given,
otherwise ~/.kbscore.yaml, otherwise built-in defaults. Tenant-scoped
commands act on the tenant named by --tenant.
*/
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/khanglvm/kbscore/internal/config"
	"github.com/khanglvm/kbscore/internal/kb"
	"github.com/khanglvm/kbscore/internal/relevance"
)

// DefaultTenant is used when --tenant is not given.
const DefaultTenant = "default"

// Globals holds the persistent root flags.
type Globals struct {
	ConfigPath string
	Verbose    bool
	Tenant     string

	// LogOutput receives log lines. Nil means stderr.
	LogOutput io.Writer
}

// NewRootCmd creates the kbscore root command with every subcommand attached.
func NewRootCmd(versionString string) *cobra.Command {
	g := &Globals{}

	rootCmd := &cobra.Command{
		Use:   "kbscore",
		Short: "Lexical relevance scoring for knowledge-base search and RAG context",
		Long: `kbscore ranks knowledge-base articles against free-text queries.

Scoring combines fuzzy keyword matching over content, title and tags with
phrase proximity and keyword coverage bonuses. The same engine backs:
  • search   - relevance-ordered article listing
  • context  - top articles rendered as assistant prompt context
  • score    - per-signal breakdown for one query and document`,
		Version:       versionString,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", "", "Config file (default ~/.kbscore.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&g.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&g.Tenant, "tenant", "t", DefaultTenant, "Tenant whose knowledge base to use")

	rootCmd.AddCommand(NewImportCmd(g))
	rootCmd.AddCommand(NewListCmd(g))
	rootCmd.AddCommand(NewSearchCmd(g))
	rootCmd.AddCommand(NewContextCmd(g))
	rootCmd.AddCommand(NewScoreCmd(g))
	rootCmd.AddCommand(NewCategoriesCmd(g))
	rootCmd.AddCommand(NewDeleteCmd(g))
	rootCmd.AddCommand(NewCleanupCmd(g))
	rootCmd.AddCommand(NewConfigCmd(g))
	rootCmd.AddCommand(NewVersionCmd())

	benchmarkCmd := NewBenchmarkCmd(g)
	benchmarkCmd.AddCommand(NewCompareBenchmarkCmd(g))
	rootCmd.AddCommand(benchmarkCmd)

	return rootCmd
}

// app is the wiring shared by commands that touch the knowledge base.
type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	engine  *relevance.Engine
	store   *kb.SQLiteStore
	tracker *kb.SearchTracker
	service *kb.Service
}

// loadConfig reads --config, or the default file, or falls back to defaults.
func (g *Globals) loadConfig() (*config.Config, error) {
	if g.ConfigPath != "" {
		return config.LoadFrom(g.ConfigPath)
	}
	return config.Load()
}

func (g *Globals) tenant() (string, error) {
	t := strings.TrimSpace(g.Tenant)
	if t == "" {
		return "", kb.ErrTenantRequired
	}
	return t, nil
}

// newLogger builds the root logger at level, or debug when verbose.
func (g *Globals) newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if g.LogOutput != nil {
		logger.SetOutput(g.LogOutput)
	} else {
		logger.SetOutput(os.Stderr)
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if g.Verbose {
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// newEngine builds the relevance engine from cfg.
func newEngine(cfg *config.Config) *relevance.Engine {
	opts := []relevance.Option{relevance.WithParallelThreshold(cfg.Engine.ParallelThreshold)}
	if cfg.Engine.Workers > 0 {
		opts = append(opts, relevance.WithWorkers(cfg.Engine.Workers))
	}
	return relevance.New(opts...)
}

// open loads configuration and opens the article store.
func (g *Globals) open() (*app, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := g.newLogger(cfg.Logging.Level)

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}

	store := kb.NewSQLiteStore(dbPath, logrus.NewEntry(logger))
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	engine := newEngine(cfg)
	service := kb.NewService(store, engine, kb.ServiceOptions{
		RAGMinScore:     cfg.Engine.RAGMinScore,
		RAGTopK:         cfg.Engine.RAGTopK,
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	}, logrus.NewEntry(logger))
	tracker := kb.NewSearchTracker(store, logrus.NewEntry(logger))
	service.SetHistoryRecorder(tracker)

	logger.WithFields(logrus.Fields{
		"db":      dbPath,
		"workers": engine.Workers(),
	}).Debug("opened knowledge base")

	return &app{
		cfg:     cfg,
		log:     logger,
		engine:  engine,
		store:   store,
		tracker: tracker,
		service: service,
	}, nil
}

// Close flushes pending search history and closes the store.
func (a *app) Close() error {
	a.tracker.Stop()
	return a.store.Close()
}

// retention converts the configured history retention to a duration.
func (a *app) retention() time.Duration {
	return time.Duration(a.cfg.Storage.HistoryRetentionDays) * 24 * time.Hour
}
