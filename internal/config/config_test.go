package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kbscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 0.3, cfg.Engine.RAGMinScore)
	assert.Equal(t, 5, cfg.Engine.RAGTopK)
	assert.Equal(t, 0, cfg.Engine.Workers)
	assert.Equal(t, 256, cfg.Engine.ParallelThreshold)
	assert.Equal(t, 20, cfg.Search.DefaultPageSize)
	assert.Equal(t, 100, cfg.Search.MaxPageSize)
	assert.Equal(t, 1500, cfg.Context.MaxArticleChars)
	assert.Equal(t, "~/.kbscore/kb.db", cfg.Storage.Path)
	assert.Equal(t, 30, cfg.Storage.HistoryRetentionDays)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFrom(t *testing.T) {
	path := writeConfig(t, `
engine:
  ragMinScore: 0.45
  ragTopK: 3
search:
  maxPageSize: 50
logging:
  level: debug
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 0.45, cfg.Engine.RAGMinScore)
	assert.Equal(t, 3, cfg.Engine.RAGTopK)
	assert.Equal(t, 50, cfg.Search.MaxPageSize)
	assert.Equal(t, 20, cfg.Search.DefaultPageSize, "absent keys keep defaults")
	assert.Equal(t, 1500, cfg.Context.MaxArticleChars)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFrom_ZeroMinScoreIsKept(t *testing.T) {
	path := writeConfig(t, "engine:\n  ragMinScore: 0\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Engine.RAGMinScore)
}

func TestLoadFrom_ExpandsEnv(t *testing.T) {
	t.Setenv("KBSCORE_TEST_DB", "/tmp/kb-test.db")
	path := writeConfig(t, `
storage:
  path: ${KBSCORE_TEST_DB}
logging:
  level: ${KBSCORE_TEST_UNSET_LEVEL:-warn}
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/kb-test.db", cfg.Storage.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFrom_Errors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
		var notFound *ConfigNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Contains(t, err.Error(), "kbscore config init")
	})

	t.Run("invalid YAML", func(t *testing.T) {
		path := writeConfig(t, "engine: [unclosed\n")
		_, err := LoadFrom(path)
		var invalid *InvalidConfigError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, err.Error(), ".bak")
	})

	t.Run("out of range", func(t *testing.T) {
		path := writeConfig(t, "engine:\n  ragMinScore: 1.5\n")
		_, err := LoadFrom(path)
		var invalid *InvalidConfigError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, err.Error(), "ragMinScore")
	})

	t.Run("permission denied", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("file modes are not enforced for this user")
		}
		path := writeConfig(t, "logging:\n  level: info\n")
		require.NoError(t, os.Chmod(path, 0000))

		_, err := LoadFrom(path)
		var perm *PermissionError
		require.ErrorAs(t, err, &perm)
		assert.Contains(t, err.Error(), "chmod 644")
	})
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)

	path := writeConfig(t, "logging:\n  level: nonsense\n")
	_, err = LoadOrDefault(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"negative min score", func(c *Config) { c.Engine.RAGMinScore = -0.1 }, "ragMinScore"},
		{"negative workers", func(c *Config) { c.Engine.Workers = -1 }, "workers"},
		{"default page above max", func(c *Config) { c.Search.DefaultPageSize = 200 }, "defaultPageSize"},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestDBPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := NewConfig()
	got, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".kbscore", "kb.db"), got)

	cfg.Storage.Path = "/var/lib/kbscore/kb.db"
	got, err = cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/kbscore/kb.db", got)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kbscore.yaml")

	cfg := NewConfig()
	cfg.Engine.RAGTopK = 7
	require.NoError(t, Save(cfg, path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Engine.RAGTopK)

	cfg.Engine.RAGTopK = 9
	require.NoError(t, Save(cfg, path))

	backup, err := LoadFrom(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, 7, backup.Engine.RAGTopK, "previous file is kept as .bak")

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSave_RejectsInvalid(t *testing.T) {
	cfg := NewConfig()
	cfg.Logging.Level = "loud"

	err := Save(cfg, filepath.Join(t.TempDir(), "kbscore.yaml"))
	var invalid *InvalidConfigError
	assert.ErrorAs(t, err, &invalid)
}
