package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodul/wordsearch/internal/puzzle"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, puzzle.DefaultSettings(), cfg.Puzzle)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordsearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: "9000"
  log_level: debug
puzzle:
  min_density: 0.4
  max_rows: 20
book:
  single_max_rows: 12
`), 0o644))

	t.Setenv("WORDSEARCH_PORT", "9100")
	t.Setenv("GCP_PROJECT_ID", "demo-project")
	t.Setenv("WORDSEARCH_SEED", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.App.Port)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 0.4, cfg.Puzzle.MinDensity)
	assert.Equal(t, 20, cfg.Puzzle.MaxRows)
	assert.Equal(t, 0.75, cfg.Puzzle.MaxDensity, "unset keys keep defaults")
	assert.Equal(t, 12, cfg.Book.SingleMaxRows)
	assert.Equal(t, "demo-project", cfg.AI.ProjectID)
	assert.Equal(t, uint64(42), cfg.Book.Seed)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("puzzle:\n  min_density: 0.9\n"), 0o644))
	_, err := Load(path)
	assert.ErrorIs(t, err, puzzle.ErrInvalidSettings)

	require.NoError(t, os.WriteFile(path, []byte("puzzle:\n  max_density: .nan\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, puzzle.ErrInvalidSettings)

	t.Setenv("WORDSEARCH_SEED", "not-a-number")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestProjectDefaults(t *testing.T) {
	cfg := Default()
	ps := cfg.ProjectDefaults()
	assert.Equal(t, cfg.Puzzle, ps.Puzzle)
	assert.NoError(t, ps.Validate())

	ps.Book.SingleMaxRows = ps.Puzzle.MaxRows + 1
	assert.ErrorIs(t, ps.Validate(), puzzle.ErrInvalidSettings)
}
