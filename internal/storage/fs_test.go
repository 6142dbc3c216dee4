package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodul/wordsearch/internal/book"
	"github.com/bodul/wordsearch/internal/config"
	"github.com/bodul/wordsearch/internal/puzzle"
	"github.com/bodul/wordsearch/internal/wordlist"
)

func newStore(t *testing.T) *FS {
	t.Helper()
	return NewFS(t.TempDir(), config.Default().ProjectDefaults())
}

func TestCreateListDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	projects, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	require.NoError(t, s.Create(ctx, "zoo_book"))
	require.NoError(t, s.Create(ctx, "alpha-1"))
	assert.ErrorIs(t, s.Create(ctx, "zoo_book"), ErrExists)
	assert.ErrorIs(t, s.Create(ctx, "../escape"), ErrInvalidName)
	assert.ErrorIs(t, s.Create(ctx, "has space"), ErrInvalidName)

	projects, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "alpha-1", projects[0].Name)
	assert.Equal(t, "zoo_book", projects[1].Name)
	require.Len(t, projects[0].Files, 1)
	assert.Equal(t, SettingsFile, projects[0].Files[0].Name)
	assert.WithinDuration(t, time.Now(), projects[0].Modified, time.Minute)

	require.NoError(t, s.Delete(ctx, "alpha-1"))
	assert.False(t, s.Exists(ctx, "alpha-1"))
	assert.ErrorIs(t, s.Delete(ctx, "alpha-1"), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "a/b"), ErrInvalidName)
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Create(ctx, "demo"))

	ps, err := s.LoadSettings(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, config.Default().ProjectDefaults(), ps)

	ps.Puzzle.MinDensity = 0.4
	ps.Book.FirstPuzzlePage = 3
	require.NoError(t, s.SaveSettings(ctx, "demo", ps))

	got, err := s.LoadSettings(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, 0.4, got.Puzzle.MinDensity)
	assert.Equal(t, 3, got.Book.FirstPuzzlePage)

	ps.Puzzle.MinDensity = 2
	assert.ErrorIs(t, s.SaveSettings(ctx, "demo", ps), puzzle.ErrInvalidSettings)
}

func TestPartialSettingsFileKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Create(ctx, "demo"))
	path := filepath.Join(s.Dir(), "demo", SettingsFile)
	require.NoError(t, os.WriteFile(path, []byte("puzzle:\n  max_rows: 20\n"), 0o644))

	ps, err := s.LoadSettings(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, 20, ps.Puzzle.MaxRows)
	assert.Equal(t, puzzle.DefaultSettings().MaxDensity, ps.Puzzle.MaxDensity)
}

func TestWordlistAndBook(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Create(ctx, "demo"))

	_, err := s.LoadWordlist(ctx, "demo")
	assert.ErrorIs(t, err, ErrNotFound)

	wl := &wordlist.Wordlist{
		Title:      "Fruit",
		Categories: []wordlist.Category{{Name: "Citrus", Words: []string{"lemon", "lime", "orange"}}},
	}
	require.NoError(t, s.SaveWordlist(ctx, "demo", wl))
	gotWL, err := s.LoadWordlist(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, wl.Categories, gotWL.Categories)

	p, err := puzzle.New("Citrus", wl.Categories[0].Words, 4, 4)
	require.NoError(t, err)
	p.ID = "citrus"
	b := &book.Book{Title: "Fruit", Puzzles: []*puzzle.Puzzle{p}, Seed: 9}
	require.NoError(t, s.SaveBook(ctx, "demo", b))

	gotBook, err := s.LoadBook(ctx, "demo")
	require.NoError(t, err)
	got, err := gotBook.Puzzle("citrus")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rows)
	assert.Equal(t, uint64(9), gotBook.Seed)

	assert.ErrorIs(t, s.SaveBook(ctx, "missing", b), ErrNotFound)
}

func TestCancelledContext(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Create(context.Background(), "alpha"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Create(ctx, "beta"), context.Canceled)
	assert.False(t, s.Exists(ctx, "alpha"))
	_, err := s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.LoadSettings(ctx, "alpha")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.SaveBook(ctx, "alpha", &book.Book{Title: "Nature"}), context.Canceled)
	_, err = s.LoadBook(ctx, "alpha")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Delete(ctx, "alpha"), context.Canceled)

	// Nothing was touched.
	assert.False(t, s.Exists(context.Background(), "beta"))
	assert.True(t, s.Exists(context.Background(), "alpha"))
}
