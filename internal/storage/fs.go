// Package storage keeps projects on the local filesystem, one directory per
// project holding its settings, word list and generated puzzle data.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bodul/wordsearch/internal/book"
	"github.com/bodul/wordsearch/internal/config"
	"github.com/bodul/wordsearch/internal/wordlist"
)

const (
	SettingsFile = "project_settings.yaml"
	WordlistFile = "wordlist.json"
	PuzzleFile   = "puzzledata.json"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidName = errors.New("invalid project name")
	ErrExists      = errors.New("project already exists")
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// FileInfo describes one file inside a project.
type FileInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Project summarises a project directory.
type Project struct {
	Name     string     `json:"name"`
	Files    []FileInfo `json:"files"`
	Modified time.Time  `json:"modified"`
}

// FS stores projects under dir. It performs no locking; callers serialise
// writes to the same project.
type FS struct {
	dir      string
	defaults config.ProjectSettings
}

// NewFS returns a store rooted at dir. defaults fill in any project
// settings missing from disk.
func NewFS(dir string, defaults config.ProjectSettings) *FS {
	return &FS{dir: dir, defaults: defaults}
}

// Dir is the root directory.
func (s *FS) Dir() string { return s.dir }

func (s *FS) projectDir(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *FS) pathFor(name, file string) (string, error) {
	dir, err := s.projectDir(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, file), nil
}

// Create makes a new project directory with the default settings.
func (s *FS) Create(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := s.projectDir(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return s.SaveSettings(ctx, name, s.defaults)
}

// Exists reports whether the project directory is present.
func (s *FS) Exists(ctx context.Context, name string) bool {
	dir, err := s.projectDir(name)
	if err != nil || ctx.Err() != nil {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// List returns every project sorted by name.
func (s *FS) List(ctx context.Context) ([]Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Project{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []Project{}
	for _, e := range entries {
		if !e.IsDir() || !validName.MatchString(e.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := s.describe(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Project) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *FS) describe(name string) (Project, error) {
	p := Project{Name: name, Files: []FileInfo{}}
	entries, err := os.ReadDir(filepath.Join(s.dir, name))
	if err != nil {
		return p, err
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return p, err
		}
		p.Files = append(p.Files, FileInfo{Name: e.Name(), Size: info.Size(), Modified: info.ModTime()})
		if info.ModTime().After(p.Modified) {
			p.Modified = info.ModTime()
		}
	}
	return p, nil
}

// Delete removes a project and everything in it.
func (s *FS) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.Exists(ctx, name) {
		if !validName.MatchString(name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		return fmt.Errorf("project %s: %w", name, ErrNotFound)
	}
	return os.RemoveAll(filepath.Join(s.dir, name))
}

// LoadSettings reads the project settings over the store defaults.
func (s *FS) LoadSettings(ctx context.Context, name string) (config.ProjectSettings, error) {
	out := s.defaults
	data, err := s.read(ctx, name, SettingsFile)
	if errors.Is(err, ErrNotFound) && s.Exists(ctx, name) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse %s: %w", SettingsFile, err)
	}
	return out, nil
}

// SaveSettings validates and writes the project settings.
func (s *FS) SaveSettings(ctx context.Context, name string, ps config.ProjectSettings) error {
	if err := ps.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(ps)
	if err != nil {
		return err
	}
	return s.write(ctx, name, SettingsFile, data)
}

// LoadWordlist reads the project's word list.
func (s *FS) LoadWordlist(ctx context.Context, name string) (*wordlist.Wordlist, error) {
	data, err := s.read(ctx, name, WordlistFile)
	if err != nil {
		return nil, err
	}
	return wordlist.Parse(data)
}

// SaveWordlist writes the word list. Validation is the caller's job so a
// draft can be stored before it is fixed.
func (s *FS) SaveWordlist(ctx context.Context, name string, wl *wordlist.Wordlist) error {
	return s.writeJSON(ctx, name, WordlistFile, wl)
}

// LoadBook reads the generated puzzle data.
func (s *FS) LoadBook(ctx context.Context, name string) (*book.Book, error) {
	data, err := s.read(ctx, name, PuzzleFile)
	if err != nil {
		return nil, err
	}
	var b book.Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse %s: %w", PuzzleFile, err)
	}
	return &b, nil
}

// SaveBook writes the generated puzzle data.
func (s *FS) SaveBook(ctx context.Context, name string, b *book.Book) error {
	return s.writeJSON(ctx, name, PuzzleFile, b)
}

func (s *FS) read(ctx context.Context, name, file string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.pathFor(name, file)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", name, file, ErrNotFound)
	}
	return data, err
}

func (s *FS) writeJSON(ctx context.Context, name, file string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return s.write(ctx, name, file, append(data, '\n'))
}

// write replaces file atomically so readers never see a partial document.
func (s *FS) write(ctx context.Context, name, file string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.pathFor(name, file)
	if err != nil {
		return err
	}
	if !s.Exists(ctx, name) {
		return fmt.Errorf("project %s: %w", name, ErrNotFound)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+file+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
