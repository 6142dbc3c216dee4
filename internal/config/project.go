package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bodul/wordsearch/internal/book"
	"github.com/bodul/wordsearch/internal/puzzle"
)

// ProjectSettings are the generation settings a single project may
// override. Fields missing from a project file keep the process defaults.
type ProjectSettings struct {
	Puzzle puzzle.Settings `json:"puzzle" yaml:"puzzle"`
	Book   book.Options    `json:"book" yaml:"book"`
}

// ProjectDefaults returns the settings a new project starts with.
func (c Config) ProjectDefaults() ProjectSettings {
	return ProjectSettings{Puzzle: c.Puzzle, Book: c.Book}
}

// Validate checks both sections.
func (p ProjectSettings) Validate() error {
	if err := p.Puzzle.Validate(); err != nil {
		return err
	}
	return p.Book.Validate(p.Puzzle)
}

// ParseLevel maps a config log level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("app.log_level: %w", err)
	}
	return l, nil
}
