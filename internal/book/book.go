// Package book turns a validated word list into an ordered set of puzzles
// ready for print layout, and supports editing a saved set afterwards.
package book

import (
	"errors"
	"fmt"
	"time"

	"github.com/bodul/wordsearch/internal/puzzle"
)

var ErrPuzzleNotFound = errors.New("puzzle not found")

// Options control book assembly. They are separate from puzzle.Settings
// because they concern the whole set rather than one grid.
type Options struct {
	// SingleMaxRows is the most rows that still print on one page.
	SingleMaxRows         int    `json:"single_max_rows" yaml:"single_max_rows"`
	FirstPuzzlePage       int    `json:"first_puzzle_page" yaml:"first_puzzle_page"`
	EnableProfanityFilter bool   `json:"enable_profanity_filter" yaml:"enable_profanity_filter"`
	Workers               int    `json:"workers" yaml:"workers"`
	Seed                  uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

func DefaultOptions() Options {
	return Options{
		SingleMaxRows:         16,
		FirstPuzzlePage:       1,
		EnableProfanityFilter: true,
		Workers:               4,
	}
}

// Validate checks the options against the grid limits they will be used with.
func (o Options) Validate(s puzzle.Settings) error {
	switch {
	case o.SingleMaxRows <= 0:
		return fmt.Errorf("%w: single_max_rows must be positive", puzzle.ErrInvalidSettings)
	case o.SingleMaxRows > s.MaxRows:
		return fmt.Errorf("%w: single_max_rows %d exceeds max_rows %d", puzzle.ErrInvalidSettings, o.SingleMaxRows, s.MaxRows)
	case o.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", puzzle.ErrInvalidSettings)
	}
	return nil
}

// Book is an ordered puzzle set with the warnings raised while building it.
type Book struct {
	Title     string           `json:"title"`
	Puzzles   []*puzzle.Puzzle `json:"puzzles"`
	Warnings  []string         `json:"warnings"`
	Seed      uint64           `json:"seed"`
	CreatedAt time.Time        `json:"created_at"`
}

// Puzzle returns the puzzle with the given id.
func (b *Book) Puzzle(id string) (*puzzle.Puzzle, error) {
	for _, p := range b.Puzzles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPuzzleNotFound, id)
}

// Layouts returns each puzzle's page layout in book order.
func (b *Book) Layouts(singleMaxRows, maxRows int) ([]puzzle.Layout, error) {
	out := make([]puzzle.Layout, len(b.Puzzles))
	for i, p := range b.Puzzles {
		l, err := p.Layout(singleMaxRows, maxRows)
		if err != nil {
			return nil, fmt.Errorf("puzzle %s: %w", p.ID, err)
		}
		out[i] = l
	}
	return out, nil
}

// ProfanityCount is the total number of hits across all puzzles.
func (b *Book) ProfanityCount() int {
	n := 0
	for _, p := range b.Puzzles {
		for _, hits := range p.Profanity {
			n += len(hits)
		}
	}
	return n
}
