// Package puzzle builds single word-search grids: sizing, word placement,
// density control, filler letters and the profanity pass over the result.
package puzzle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bodul/wordsearch/internal/profanity"
)

// Layout says whether a puzzle fits one printed page or spans two.
type Layout string

const (
	Single Layout = "SINGLE"
	Double Layout = "DOUBLE"
)

// Puzzle is one word-search grid with the words hidden in it.
type Puzzle struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	DisplayTitle string           `json:"display_title"`
	InputWords   []string         `json:"input_word_list"`
	LongFact     string           `json:"long_fact"`
	ShortFact    string           `json:"short_fact"`
	Rows         int              `json:"rows"`
	Columns      int              `json:"columns"`
	Cells        [][]Cell         `json:"cells"`
	PlacedWords  []string         `json:"placed_words"`
	Density      float64          `json:"density"`
	Profanity    profanity.Report `json:"profanity"`
}

// New allocates a blank rows x columns puzzle for words.
func New(title string, words []string, rows, columns int) (*Puzzle, error) {
	if rows < 1 || columns < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rows, columns)
	}
	p := &Puzzle{
		Title:      title,
		InputWords: slices.Clone(words),
		Rows:       rows,
		Columns:    columns,
	}
	p.Reset()
	return p, nil
}

// NormalizeWord strips spaces and hyphens and upper-cases the rest, giving
// the letters that are actually hidden in the grid.
func NormalizeWord(word string) string {
	word = strings.NewReplacer(" ", "", "-", "").Replace(word)
	return strings.ToUpper(word)
}

// LetterCount is the number of grid letters words will need.
func LetterCount(words []string) int {
	n := 0
	for _, w := range words {
		n += len(NormalizeWord(w))
	}
	return n
}

// Reset clears the grid, placed words, density and profanity report.
func (p *Puzzle) Reset() {
	p.Cells = make([][]Cell, p.Rows)
	for y := range p.Cells {
		p.Cells[y] = make([]Cell, p.Columns)
		for x := range p.Cells[y] {
			p.Cells[y][x] = newCell(x, y)
		}
	}
	p.PlacedWords = []string{}
	p.Density = 0
	p.Profanity = profanity.Report{}
}

// Resize changes the grid dimensions and resets the puzzle.
func (p *Puzzle) Resize(rows, columns int) error {
	if rows < 1 || columns < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rows, columns)
	}
	p.Rows, p.Columns = rows, columns
	p.Reset()
	return nil
}

// OccupiedCount returns how many cells belong to placed words.
func (p *Puzzle) OccupiedCount() int {
	n := 0
	for _, row := range p.Cells {
		for _, c := range row {
			if c.IsAnswer {
				n++
			}
		}
	}
	return n
}

func (p *Puzzle) updateDensity() {
	p.Density = float64(p.OccupiedCount()) / float64(p.Rows*p.Columns)
}

// addPlaced records word keeping PlacedWords sorted.
func (p *Puzzle) addPlaced(word string) {
	i, found := slices.BinarySearch(p.PlacedWords, word)
	if !found {
		p.PlacedWords = slices.Insert(p.PlacedWords, i, word)
	}
}

// remaining returns the distinct input words not placed yet, upper-cased.
func (p *Puzzle) remaining() []string {
	var out []string
	seen := make(map[string]bool, len(p.InputWords))
	for _, w := range p.InputWords {
		u := strings.ToUpper(w)
		if seen[u] {
			continue
		}
		seen[u] = true
		if _, placed := slices.BinarySearch(p.PlacedWords, u); !placed {
			out = append(out, u)
		}
	}
	return out
}

// Blanks counts cells still holding Blank.
func (p *Puzzle) Blanks() int {
	n := 0
	for _, row := range p.Cells {
		for _, c := range row {
			if c.Value == Blank {
				n++
			}
		}
	}
	return n
}

// Layout reports whether the puzzle prints on one page (rows up to
// singleMaxRows) or two (up to maxRows).
func (p *Puzzle) Layout(singleMaxRows, maxRows int) (Layout, error) {
	switch {
	case p.Rows > 0 && p.Rows <= singleMaxRows:
		return Single, nil
	case p.Rows > singleMaxRows && p.Rows <= maxRows:
		return Double, nil
	}
	return "", fmt.Errorf("%w: %d rows, max %d", ErrLayoutOverflow, p.Rows, maxRows)
}

// SetLetter overwrites the letter at column x, row y. Profanity must be
// rescanned afterwards.
func (p *Puzzle) SetLetter(x, y int, letter string) error {
	if y < 0 || y >= p.Rows || x < 0 || x >= p.Columns {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return fmt.Errorf("%w: %q", ErrInvalidLetter, letter)
	}
	p.Cells[y][x].Value = letter
	return nil
}

// ScanProfanity replaces the profanity report with a fresh scan and re-marks
// the affected cells.
func (p *Puzzle) ScanProfanity(b *profanity.Blocklist) profanity.Report {
	for y := range p.Cells {
		for x := range p.Cells[y] {
			p.Cells[y][x].IsProfane = false
		}
	}
	p.Profanity = profanity.NewScanner(b).Scan(gridView{p})
	for _, c := range p.Profanity.Cells() {
		p.Cells[c.Y][c.X].IsProfane = true
	}
	return p.Profanity
}

// Clone returns a deep copy.
func (p *Puzzle) Clone() *Puzzle {
	cp := *p
	cp.InputWords = slices.Clone(p.InputWords)
	cp.PlacedWords = slices.Clone(p.PlacedWords)
	cp.Cells = make([][]Cell, len(p.Cells))
	for y, row := range p.Cells {
		cp.Cells[y] = slices.Clone(row)
	}
	cp.Profanity = make(profanity.Report, len(p.Profanity))
	for k, hits := range p.Profanity {
		cp.Profanity[k] = slices.Clone(hits)
	}
	return &cp
}

// String renders the grid one row per line.
func (p *Puzzle) String() string {
	var sb strings.Builder
	for _, row := range p.Cells {
		for _, c := range row {
			sb.WriteString(c.Value)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// gridView adapts a Puzzle to profanity.Grid.
type gridView struct{ p *Puzzle }

func (g gridView) Rows() int                  { return g.p.Rows }
func (g gridView) Columns() int               { return g.p.Columns }
func (g gridView) Letter(row, col int) string { return g.p.Cells[row][col].Value }
