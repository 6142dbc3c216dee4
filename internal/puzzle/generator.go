package puzzle

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// Settings are the generation limits. They are copied into a Generator and
// never change while it runs.
type Settings struct {
	MaxDensity           float64 `json:"max_density" yaml:"max_density"`
	MinDensity           float64 `json:"min_density" yaml:"min_density"`
	MaxPlacementAttempts int     `json:"max_placement_attempts" yaml:"max_placement_attempts"`
	MaxRows              int     `json:"max_rows" yaml:"max_rows"`
	MaxColumns           int     `json:"max_columns" yaml:"max_columns"`
	MaxDensityRetries    int     `json:"max_density_retries" yaml:"max_density_retries"`
	ShrinkEvery          int     `json:"shrink_every" yaml:"shrink_every"`
}

// DefaultSettings returns limits that suit a 6x9 inch puzzle book.
func DefaultSettings() Settings {
	return Settings{
		MaxDensity:           0.75,
		MinDensity:           0.55,
		MaxPlacementAttempts: 1000,
		MaxRows:              24,
		MaxColumns:           16,
		MaxDensityRetries:    50,
		ShrinkEvery:          5,
	}
}

// Validate checks the settings are usable.
func (s Settings) Validate() error {
	switch {
	case math.IsNaN(s.MaxDensity) || s.MaxDensity <= 0 || s.MaxDensity > 1:
		return fmt.Errorf("%w: max_density %v must be in (0,1]", ErrInvalidSettings, s.MaxDensity)
	case math.IsNaN(s.MinDensity) || s.MinDensity < 0 || s.MinDensity >= s.MaxDensity:
		return fmt.Errorf("%w: min_density %v must be in [0,max_density)", ErrInvalidSettings, s.MinDensity)
	case s.MaxPlacementAttempts <= 0:
		return fmt.Errorf("%w: max_placement_attempts must be positive", ErrInvalidSettings)
	case s.MaxRows <= 0 || s.MaxColumns <= 0:
		return fmt.Errorf("%w: max_rows and max_columns must be positive", ErrInvalidSettings)
	case s.MaxDensityRetries < 0:
		return fmt.Errorf("%w: max_density_retries must not be negative", ErrInvalidSettings)
	case s.ShrinkEvery <= 0:
		return fmt.Errorf("%w: shrink_every must be positive", ErrInvalidSettings)
	}
	return nil
}

// Stats describes the work one Generate call did.
type Stats struct {
	Attempts int
	Retries  int
	Shrinks  int
	Duration time.Duration
}

// Generator places words into puzzles. It is not safe for concurrent use;
// give each goroutine its own Generator and rand source.
type Generator struct {
	settings Settings
	rng      *rand.Rand
	logger   *slog.Logger

	attempts int
}

// NewGenerator validates settings and binds the random source.
func NewGenerator(settings Settings, rng *rand.Rand, logger *slog.Logger) (*Generator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{settings: settings, rng: rng, logger: logger}, nil
}

// Settings returns the limits the generator was built with.
func (g *Generator) Settings() Settings {
	return g.settings
}

// candidateDirections drops the orientations a word of length n cannot fit.
func candidateDirections(n, rows, columns int) []Direction {
	out := make([]Direction, 0, len(Directions))
	for _, d := range Directions {
		switch d {
		case NESW, NWSE:
			if n > min(rows, columns) {
				continue
			}
		case NS:
			if n > rows {
				continue
			}
		case EW:
			if n > columns {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

// PlaceWord makes one random attempt to hide word in p: a random fitting
// orientation, a coin flip for reversal and a random anchor. It returns false
// without touching the grid if any cell along the path conflicts.
func (g *Generator) PlaceWord(p *Puzzle, word string) bool {
	letters := NormalizeWord(word)
	n := len(letters)
	if n == 0 {
		return false
	}
	candidates := candidateDirections(n, p.Rows, p.Columns)
	if len(candidates) == 0 {
		g.logger.Debug("word does not fit any orientation",
			slog.String("word", letters), slog.Int("rows", p.Rows), slog.Int("columns", p.Columns))
		return false
	}

	d := candidates[g.rng.IntN(len(candidates))]
	if g.rng.IntN(2) == 1 {
		letters = reverse(letters)
	}
	o := orientations[d]
	row, col := o.anchor(g.rng, p.Rows, p.Columns, n)

	for i := range n {
		if !p.Cells[row+i*o.dRow][col+i*o.dCol].accepts(letters[i:i+1], d) {
			return false
		}
	}
	for i := range n {
		p.Cells[row+i*o.dRow][col+i*o.dCol].setAnswer(letters[i:i+1], d)
	}
	return true
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// FillEmptyCells gives every cell outside a placed word a random letter drawn
// by English letter frequency.
func (g *Generator) FillEmptyCells(p *Puzzle) {
	for y := range p.Cells {
		for x := range p.Cells[y] {
			if !p.Cells[y][x].IsAnswer {
				p.Cells[y][x].Value = randomLetter(g.rng)
			}
		}
	}
}

// Populate keeps trying random unplaced words until the attempt budget is
// spent, max density is reached or every word is placed, then fills the
// remaining cells.
func (g *Generator) Populate(p *Puzzle) {
	attempts := 0
	for attempts < g.settings.MaxPlacementAttempts &&
		p.Density < g.settings.MaxDensity &&
		len(p.PlacedWords) < len(p.InputWords) {
		remaining := p.remaining()
		if len(remaining) == 0 {
			break
		}
		word := remaining[g.rng.IntN(len(remaining))]
		if g.PlaceWord(p, word) {
			p.addPlaced(word)
			p.updateDensity()
			g.logger.Debug("placed word", slog.String("puzzle", p.Title), slog.String("word", word))
		} else {
			g.logger.Debug("placement miss", slog.String("puzzle", p.Title), slog.String("word", word))
		}
		attempts++
	}
	g.attempts += attempts
	g.FillEmptyCells(p)
}

// shrink removes one row or column, whichever dimension is larger; ties
// shrink rows. A 1x1 grid is only reset.
func (g *Generator) shrink(p *Puzzle) bool {
	rows, cols := p.Rows, p.Columns
	switch {
	case rows >= cols && rows > 1:
		rows--
	case cols > 1:
		cols--
	default:
		p.Reset()
		return false
	}
	// Dimensions stay >= 1, so Resize cannot fail.
	_ = p.Resize(rows, cols)
	return true
}

// Generate sizes, builds and populates a puzzle for words, retrying until
// MinDensity is reached. Every ShrinkEvery-th retry shrinks the grid instead
// of only resetting it. After MaxDensityRetries retries the densest attempt
// is returned together with ErrDensityShortfall.
func (g *Generator) Generate(title string, words []string) (*Puzzle, Stats, error) {
	start := time.Now()
	g.attempts = 0

	rows, cols := GridSize(LetterCount(words), g.settings.MaxDensity, g.settings.MaxRows, g.settings.MaxColumns)
	g.logger.Debug("puzzle target size", slog.String("puzzle", title), slog.Int("rows", rows), slog.Int("columns", cols))

	p, err := New(title, words, rows, cols)
	if err != nil {
		return nil, Stats{}, err
	}
	g.Populate(p)

	st := Stats{}
	best := p
	for p.Density < g.settings.MinDensity {
		st.Retries++
		if st.Retries > g.settings.MaxDensityRetries {
			st.Retries--
			st.Attempts, st.Duration = g.attempts, time.Since(start)
			return best, st, fmt.Errorf("%w: %q reached %.2f after %d retries, want %.2f",
				ErrDensityShortfall, title, best.Density, st.Retries, g.settings.MinDensity)
		}
		g.logger.Debug("puzzle failed density check, retrying",
			slog.String("puzzle", title), slog.Float64("density", p.Density), slog.Int("retry", st.Retries))

		if best == p {
			best = p.Clone()
		}
		if st.Retries%g.settings.ShrinkEvery == 0 && g.shrink(p) {
			st.Shrinks++
			g.logger.Debug("reduced puzzle size before retry",
				slog.String("puzzle", title), slog.Int("rows", p.Rows), slog.Int("columns", p.Columns))
		} else {
			p.Reset()
		}
		g.Populate(p)
		if p.Density > best.Density {
			best = p
		}
	}

	st.Attempts, st.Duration = g.attempts, time.Since(start)
	return p, st, nil
}
