package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bodul/wordsearch/internal/profanity"
	"github.com/bodul/wordsearch/internal/puzzle"
	"github.com/bodul/wordsearch/internal/wordlist"
)

// ProgressFunc is told each time a puzzle finishes. Calls are serialised.
type ProgressFunc func(done, total int, title string)

// Builder assembles books. Settings, options and the blocklist snapshot are
// fixed at construction.
type Builder struct {
	settings  puzzle.Settings
	opts      Options
	blocklist *profanity.Blocklist
	logger    *slog.Logger
}

// NewBuilder validates the configuration. A nil blocklist disables scanning.
func NewBuilder(settings puzzle.Settings, opts Options, blocklist *profanity.Blocklist, logger *slog.Logger) (*Builder, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(settings); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{settings: settings, opts: opts, blocklist: blocklist, logger: logger}, nil
}

type result struct {
	puzzle  *puzzle.Puzzle
	warning string
}

// Build validates wl, generates one puzzle per category in parallel, then
// assigns ids, fixes the page order and numbers the titles. Density
// shortfalls become book warnings; the best-effort puzzle is kept.
func (bd *Builder) Build(ctx context.Context, wl *wordlist.Wordlist, progress ProgressFunc) (*Book, error) {
	if err := wl.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "Builder.Build")
	defer span.End()

	b := &Book{Title: wl.Title, Seed: bd.opts.Seed, CreatedAt: time.Now().UTC()}
	if b.Seed == 0 {
		b.Seed = rand.Uint64()
	}
	for _, w := range wl.ProfanityWarnings(bd.blocklist) {
		bd.logger.Warn("profanity in word list", slog.String("field", w.Field), slog.String("word", w.Word))
		b.Warnings = append(b.Warnings, w.String())
	}

	results := make([]result, len(wl.Categories))
	var (
		mu   sync.Mutex
		done int
	)

	g, gCtx := errgroup.WithContext(ctx)
	if bd.opts.Workers > 0 {
		g.SetLimit(bd.opts.Workers)
	}
	for i, cat := range wl.Categories {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(b.Seed, uint64(i)))
			p, warning, err := bd.generate(gCtx, i, cat, rng)
			if err != nil {
				return fmt.Errorf("category %q: %w", cat.Name, err)
			}
			results[i] = result{puzzle: p, warning: warning}

			mu.Lock()
			done++
			if progress != nil {
				progress(done, len(wl.Categories), cat.Name)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.Puzzles = make([]*puzzle.Puzzle, len(results))
	for i, r := range results {
		b.Puzzles[i] = r.puzzle
		if r.warning != "" {
			b.Warnings = append(b.Warnings, r.warning)
		}
	}
	if err := bd.arrange(b); err != nil {
		return nil, err
	}

	bd.logger.Info("book built",
		slog.String("title", b.Title),
		slog.Int("puzzles", len(b.Puzzles)),
		slog.Int("warnings", len(b.Warnings)),
		slog.Int("profanity_hits", b.ProfanityCount()))
	return b, nil
}

func (bd *Builder) generate(ctx context.Context, i int, cat wordlist.Category, rng *rand.Rand) (*puzzle.Puzzle, string, error) {
	_, span := startPuzzleSpan(ctx, i, cat.Name)
	defer span.End()

	gen, err := puzzle.NewGenerator(bd.settings, rng, bd.logger)
	if err != nil {
		return nil, "", err
	}
	p, st, err := gen.Generate(cat.Name, cat.Words)
	setPuzzleSpanResult(span, p, st, err)

	var warning string
	shortfall := errors.Is(err, puzzle.ErrDensityShortfall)
	switch {
	case shortfall:
		warning = err.Error()
		bd.logger.Warn("puzzle below minimum density", slog.String("puzzle", cat.Name), slog.Float64("density", p.Density))
	case err != nil:
		return nil, "", err
	}

	p.LongFact, p.ShortFact = cat.LongFact, cat.ShortFact
	hits := bd.scan(p)
	recordPuzzle(p, st, shortfall, hits)

	bd.logger.Info("puzzle generated",
		slog.String("puzzle", cat.Name),
		slog.Int("rows", p.Rows),
		slog.Int("columns", p.Columns),
		slog.Float64("density", p.Density),
		slog.Int("placed", len(p.PlacedWords)),
		slog.Int("attempts", st.Attempts),
		slog.Int("retries", st.Retries),
		slog.Duration("duration", st.Duration))
	return p, warning, nil
}

// scan runs the profanity pass when enabled and returns the hit count.
func (bd *Builder) scan(p *puzzle.Puzzle) int {
	if !bd.opts.EnableProfanityFilter {
		return 0
	}
	report := p.ScanProfanity(bd.blocklist)
	hits := 0
	for label, hs := range report {
		hits += len(hs)
		for _, h := range hs {
			bd.logger.Warn("profanity in grid",
				slog.String("puzzle", p.Title), slog.String("line", label),
				slog.String("word", h.Word), slog.String("direction", h.Direction))
		}
	}
	return hits
}

func (bd *Builder) layout(p *puzzle.Puzzle) (puzzle.Layout, error) {
	return p.Layout(bd.opts.SingleMaxRows, bd.settings.MaxRows)
}

func (bd *Builder) arrange(b *Book) error {
	assignIDs(b.Puzzles)
	swaps, err := FixOrder(b.Puzzles, bd.layout, bd.opts.FirstPuzzlePage)
	if err != nil {
		return err
	}
	if swaps > 0 {
		bd.logger.Debug("reordered puzzles for page layout", slog.Int("swaps", swaps))
	}
	assignDisplayTitles(b.Puzzles)
	return nil
}

// Rebuild regenerates one puzzle of b in place, keeping its id and facts,
// then re-runs the page ordering since the new grid may change layout.
func (bd *Builder) Rebuild(ctx context.Context, b *Book, id string) (*puzzle.Puzzle, error) {
	idx := -1
	for i, p := range b.Puzzles {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrPuzzleNotFound, id)
	}
	old := b.Puzzles[idx]
	cat := wordlist.Category{
		Name:      old.Title,
		Words:     old.InputWords,
		LongFact:  old.LongFact,
		ShortFact: old.ShortFact,
	}
	p, warning, err := bd.generate(ctx, idx, cat, nil)
	if err != nil {
		return nil, err
	}
	if warning != "" {
		b.Warnings = append(b.Warnings, warning)
	}
	p.ID = old.ID
	b.Puzzles[idx] = p

	if _, err := FixOrder(b.Puzzles, bd.layout, bd.opts.FirstPuzzlePage); err != nil {
		return nil, err
	}
	assignDisplayTitles(b.Puzzles)
	return p, nil
}

// EditCell sets one letter and rescans that puzzle.
func (bd *Builder) EditCell(b *Book, id string, x, y int, letter string) (*puzzle.Puzzle, error) {
	p, err := b.Puzzle(id)
	if err != nil {
		return nil, err
	}
	if err := p.SetLetter(x, y, letter); err != nil {
		return nil, err
	}
	bd.scan(p)
	return p, nil
}

// Rescan re-runs the profanity pass over every puzzle, for example after
// the blocklist changed, and returns the total hit count.
func (bd *Builder) Rescan(b *Book) int {
	n := 0
	for _, p := range b.Puzzles {
		n += bd.scan(p)
	}
	return n
}
