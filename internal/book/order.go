package book

import (
	"fmt"
	"strings"

	"github.com/bodul/wordsearch/internal/puzzle"
)

// FixOrder nudges DOUBLE items so each one starts on an even page, with
// pages numbered from firstPage. A DOUBLE that would land on an odd page
// swaps with the SINGLE just before it. Only the parity of the singles
// before an item decides its page, so one left-to-right pass is enough. The
// relative order of every other item is kept. It returns the number of swaps.
func FixOrder[T any](items []T, layout func(T) (puzzle.Layout, error), firstPage int) (int, error) {
	tags := make([]puzzle.Layout, len(items))
	for i, it := range items {
		l, err := layout(it)
		if err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
		tags[i] = l
	}

	swaps, singles := 0, 0
	for i := range items {
		if tags[i] == puzzle.Single {
			singles++
			continue
		}
		if (firstPage+singles)%2 == 0 {
			continue
		}
		if i == 0 || tags[i-1] != puzzle.Single {
			continue
		}
		items[i-1], items[i] = items[i], items[i-1]
		tags[i-1], tags[i] = tags[i], tags[i-1]
		swaps++
	}
	return swaps, nil
}

// PageCount is the number of pages the layouts fill.
func PageCount(layouts []puzzle.Layout) int {
	n := 0
	for _, l := range layouts {
		if l == puzzle.Double {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// Slug turns a category name into a lower-case id of letters, digits and
// single hyphens.
func Slug(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case sb.Len() > 0 && !dash:
			sb.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(sb.String(), "-")
	if s == "" {
		return "puzzle"
	}
	return s
}

// assignIDs gives each puzzle a unique slug; repeats get -2, -3 and so on.
func assignIDs(puzzles []*puzzle.Puzzle) {
	seen := make(map[string]int, len(puzzles))
	for _, p := range puzzles {
		base := Slug(p.Title)
		seen[base]++
		id := base
		for n := seen[base]; n > 1; n++ {
			id = fmt.Sprintf("%s-%d", base, n)
			if seen[id] == 0 {
				seen[id]++
				break
			}
		}
		p.ID = id
	}
}

// assignDisplayTitles numbers puzzles in their final order.
func assignDisplayTitles(puzzles []*puzzle.Puzzle) {
	for i, p := range puzzles {
		p.DisplayTitle = fmt.Sprintf("%d. %s", i+1, p.Title)
	}
}
