package profanity

import (
	"fmt"
	"strings"
)

// Direction tags for a hit: read forward or reversed along the line.
const (
	Forward = "F"
	Reverse = "R"
)

// Grid is the read-only view of a populated puzzle the scanner needs.
type Grid interface {
	Rows() int
	Columns() int
	Letter(row, col int) string
}

// Coord is a cell position; X is the column and Y the row.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Hit is one blocked word found on a line.
type Hit struct {
	Word        string  `json:"word"`
	Direction   string  `json:"direction"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Coordinates []Coord `json:"coordinates"`
}

// Report maps a line label (row3, col0, nwse-2, swne4) to its hits.
// Lines without hits are absent.
type Report map[string][]Hit

// Cells returns every coordinate covered by any hit.
func (r Report) Cells() []Coord {
	var out []Coord
	for _, hits := range r {
		for _, h := range hits {
			out = append(out, h.Coordinates...)
		}
	}
	return out
}

// Line is one row, column or diagonal read in grid order.
type Line struct {
	Label   string
	Letters []string
	Coords  []Coord
}

func (l Line) reversed() Line {
	n := len(l.Letters)
	out := Line{Label: l.Label, Letters: make([]string, n), Coords: make([]Coord, n)}
	for i := range n {
		out.Letters[i] = l.Letters[n-1-i]
		out.Coords[i] = l.Coords[n-1-i]
	}
	return out
}

// Lines extracts every row, column and both diagonal families of g.
// Diagonal offsets run from -(rows-1) to columns-1 inclusive; the swne family
// is read from the bottom edge upwards.
func Lines(g Grid) []Line {
	rows, cols := g.Rows(), g.Columns()
	lines := make([]Line, 0, rows+cols+2*(rows+cols-1))

	for y := range rows {
		l := Line{Label: fmt.Sprintf("row%d", y)}
		for x := range cols {
			l.Letters = append(l.Letters, g.Letter(y, x))
			l.Coords = append(l.Coords, Coord{X: x, Y: y})
		}
		lines = append(lines, l)
	}
	for x := range cols {
		l := Line{Label: fmt.Sprintf("col%d", x)}
		for y := range rows {
			l.Letters = append(l.Letters, g.Letter(y, x))
			l.Coords = append(l.Coords, Coord{X: x, Y: y})
		}
		lines = append(lines, l)
	}
	for offset := -(rows - 1); offset < cols; offset++ {
		nwse := Line{Label: fmt.Sprintf("nwse%d", offset)}
		swne := Line{Label: fmt.Sprintf("swne%d", offset)}
		for k, x := max(0, -offset), max(0, offset); k < rows && x < cols; k, x = k+1, x+1 {
			nwse.Letters = append(nwse.Letters, g.Letter(k, x))
			nwse.Coords = append(nwse.Coords, Coord{X: x, Y: k})

			y := rows - 1 - k
			swne.Letters = append(swne.Letters, g.Letter(y, x))
			swne.Coords = append(swne.Coords, Coord{X: x, Y: y})
		}
		lines = append(lines, nwse, swne)
	}
	return lines
}

// Scanner finds blocked words in a grid.
type Scanner struct {
	blocklist *Blocklist
}

// NewScanner returns a scanner bound to one blocklist snapshot.
func NewScanner(b *Blocklist) *Scanner {
	return &Scanner{blocklist: b}
}

// Scan checks every contiguous substring of every line, forward and
// reversed. The result depends only on the grid letters and the blocklist,
// so scanning an unchanged grid twice gives equal reports.
func (s *Scanner) Scan(g Grid) Report {
	report := make(Report)
	if s.blocklist.Len() == 0 {
		return report
	}
	for _, line := range Lines(g) {
		hits := s.scanLine(line, Forward)
		hits = append(hits, s.scanLine(line.reversed(), Reverse)...)
		if len(hits) > 0 {
			report[line.Label] = hits
		}
	}
	return report
}

// scanLine tests substrings up to the longest blocked word; longer ones can
// never match.
func (s *Scanner) scanLine(line Line, direction string) []Hit {
	var hits []Hit
	n := len(line.Letters)
	limit := s.blocklist.MaxLen()
	for i := range n {
		var sb strings.Builder
		for j := i + 1; j <= n && j-i <= limit; j++ {
			sb.WriteString(strings.ToUpper(line.Letters[j-1]))
			word := sb.String()
			if !s.blocklist.has(word) {
				continue
			}
			coords := make([]Coord, j-i)
			copy(coords, line.Coords[i:j])
			hits = append(hits, Hit{
				Word:        word,
				Direction:   direction,
				Start:       i,
				End:         j,
				Coordinates: coords,
			})
		}
	}
	return hits
}
