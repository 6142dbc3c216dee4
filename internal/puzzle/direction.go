package puzzle

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

// Direction is one of the four lines a word can occupy in the grid.
type Direction uint8

const (
	NS   Direction = iota // vertical
	EW                    // horizontal
	NESW                  // anti-diagonal, bottom-left to top-right
	NWSE                  // main diagonal, top-left to bottom-right
)

// Directions lists every orientation in declaration order.
var Directions = []Direction{NS, EW, NESW, NWSE}

var directionNames = [...]string{NS: "NS", EW: "EW", NESW: "NESW", NWSE: "NWSE"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", d)
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	if int(d) >= len(directionNames) {
		return nil, fmt.Errorf("unknown direction %d", d)
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(b []byte) error {
	for i, name := range directionNames {
		if name == string(b) {
			*d = Direction(i)
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", b)
}

// orientation describes how a word of length n walks the grid from its anchor.
type orientation struct {
	dRow, dCol int
	// anchor picks a random start cell such that the whole word stays in bounds.
	anchor func(rng *rand.Rand, rows, cols, n int) (row, col int)
}

// orientations is the dispatch table used by PlaceWord.
var orientations = [...]orientation{
	NS: {dRow: 1, dCol: 0, anchor: func(rng *rand.Rand, rows, cols, n int) (int, int) {
		return rng.IntN(rows - n + 1), rng.IntN(cols)
	}},
	EW: {dRow: 0, dCol: 1, anchor: func(rng *rand.Rand, rows, cols, n int) (int, int) {
		return rng.IntN(rows), rng.IntN(cols - n + 1)
	}},
	NESW: {dRow: -1, dCol: 1, anchor: func(rng *rand.Rand, rows, cols, n int) (int, int) {
		return n - 1 + rng.IntN(rows-n+1), rng.IntN(cols - n + 1)
	}},
	NWSE: {dRow: 1, dCol: 1, anchor: func(rng *rand.Rand, rows, cols, n int) (int, int) {
		return rng.IntN(rows - n + 1), rng.IntN(cols - n + 1)
	}},
}

// DirectionSet records which orientations pass through a cell.
type DirectionSet uint8

// Has reports whether d is in the set.
func (s DirectionSet) Has(d Direction) bool {
	return s&(1<<d) != 0
}

// With returns the set with d added.
func (s DirectionSet) With(d Direction) DirectionSet {
	return s | 1<<d
}

// Empty reports whether no orientation passes through the cell.
func (s DirectionSet) Empty() bool {
	return s == 0
}

// MarshalJSON writes every flag explicitly so solution lines survive a round trip.
func (s DirectionSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]bool, len(Directions))
	for _, d := range Directions {
		m[d.String()] = s.Has(d)
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads the map written by MarshalJSON.
func (s *DirectionSet) UnmarshalJSON(b []byte) error {
	var m map[string]bool
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var out DirectionSet
	for name, set := range m {
		var d Direction
		if err := d.UnmarshalText([]byte(name)); err != nil {
			return err
		}
		if set {
			out = out.With(d)
		}
	}
	*s = out
	return nil
}
