package puzzle

// Blank is the value of a cell no word or filler letter has claimed yet.
const Blank = "."

// Cell represents a single cell in the word-search grid.
// A cell is either part of one or more placed words (IsAnswer=true, with the
// orientations of those words in Direction) or a filler letter.
type Cell struct {
	X         int          `json:"x"`
	Y         int          `json:"y"`
	Value     string       `json:"value"`
	IsAnswer  bool         `json:"is_answer"`
	IsProfane bool         `json:"is_profane"`
	Direction DirectionSet `json:"direction"`
}

func newCell(x, y int) Cell {
	return Cell{X: x, Y: y, Value: Blank}
}

// setAnswer claims the cell for a word running in direction d.
func (c *Cell) setAnswer(value string, d Direction) {
	c.Value = value
	c.Direction = c.Direction.With(d)
	c.IsAnswer = true
}

// accepts reports whether letter can be written here by a word running in d.
// Crossing words may share a cell only when the letters agree and the
// orientations differ.
func (c *Cell) accepts(letter string, d Direction) bool {
	if !c.IsAnswer {
		return true
	}
	return c.Value == letter && !c.Direction.Has(d)
}

func (c Cell) String() string {
	return c.Value
}
