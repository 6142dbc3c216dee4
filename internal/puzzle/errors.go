package puzzle

import "errors"

var (
	// ErrInvalidGrid means a grid was requested with a non-positive dimension.
	ErrInvalidGrid = errors.New("invalid grid dimensions")

	// ErrInvalidSettings means generation settings are out of range.
	ErrInvalidSettings = errors.New("invalid puzzle settings")

	// ErrDensityShortfall is returned alongside a usable puzzle when the
	// minimum density could not be reached within the retry budget.
	ErrDensityShortfall = errors.New("could not reach minimum density")

	// ErrLayoutOverflow means a puzzle has more rows than fit on two pages.
	ErrLayoutOverflow = errors.New("puzzle rows exceed two-page layout")

	// ErrOutOfBounds means a cell coordinate lies outside the grid.
	ErrOutOfBounds = errors.New("cell out of bounds")

	// ErrInvalidLetter means a manual edit was not a single A-Z letter.
	ErrInvalidLetter = errors.New("letter must be a single A-Z character")
)
