package puzzle

import "math"

// GridSize returns the smallest near-square grid whose area holds letterCount
// letters at maxDensity, within maxRows x maxColumns. When not square, extra
// rows are preferred over extra columns. Targets that do not fit fall back to
// the maximum grid, which will then be denser than requested.
func GridSize(letterCount int, maxDensity float64, maxRows, maxColumns int) (rows, columns int) {
	if letterCount < 0 {
		letterCount = 0
	}
	target := int(math.Ceil(float64(letterCount) / maxDensity))
	if target < 1 {
		target = 1
	}
	if target > maxRows*maxColumns {
		return maxRows, maxColumns
	}

	side := math.Sqrt(float64(target))
	if side == math.Trunc(side) && int(side) <= maxRows && int(side) <= maxColumns {
		return int(side), int(side)
	}

	columns = min(int(math.Floor(side)), maxColumns)
	if columns < 1 {
		columns = 1
	}
	rows = columns
	for rows*columns < target {
		rows++
		if rows > maxRows {
			return maxRows, maxColumns
		}
	}
	if rows > maxRows {
		return maxRows, maxColumns
	}
	return rows, columns
}
