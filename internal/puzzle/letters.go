package puzzle

import (
	"math/rand/v2"
	"sort"
)

// letterWeights are English letter frequencies in percent.
var letterWeights = [...]struct {
	letter string
	weight float64
}{
	{"E", 12.7}, {"T", 9.1}, {"A", 8.2}, {"O", 7.5}, {"I", 7.0}, {"N", 6.7},
	{"S", 6.3}, {"H", 6.1}, {"R", 6.0}, {"D", 4.3}, {"L", 4.0}, {"C", 2.8},
	{"U", 2.8}, {"M", 2.4}, {"W", 2.4}, {"F", 2.2}, {"G", 2.0}, {"Y", 2.0},
	{"P", 1.9}, {"B", 1.5}, {"V", 0.98}, {"K", 0.77}, {"J", 0.16}, {"X", 0.15},
	{"Q", 0.12}, {"Z", 0.074},
}

// cumulativeWeights[i] is the running total up to and including letter i.
var cumulativeWeights = func() []float64 {
	out := make([]float64, len(letterWeights))
	total := 0.0
	for i, lw := range letterWeights {
		total += lw.weight
		out[i] = total
	}
	return out
}()

// LetterWeight returns the relative frequency used for filler letter l, as a
// fraction of the whole table.
func LetterWeight(l string) float64 {
	total := cumulativeWeights[len(cumulativeWeights)-1]
	for _, lw := range letterWeights {
		if lw.letter == l {
			return lw.weight / total
		}
	}
	return 0
}

func randomLetter(rng *rand.Rand) string {
	total := cumulativeWeights[len(cumulativeWeights)-1]
	x := rng.Float64() * total
	i := sort.SearchFloat64s(cumulativeWeights, x)
	if i >= len(letterWeights) {
		i = len(letterWeights) - 1
	}
	return letterWeights[i].letter
}
