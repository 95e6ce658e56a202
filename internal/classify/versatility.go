package classify

import (
	"math"
	"strings"

	"scentlab/internal/core"
	"scentlab/internal/taxonomy"
)

// ScoreVersatility produces a 1-5 heuristic score of how flexibly a fragrance
// wears across situations. Starting from a base of 3, it rewards broad
// category coverage, a fresh opening, and a balanced note pyramid, then
// rounds and clamps.
func ScoreVersatility(top, middle, base []string, categories []core.CategoryTag) int {
	score := 3.0

	score += math.Min(0.5*float64(len(categories)), 2)

	for _, note := range top {
		if taxonomy.ContainsAny(strings.ToLower(note), taxonomy.FreshTopNotes) {
			score += 0.5
			break
		}
	}

	total := len(top) + len(middle) + len(base)
	if total >= 6 && total <= 12 {
		score += 0.5
	}

	rounded := int(math.Round(score))
	if rounded < 1 {
		return 1
	}
	if rounded > 5 {
		return 5
	}
	return rounded
}
