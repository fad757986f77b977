package search

import "math"

// Normalize divides every score by the batch maximum so the top score becomes 1.
// When the maximum is 0 every normalized value is 0. Negative and NaN inputs count as 0.
func Normalize(scores []float64) []float64 {
	out := make([]float64, len(scores))
	var maxScore float64
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore == 0 || math.IsInf(maxScore, 1) {
		return out
	}
	for i, s := range scores {
		if s > 0 {
			out[i] = s / maxScore
		}
	}
	return out
}
