package core

import "github.com/pkg/errors"

// ErrNoSamples is returned when an estimate is requested over zero distances.
var ErrNoSamples = errors.New("no samples to estimate from")

// Count returns how many distances fall inside the unit quarter-disc.
func Count(distances []Distance) int {
	inside := 0
	for _, d := range distances {
		if Inside(d) {
			inside++
		}
	}
	return inside
}

// Ratio converts an inside count over a total into a pi estimate.
func Ratio(inside, total int) float64 {
	return float64(4*inside) / float64(total)
}

// Estimate folds distances into 4 * inside / len(distances).
//
// The result depends only on the multiset of distances, never on their order.
func Estimate(distances []Distance) (float64, error) {
	if len(distances) == 0 {
		return 0, ErrNoSamples
	}
	return Ratio(Count(distances), len(distances)), nil
}
