// Package stats provides the descriptive statistics behind the contribution
// box plot. Quartiles use linear interpolation between closest ranks, and
// whiskers follow the Tukey convention: the most extreme values within 1.5
// IQR of the quartiles, with everything beyond reported as outliers.
package stats

import (
	"math"
	"sort"
)

// Summary is a five-number summary plus outliers for one group
type Summary struct {
	Count    int       `json:"count"`
	Mean     float64   `json:"mean"`
	Min      float64   `json:"min"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	Max      float64   `json:"max"`
	Outliers []float64 `json:"outliers"`
}

// Describe computes the summary for a set of values. The second return is
// false when there are no values.
func Describe(values []float64) (Summary, bool) {
	if len(values) == 0 {
		return Summary{}, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 0.25)
	median := percentile(sorted, 0.5)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1

	lowFence := q1 - 1.5*iqr
	highFence := q3 + 1.5*iqr

	// Whiskers stop at the most extreme values inside the fences
	whiskerLow := sorted[len(sorted)-1]
	whiskerHigh := sorted[0]
	outliers := []float64{}
	sum := 0.0

	for _, v := range sorted {
		sum += v
		if v < lowFence || v > highFence {
			outliers = append(outliers, v)
			continue
		}
		if v < whiskerLow {
			whiskerLow = v
		}
		if v > whiskerHigh {
			whiskerHigh = v
		}
	}

	// All values outliers can only happen with iqr == 0 and is impossible
	// with the fences including the quartiles, but guard the degenerate case
	if len(outliers) == len(sorted) {
		whiskerLow = sorted[0]
		whiskerHigh = sorted[len(sorted)-1]
		outliers = []float64{}
	}

	return Summary{
		Count:    len(sorted),
		Mean:     sum / float64(len(sorted)),
		Min:      whiskerLow,
		Q1:       q1,
		Median:   median,
		Q3:       q3,
		Max:      whiskerHigh,
		Outliers: outliers,
	}, true
}

// percentile interpolates linearly between closest ranks. The input must be
// sorted ascending and non-empty.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
