// Package stats computes descriptive order statistics over numeric samples.
package stats

import (
	"math"
	"sort"
)

// Summary holds the five-number summary of a sample. When N is zero the
// sample was empty and the statistic fields carry no meaning; callers must
// check HasData before reading them, and renderers must surface "no data"
// rather than zeros.
type Summary struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	N      int
}

// HasData reports whether the summary was computed from a non-empty sample.
func (s Summary) HasData() bool {
	return s.N > 0
}

// Compute returns the five-number summary of the sample using linearly
// interpolated percentiles. The input slice is not mutated and its order is
// irrelevant. Non-finite values are skipped.
func Compute(sample []float64) Summary {
	sorted := make([]float64, 0, len(sample))
	for _, v := range sample {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sorted = append(sorted, v)
	}
	if len(sorted) == 0 {
		return Summary{}
	}
	sort.Float64s(sorted)

	return Summary{
		Min:    sorted[0],
		Q1:     percentileSorted(sorted, 25),
		Median: percentileSorted(sorted, 50),
		Q3:     percentileSorted(sorted, 75),
		Max:    sorted[len(sorted)-1],
		N:      len(sorted),
	}
}

// Percentile returns the p-th percentile (0..100) of the sample, using
// linear interpolation between the closest ranks: the continuous rank is
// (p/100)*(n-1) and the bracketing samples are blended by its fractional
// part. This is deliberately NOT the nearest-rank or midpoint definition;
// those produce different values and must not be swapped in. The second
// return is false for an empty sample.
func Percentile(sample []float64, p float64) (float64, bool) {
	if len(sample) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p), true
}

// percentileSorted expects a non-empty ascending sample.
func percentileSorted(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	index := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	return sorted[lower] + (sorted[upper]-sorted[lower])*(index-float64(lower))
}

// Mean returns the arithmetic mean of the sample. The second return is false
// for an empty sample, so an empty bucket stays distinguishable from zero.
func Mean(sample []float64) (float64, bool) {
	if len(sample) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range sample {
		sum += v
	}
	return sum / float64(len(sample)), true
}
