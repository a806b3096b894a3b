package metrics

import (
	"math"
	"slices"
)

// Percentile returns the nearest-rank p-th percentile of values: the
// element at index ceil(p/100*n)-1 of the ascending sort, clamped to the
// valid range. It always returns an actually observed value. An empty
// input yields zero; callers are expected to have checked for data first.
func Percentile(values []int, p int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	slices.Sort(sorted)

	idx := int(math.Ceil(float64(p)/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Mean returns the arithmetic mean of values, or zero for an empty input.
func Mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
