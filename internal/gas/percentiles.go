// Package gas computes rank-based summaries of observed gas prices.
package gas

import (
	"sort"

	"mev-sentinel/internal/domain"
)

// Percentiles returns the p25/p50/p75/p90 buckets of an unordered gas-price
// sample using nearest-rank indexing (floor(n*p), clamped to the last
// element). An empty sample yields the fixed default quadruple.
func Percentiles(sample []float64) domain.GasPercentiles {
	n := len(sample)
	if n == 0 {
		return domain.DefaultGasPercentiles()
	}

	sorted := make([]float64, n)
	copy(sorted, sample)
	sort.Float64s(sorted)

	rank := func(p float64) float64 {
		i := int(float64(n) * p)
		if i >= n {
			i = n - 1
		}
		return sorted[i]
	}

	return domain.GasPercentiles{
		P25: rank(0.25),
		P50: rank(0.50),
		P75: rank(0.75),
		P90: rank(0.90),
	}
}
