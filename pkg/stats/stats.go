// Package stats provides the numeric helpers used to summarize detection
// delay distributions.
package stats

import (
	"cmp"
	"math"
	"slices"
)

// Well-known percentile thresholds.
const (
	PercentileMedian = 0.5
	PercentileP95    = 0.95
)

// Integer is the set of integer types summarized by this package.
type Integer interface {
	~int | ~int32 | ~int64
}

// Mean returns the arithmetic mean of values.
// Returns 0 for an empty slice.
func Mean[T Integer](values []T) float64 {
	if len(values) == 0 {
		return 0
	}

	return float64(Sum(values)) / float64(len(values))
}

// Percentile returns the p-th percentile of values using linear interpolation.
// p must be in [0, 1]. The input slice is not modified.
// Returns 0 for an empty slice.
func Percentile[T Integer](values []T, p float64) float64 {
	count := len(values)
	if count == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	idx := Clamp(p, 0, 1) * float64(count-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))

	if lower == upper || upper >= count {
		return float64(sorted[lower])
	}

	frac := idx - float64(lower)

	return float64(sorted[lower])*(1-frac) + float64(sorted[upper])*frac
}

// Median returns the 50th percentile of values.
func Median[T Integer](values []T) float64 {
	return Percentile(values, PercentileMedian)
}

// Clamp restricts val to the range [lo, hi].
func Clamp[T cmp.Ordered](val, lo, hi T) T {
	return max(lo, min(val, hi))
}

// Min returns the smallest element in values, or the zero value when empty.
func Min[T cmp.Ordered](values []T) T {
	if len(values) == 0 {
		var zero T

		return zero
	}

	return slices.Min(values)
}

// Max returns the largest element in values, or the zero value when empty.
func Max[T cmp.Ordered](values []T) T {
	if len(values) == 0 {
		var zero T

		return zero
	}

	return slices.Max(values)
}

// Sum returns the sum of all elements in values.
func Sum[T Integer](values []T) T {
	var result T

	for _, v := range values {
		result += v
	}

	return result
}

// Summary describes a delay distribution.
type Summary struct {
	Count  int     `json:"count" yaml:"count"`
	Min    int64   `json:"min" yaml:"min"`
	Median float64 `json:"median" yaml:"median"`
	P95    float64 `json:"p95" yaml:"p95"`
	Max    int64   `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
}

// Summarize computes the Summary of values. An empty input yields a zero
// Summary.
func Summarize(values []int64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	return Summary{
		Count:  len(values),
		Min:    Min(values),
		Median: Median(values),
		P95:    Percentile(values, PercentileP95),
		Max:    Max(values),
		Mean:   Mean(values),
	}
}
