// Package stats provides the deterministic statistics primitives shared by
// the embedding creator and the EDA analysis engine. All functions are pure:
// identical input always yields identical output, with no randomness and no
// clock access.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of xs.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// MinMax returns the minimum and maximum of xs. ok is false for an empty
// slice.
func MinMax(xs []float64) (min, max float64, ok bool) {
	if len(xs) == 0 {
		return 0, 0, false
	}
	min, max = xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max, true
}

// Percentile returns the q-th percentile (0 <= q <= 100) of xs using linear
// interpolation between closest ranks, matching the default numpy/pandas
// behavior the embedding metadata was computed with.
func Percentile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := q / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Median returns the 50th percentile of xs.
func Median(xs []float64) float64 {
	return Percentile(xs, 50)
}

// Skewness returns the population moment skewness of xs. ok is false when
// fewer than 3 values exist or the variance is zero, in which case the
// statistic is undefined and callers must omit it rather than zero it.
func Skewness(xs []float64) (float64, bool) {
	if len(xs) < 3 {
		return 0, false
	}
	m := Mean(xs)
	var m2, m3 float64
	for _, x := range xs {
		d := x - m
		m2 += d * d
		m3 += d * d * d
	}
	n := float64(len(xs))
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return 0, false
	}
	return m3 / math.Pow(m2, 1.5), true
}

// Kurtosis returns the population excess kurtosis of xs. ok is false when
// fewer than 3 values exist or the variance is zero.
func Kurtosis(xs []float64) (float64, bool) {
	if len(xs) < 3 {
		return 0, false
	}
	m := Mean(xs)
	var m2, m4 float64
	for _, x := range xs {
		d := x - m
		d2 := d * d
		m2 += d2
		m4 += d2 * d2
	}
	n := float64(len(xs))
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return 0, false
	}
	return m4/(m2*m2) - 3, true
}

// Pearson returns the Pearson correlation coefficient of the aligned pairs
// (xs[i], ys[i]). Fewer than 2 pairs, mismatched lengths, or zero variance
// in either series degenerate to 0.0 rather than an error.
func Pearson(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0
	}
	mx := Mean(xs)
	my := Mean(ys)
	var cov, vx, vy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// SampleStride returns the stride k used to select up to bound values from
// a column of length n: s = min(bound, n), k = max(1, n / s).
func SampleStride(n, bound int) int {
	if n <= 0 || bound <= 0 {
		return 1
	}
	s := bound
	if n < s {
		s = n
	}
	k := n / s
	if k < 1 {
		k = 1
	}
	return k
}

// StrideSampleIndexes returns the indexes of a fixed-stride representative
// sample of up to bound elements over a column of length n: every k-th
// index in natural order, truncated to the sample size.
func StrideSampleIndexes(n, bound int) []int {
	if n <= 0 || bound <= 0 {
		return nil
	}
	s := bound
	if n < s {
		s = n
	}
	k := SampleStride(n, bound)
	idx := make([]int, 0, s)
	for i := 0; i < n && len(idx) < s; i += k {
		idx = append(idx, i)
	}
	return idx
}

// Round2 rounds x to 2 decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
