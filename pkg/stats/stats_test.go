package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanMedianStd(t *testing.T) {
	xs := []float64{10, 20, 30, 40, 50}
	assert.Equal(t, 30.0, Mean(xs))
	assert.Equal(t, 30.0, Median(xs))
	assert.InDelta(t, 14.142135, StdDev(xs), 1e-6)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev(nil))
}

func TestMedianEvenLength(t *testing.T) {
	assert.Equal(t, 2.5, Median([]float64{1, 2, 3, 4}))
}

func TestMinMax(t *testing.T) {
	min, max, ok := MinMax([]float64{3, 1, 4, 1, 5})
	assert.True(t, ok)
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 5.0, max)

	_, _, ok = MinMax(nil)
	assert.False(t, ok)
}

func TestPercentileInterpolates(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.75, Percentile(xs, 25))
	assert.Equal(t, 2.5, Percentile(xs, 50))
	assert.Equal(t, 3.25, Percentile(xs, 75))
	assert.Equal(t, 1.0, Percentile(xs, 0))
	assert.Equal(t, 4.0, Percentile(xs, 100))
}

func TestSkewnessKurtosis(t *testing.T) {
	// Symmetric data has zero skew; its excess kurtosis is computable.
	xs := []float64{1, 2, 3, 4, 5}
	skew, ok := Skewness(xs)
	assert.True(t, ok)
	assert.InDelta(t, 0.0, skew, 1e-12)

	kurt, ok := Kurtosis(xs)
	assert.True(t, ok)
	assert.InDelta(t, -1.3, kurt, 1e-12)

	// Fewer than 3 values: undefined, not zeroed.
	_, ok = Skewness([]float64{1, 2})
	assert.False(t, ok)
	_, ok = Kurtosis([]float64{1, 2})
	assert.False(t, ok)

	// Zero variance: undefined.
	_, ok = Skewness([]float64{7, 7, 7})
	assert.False(t, ok)
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	assert.InDelta(t, 1.0, Pearson(x, y), 1e-12)

	inv := []float64{8, 6, 4, 2}
	assert.InDelta(t, -1.0, Pearson(x, inv), 1e-12)

	// Degenerate inputs default to 0.0.
	assert.Equal(t, 0.0, Pearson([]float64{1}, []float64{2}))
	assert.Equal(t, 0.0, Pearson(x, []float64{5, 5, 5, 5}))
	assert.Equal(t, 0.0, Pearson(x, []float64{1, 2}))
}

func TestStrideSampleIndexes(t *testing.T) {
	// n <= bound: every value selected.
	idx := StrideSampleIndexes(5, 100)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, idx)

	// n > bound: every k-th value, truncated to the bound.
	idx = StrideSampleIndexes(1000, 100)
	assert.Len(t, idx, 100)
	assert.Equal(t, 0, idx[0])
	assert.Equal(t, 10, idx[1])
	assert.Equal(t, 990, idx[99])

	// Non-integral stride still respects the bound.
	idx = StrideSampleIndexes(250, 100)
	assert.LessOrEqual(t, len(idx), 100)

	assert.Nil(t, StrideSampleIndexes(0, 100))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 25.0, Round2(25.0))
	assert.Equal(t, 33.33, Round2(100.0/3.0))
	assert.Equal(t, 66.67, Round2(200.0/3.0))
}
