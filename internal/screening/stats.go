package screening

import (
	"math"
	"sort"

	"github.com/maggielii/heartwaves/internal/model"
)

// minStatsSamples is the hard floor below which a robust summary does not
// exist. Not configurable.
const minStatsSamples = 5

// ComputeRobustStats summarizes a series with outlier-resistant order
// statistics. Returns nil when fewer than five finite values are supplied.
func ComputeRobustStats(values []float64) *model.RobustStats {
	vals := finiteSorted(values)
	if len(vals) < minStatsSamples {
		return nil
	}

	med := Percentile(vals, 50)
	q1 := Percentile(vals, 25)
	q3 := Percentile(vals, 75)
	return &model.RobustStats{
		N:      len(vals),
		Median: med,
		Q1:     q1,
		Q3:     q3,
		IQR:    math.Abs(q3 - q1),
	}
}

// Percentile computes percentile p over an already-sorted slice using linear
// interpolation between order statistics: rank = p/100*(n-1), interpolating
// by the fractional part when the rank falls between two indices.
// The slice must be non-empty.
func Percentile(sorted []float64, p float64) float64 {
	rank := p / 100.0 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	weight := rank - float64(lo)
	return sorted[lo]*(1.0-weight) + sorted[hi]*weight
}

// Mean returns the arithmetic mean; ok is false for an empty slice.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func finiteSorted(values []float64) []float64 {
	vals := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	sort.Float64s(vals)
	return vals
}
