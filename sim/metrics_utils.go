// sim/metrics_utils.go
package sim

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

type IntOrFloat64 interface {
	int | int64 | float64
}

func toFloat64s[T IntOrFloat64](data []T) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// CalculatePercentile returns the p-th percentile (0-100) of data using
// linear interpolation between closest ranks. Returns 0 for empty data.
func CalculatePercentile[T IntOrFloat64](data []T, p float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	sorted := toFloat64s(data)
	sort.Float64s(sorted)
	return stat.Quantile(math.Max(0, math.Min(1, p/100.0)), stat.LinInterp, sorted, nil)
}

// CalculateMean is a util function that calculates the mean of a data list.
func CalculateMean[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}
	return stat.Mean(toFloat64s(numbers), nil)
}

// CalculateStdDev returns the sample standard deviation of data, or 0 when
// fewer than two samples exist.
func CalculateStdDev[T IntOrFloat64](data []T) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.StdDev(toFloat64s(data), nil)
}
