package indicators

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Epsilon guards ratio denominators.
const Epsilon = 1e-9

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func hasNaN(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}

// rolling applies f to every full trailing window. Windows containing an
// undefined value yield NaN.
func rolling(xs []float64, period int, f func(w []float64) float64) []float64 {
	out := nanSlice(len(xs))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(xs); i++ {
		w := xs[i-period+1 : i+1]
		if hasNaN(w) {
			continue
		}
		out[i] = f(w)
	}
	return out
}

// RollingMean is the simple trailing mean.
func RollingMean(xs []float64, period int) []float64 {
	return rolling(xs, period, func(w []float64) float64 { return stat.Mean(w, nil) })
}

// RollingStd is the trailing sample standard deviation. Undefined for period < 2.
func RollingStd(xs []float64, period int) []float64 {
	if period < 2 {
		return nanSlice(len(xs))
	}
	return rolling(xs, period, func(w []float64) float64 { return stat.StdDev(w, nil) })
}

// RollingSum is the trailing sum.
func RollingSum(xs []float64, period int) []float64 {
	return rolling(xs, period, floats.Sum)
}

// RollingMax is the trailing maximum.
func RollingMax(xs []float64, period int) []float64 {
	return rolling(xs, period, floats.Max)
}

// RollingMin is the trailing minimum.
func RollingMin(xs []float64, period int) []float64 {
	return rolling(xs, period, floats.Min)
}
