// Package indicators computes technical indicator series over bar series.
// Every function is pure; positions without enough lookback are NaN.
package indicators

import (
	"fmt"
	"math"

	"FinSignal/internal/domain/models"
)

// SMA is the simple moving average over period.
func SMA(values []float64, period int) models.IndicatorSeries {
	return models.IndicatorSeries{Name: fmt.Sprintf("sma_%d", period), Values: RollingMean(values, period)}
}

// EMA is the recursive exponential mean with alpha 2/(period+1), seeded by
// the first defined value.
func EMA(values []float64, period int) models.IndicatorSeries {
	return models.IndicatorSeries{Name: fmt.Sprintf("ema_%d", period), Values: ema(values, period)}
}

func ema(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	prev := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = prev
			continue
		}
		if math.IsNaN(prev) {
			prev = v
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}
