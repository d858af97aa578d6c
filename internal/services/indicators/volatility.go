package indicators

import (
	"fmt"
	"math"

	"FinSignal/internal/domain/models"
)

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|). The first
// bar has no previous close and uses high-low.
func TrueRange(series models.Series) []float64 {
	out := make([]float64, len(series))
	for i, b := range series {
		tr := b.High - b.Low
		if i > 0 {
			pc := series[i-1].Close
			tr = math.Max(tr, math.Max(math.Abs(b.High-pc), math.Abs(b.Low-pc)))
		}
		out[i] = tr
	}
	return out
}

// ATR is the simple rolling mean of the true range.
func ATR(series models.Series, period int) models.IndicatorSeries {
	return models.IndicatorSeries{Name: fmt.Sprintf("atr_%d", period), Values: RollingMean(TrueRange(series), period)}
}

// BollingerResult holds the three bands.
type BollingerResult struct {
	Upper  models.IndicatorSeries
	Middle models.IndicatorSeries
	Lower  models.IndicatorSeries
}

// Bollinger computes rolling mean ± nStd rolling sample std.
func Bollinger(closes []float64, period int, nStd float64) BollingerResult {
	mid := RollingMean(closes, period)
	std := RollingStd(closes, period)
	upper := nanSlice(len(closes))
	lower := nanSlice(len(closes))
	for i := range closes {
		if math.IsNaN(mid[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = mid[i] + nStd*std[i]
		lower[i] = mid[i] - nStd*std[i]
	}
	return BollingerResult{
		Upper:  models.IndicatorSeries{Name: "bb_upper", Values: upper},
		Middle: models.IndicatorSeries{Name: "bb_middle", Values: mid},
		Lower:  models.IndicatorSeries{Name: "bb_lower", Values: lower},
	}
}
