package indicators

import (
	"fmt"
	"math"

	"FinSignal/internal/domain/models"
)

// ADXResult holds ADX and the directional indicators it is derived from.
type ADXResult struct {
	ADX     models.IndicatorSeries
	PlusDI  models.IndicatorSeries
	MinusDI models.IndicatorSeries
}

// ADX sums true range and directional movement over period, derives +DI/-DI
// and DX, and averages DX over period. DI is undefined while the summed true
// range is zero; DX is zero when both DIs are zero.
func ADX(series models.Series, period int) ADXResult {
	n := len(series)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := series[i].High - series[i-1].High
		down := series[i-1].Low - series[i].Low
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}
	trSum := RollingSum(TrueRange(series), period)
	plusSum := RollingSum(plusDM, period)
	minusSum := RollingSum(minusDM, period)

	plusDI := nanSlice(n)
	minusDI := nanSlice(n)
	dx := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(trSum[i]) || trSum[i] == 0 {
			continue
		}
		plusDI[i] = 100 * plusSum[i] / trSum[i]
		minusDI[i] = 100 * minusSum[i] / trSum[i]
		sum := plusDI[i] + minusDI[i]
		if sum == 0 {
			dx[i] = 0
			continue
		}
		dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
	}
	return ADXResult{
		ADX:     models.IndicatorSeries{Name: fmt.Sprintf("adx_%d", period), Values: RollingMean(dx, period)},
		PlusDI:  models.IndicatorSeries{Name: "plus_di", Values: plusDI},
		MinusDI: models.IndicatorSeries{Name: "minus_di", Values: minusDI},
	}
}
