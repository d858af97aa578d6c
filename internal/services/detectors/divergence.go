package detectors

import (
	"math"

	"FinSignal/internal/domain/models"
)

// Divergence result keys.
const (
	KeyRSIRegular  = "rsi_regular"
	KeyRSIHidden   = "rsi_hidden"
	KeyMACDRegular = "macd_regular"
	KeyMACDHidden  = "macd_hidden"
)

// DefaultDivergenceWindow is the trailing window length.
const DefaultDivergenceWindow = 20

// Divergence compares the direction of closes and ind over the window of bars
// [i-window, i). Regular divergence is bearish when price rises while the
// indicator does not, bullish when price falls while the indicator does not.
// Hidden divergence swaps the bias. Only one branch can fire per index, and
// windows where the indicator is undefined are skipped.
func Divergence(series models.Series, ind models.IndicatorSeries, reference string, kind models.DivergenceKind, window int) []models.DivergenceEvent {
	out := []models.DivergenceEvent{}
	if window < 2 || len(ind.Values) != len(series) {
		return out
	}
	closes := series.Closes()
	rising, falling := models.Bearish, models.Bullish
	if kind == models.DivergenceHidden {
		rising, falling = models.Bullish, models.Bearish
	}
	for i := window; i < len(series); i++ {
		pw, iw := closes[i-window:i], ind.Values[i-window:i]
		if anyUndefined(iw) {
			continue
		}
		var bias models.Bias
		switch {
		case nonDecreasing(pw) && !nonDecreasing(iw):
			bias = rising
		case nonIncreasing(pw) && !nonIncreasing(iw):
			bias = falling
		default:
			continue
		}
		out = append(out, models.DivergenceEvent{
			Index:     i,
			Time:      series[i].Timestamp,
			Reference: reference,
			Kind:      kind,
			Type:      bias,
		})
	}
	return out
}

// Divergences runs regular and hidden detection against RSI and the MACD line.
func Divergences(series models.Series, rsi, macd models.IndicatorSeries, window int) map[string][]models.DivergenceEvent {
	return map[string][]models.DivergenceEvent{
		KeyRSIRegular:  Divergence(series, rsi, "rsi", models.DivergenceRegular, window),
		KeyRSIHidden:   Divergence(series, rsi, "rsi", models.DivergenceHidden, window),
		KeyMACDRegular: Divergence(series, macd, "macd", models.DivergenceRegular, window),
		KeyMACDHidden:  Divergence(series, macd, "macd", models.DivergenceHidden, window),
	}
}

func anyUndefined(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}
