// Package detectors extracts discrete events (candlestick and chart patterns,
// pivots and legs, divergences, abnormal volume) from bar series.
// All detectors are pure and return empty slices for short input.
package detectors

import (
	"math"

	"FinSignal/internal/domain/models"
)

// Candlesticks classifies every bar against its predecessor. The first match
// in priority order doji, bullish engulfing, bearish engulfing, hammer,
// shooting star wins. Strong flags compare the body to the mean body of the
// emitted rows.
func Candlesticks(series models.Series) []models.CandleFeature {
	if len(series) < 2 {
		return []models.CandleFeature{}
	}
	out := make([]models.CandleFeature, 0, len(series)-1)
	var bodySum float64
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		body := math.Abs(cur.Close - cur.Open)
		bodySum += body
		out = append(out, models.CandleFeature{
			Index:       i,
			Time:        cur.Timestamp,
			Pattern:     classifyCandle(prev, cur),
			UpperShadow: cur.High - math.Max(cur.Open, cur.Close),
			LowerShadow: math.Min(cur.Open, cur.Close) - cur.Low,
			Body:        body,
		})
	}
	meanBody := bodySum / float64(len(out))
	for k := range out {
		bar := series[out[k].Index]
		strong := out[k].Body > meanBody
		out[k].StrongBullish = strong && bar.Close > bar.Open
		out[k].StrongBearish = strong && bar.Close < bar.Open
	}
	return out
}

func classifyCandle(prev, cur models.Bar) models.CandlePattern {
	body := math.Abs(cur.Close - cur.Open)
	rng := cur.High - cur.Low
	upper := cur.High - math.Max(cur.Open, cur.Close)
	lower := math.Min(cur.Open, cur.Close) - cur.Low

	switch {
	case body < 0.1*rng:
		return models.CandleDoji
	case prev.Close < prev.Open && cur.Close > cur.Open && cur.Open < prev.Close && cur.Close > prev.Open:
		return models.CandleBullishEngulfing
	case prev.Close > prev.Open && cur.Close < cur.Open && cur.Open > prev.Close && cur.Close < prev.Open:
		return models.CandleBearishEngulfing
	case body < 0.33*rng && lower >= 2*body && upper < body:
		return models.CandleHammer
	case body < 0.33*rng && upper >= 2*body && lower < body:
		return models.CandleShootingStar
	default:
		return models.CandleNone
	}
}
