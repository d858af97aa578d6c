// Package trend labels each bar with a market phase from EMA, SMA and ADX.
package trend

import (
	"FinSignal/internal/domain/models"
	"FinSignal/internal/services/indicators"
)

// Config holds classifier periods and ADX thresholds.
type Config struct {
	EMAPeriod int
	SMAPeriod int
	ADXPeriod int
	TrendADX  float64 // ADX above this confirms a trend
	RangeADX  float64 // ADX below this means range
}

// DefaultConfig returns EMA20, SMA50, ADX14 with thresholds 25 and 20.
func DefaultConfig() Config {
	return Config{EMAPeriod: 20, SMAPeriod: 50, ADXPeriod: 14, TrendADX: 25, RangeADX: 20}
}

// Result is the per-bar phase plus the latest indicator readings.
type Result struct {
	Phases  []models.TrendPhase
	Summary models.TrendSummary
	EMA     models.IndicatorSeries
	SMA     models.IndicatorSeries
	ADX     models.IndicatorSeries
}

// ClassifyBar applies the phase rules with the default thresholds.
func ClassifyBar(close, ema, sma, adx float64) models.TrendPhase {
	return DefaultConfig().classify(close, ema, sma, adx)
}

// Undefined inputs make every comparison false, so they fall through to neutral.
func (c Config) classify(close, ema, sma, adx float64) models.TrendPhase {
	switch {
	case close > ema && ema > sma && adx > c.TrendADX:
		return models.PhaseUptrend
	case close < ema && ema < sma && adx > c.TrendADX:
		return models.PhaseDowntrend
	case adx < c.RangeADX:
		return models.PhaseRange
	default:
		return models.PhaseNeutral
	}
}

// Classify labels every bar. An empty series reports a neutral current phase.
func Classify(series models.Series, cfg Config) Result {
	closes := series.Closes()
	ema := indicators.EMA(closes, cfg.EMAPeriod)
	sma := indicators.SMA(closes, cfg.SMAPeriod)
	adx := indicators.ADX(series, cfg.ADXPeriod).ADX

	phases := make([]models.TrendPhase, len(series))
	for i := range series {
		phases[i] = cfg.classify(closes[i], ema.Values[i], sma.Values[i], adx.Values[i])
	}
	res := Result{
		Phases:  phases,
		Summary: models.TrendSummary{Current: models.PhaseNeutral},
		EMA:     ema,
		SMA:     sma,
		ADX:     adx,
	}
	if len(phases) > 0 {
		res.Summary.Current = phases[len(phases)-1]
	}
	res.Summary.LastADX = lastDefined(adx)
	res.Summary.LastEMA = lastDefined(ema)
	res.Summary.LastSMA = lastDefined(sma)
	return res
}

func lastDefined(s models.IndicatorSeries) *float64 {
	if v, ok := s.Last(); ok {
		return models.Float(v)
	}
	return nil
}
