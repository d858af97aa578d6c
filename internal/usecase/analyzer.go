// Package usecase wires the pure analysis services into the multi-timeframe
// pipeline, the signal fusion step, the trade lifecycle and the live monitor.
package usecase

import (
	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/services/detectors"
	"FinSignal/internal/services/features"
	"FinSignal/internal/services/indicators"
	"FinSignal/internal/services/trend"
)

// AnalyzerConfig gathers the thresholds of every detector.
type AnalyzerConfig struct {
	Indicators       indicators.Config
	Chart            detectors.ChartConfig
	PivotLeft        int
	PivotRight       int
	DivergenceWindow int
	Whale            detectors.WhaleConfig
	Trend            trend.Config
}

// DefaultAnalyzerConfig returns the documented defaults.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		Indicators:       indicators.DefaultConfig(),
		Chart:            detectors.DefaultChartConfig(),
		PivotLeft:        3,
		PivotRight:       3,
		DivergenceWindow: detectors.DefaultDivergenceWindow,
		Whale:            detectors.DefaultWhaleConfig(),
		Trend:            trend.DefaultConfig(),
	}
}

// SeriesAnalyzer runs the detectors over one already prepared series.
type SeriesAnalyzer struct {
	cfg AnalyzerConfig
}

func NewSeriesAnalyzer(cfg AnalyzerConfig) *SeriesAnalyzer {
	return &SeriesAnalyzer{cfg: cfg}
}

// Analyze always runs pivots, legs, chart patterns, whale detection and the
// model feature extraction. With full set it adds candlesticks, the indicator
// bundle, trend and divergences; divergences read RSI and MACD from the
// bundle, so indicators run first.
func (a *SeriesAnalyzer) Analyze(tf string, series models.Series, full bool) *models.TimeframeBundle {
	b := &models.TimeframeBundle{Timeframe: tf, Bars: len(series)}
	if last, ok := series.Last(); ok {
		b.LastClose = last.Close
		b.LastTime = last.Timestamp
	}

	b.Pivots = detectors.Pivots(series, a.cfg.PivotLeft, a.cfg.PivotRight)
	b.Legs = detectors.Legs(b.Pivots)
	b.Patterns = detectors.ChartPatterns(series, a.cfg.Chart)
	b.Whale = detectors.Whale(series, a.cfg.Whale)
	b.Features = features.Extract(series, domrepo.Timeframe(tf))
	b.Closes = series.Closes()

	if !full {
		return b
	}
	b.Candles = detectors.Candlesticks(series)
	b.Indicators = indicators.Compute(series, a.cfg.Indicators)
	tr := trend.Classify(series, a.cfg.Trend)
	b.Trend = &tr.Summary
	b.Divergences = detectors.Divergences(series, b.Indicators[indicators.KeyRSI], b.Indicators[indicators.KeyMACD], a.cfg.DivergenceWindow)
	return b
}
