package models

import "time"

// TimeframeBundle is the detector output for one (symbol, timeframe) pair.
// Full-analysis fields are only populated when the orchestrator runs in full mode.
type TimeframeBundle struct {
	Timeframe string    `json:"timeframe"`
	Bars      int       `json:"bars"`
	LastClose float64   `json:"last_close"`
	LastTime  time.Time `json:"last_time"`

	Pivots   []Pivot                      `json:"pivots"`
	Legs     []Leg                        `json:"legs"`
	Patterns map[PatternKind][]PatternHit `json:"patterns"`
	Whale    map[WhaleKind][]WhaleEvent   `json:"whale"`

	Candles     []CandleFeature              `json:"candles,omitempty"`
	Indicators  map[string]IndicatorSeries   `json:"indicators,omitempty"`
	Trend       *TrendSummary                `json:"trend,omitempty"`
	Divergences map[string][]DivergenceEvent `json:"divergences,omitempty"`

	// Features is the model input vector; Closes feeds the model scorer.
	Features map[string]float64 `json:"features,omitempty"`
	Closes   []float64          `json:"-"`
}

// TrendSummary is the trend classifier output for the latest bar.
type TrendSummary struct {
	Current TrendPhase `json:"current"`
	LastADX *float64   `json:"last_adx"`
	LastEMA *float64   `json:"last_ema20"`
	LastSMA *float64   `json:"last_sma50"`
}

// MultiTimeframeResult collects bundles per timeframe. Failed timeframes are
// listed in Errors and absent from Bundles.
type MultiTimeframeResult struct {
	Symbol     string                      `json:"symbol"`
	Timeframes []string                    `json:"timeframes"`
	Timestamp  time.Time                   `json:"timestamp"`
	Bundles    map[string]*TimeframeBundle `json:"bundles"`
	Errors     map[string]string           `json:"errors,omitempty"`
}

// Primary returns the bundle of the first requested timeframe that succeeded.
func (r *MultiTimeframeResult) Primary() (*TimeframeBundle, bool) {
	for _, tf := range r.Timeframes {
		if b, ok := r.Bundles[tf]; ok {
			return b, true
		}
	}
	return nil, false
}
