package models

import "time"

// PivotKind is either a swing high or a swing low.
type PivotKind string

const (
	PivotHigh PivotKind = "high"
	PivotLow  PivotKind = "low"
)

// Pivot is a local extremum confirmed by a symmetric window of bars.
type Pivot struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time"`
	Kind  PivotKind `json:"kind"`
	Price float64   `json:"price"`
}

// Direction of a leg.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Leg is the price move between two consecutive pivots.
type Leg struct {
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
	StartPrice float64   `json:"start_price"`
	EndPrice   float64   `json:"end_price"`
	Kind       string    `json:"kind"` // e.g. "high_to_low"
	Direction  Direction `json:"direction"`
	Length     float64   `json:"length"`
}

// CandlePattern labels a single bar relative to its predecessor.
type CandlePattern string

const (
	CandleDoji             CandlePattern = "doji"
	CandleBullishEngulfing CandlePattern = "bullish_engulfing"
	CandleBearishEngulfing CandlePattern = "bearish_engulfing"
	CandleHammer           CandlePattern = "hammer"
	CandleShootingStar     CandlePattern = "shooting_star"
	CandleNone             CandlePattern = "none"
)

// CandleFeature is emitted for every bar that has a predecessor.
type CandleFeature struct {
	Index         int           `json:"index"`
	Time          time.Time     `json:"time"`
	Pattern       CandlePattern `json:"pattern"`
	UpperShadow   float64       `json:"upper_shadow"`
	LowerShadow   float64       `json:"lower_shadow"`
	Body          float64       `json:"body"`
	StrongBullish bool          `json:"strong_bullish"`
	StrongBearish bool          `json:"strong_bearish"`
}

// PatternKind names a chart pattern.
type PatternKind string

const (
	PatternDoubleTop          PatternKind = "double_top"
	PatternDoubleBottom       PatternKind = "double_bottom"
	PatternHeadShoulders      PatternKind = "head_shoulders"
	PatternTriangleAscending  PatternKind = "triangle_ascending"
	PatternTriangleDescending PatternKind = "triangle_descending"
)

// PatternKinds lists chart patterns in reporting order.
var PatternKinds = []PatternKind{
	PatternDoubleTop,
	PatternDoubleBottom,
	PatternHeadShoulders,
	PatternTriangleAscending,
	PatternTriangleDescending,
}

// PatternLevels holds the prices involved in a pattern. Unused levels are nil.
type PatternLevels struct {
	Price      *float64 `json:"price,omitempty"`
	Left       *float64 `json:"left,omitempty"`
	Right      *float64 `json:"right,omitempty"`
	Head       *float64 `json:"head,omitempty"`
	Support    *float64 `json:"support,omitempty"`
	Resistance *float64 `json:"resistance,omitempty"`
}

// PatternHit is one detected chart pattern.
type PatternHit struct {
	Index  int           `json:"index"`
	Time   time.Time     `json:"time"`
	Kind   PatternKind   `json:"kind"`
	Levels PatternLevels `json:"levels"`
}

// DivergenceKind separates reversal from continuation divergences.
type DivergenceKind string

const (
	DivergenceRegular DivergenceKind = "regular"
	DivergenceHidden  DivergenceKind = "hidden"
)

// Bias is the trading implication of an event.
type Bias string

const (
	Bullish Bias = "bullish"
	Bearish Bias = "bearish"
)

// DivergenceEvent is a price/indicator direction mismatch ending at Index.
type DivergenceEvent struct {
	Index     int            `json:"index"`
	Time      time.Time      `json:"time"`
	Reference string         `json:"reference"`
	Kind      DivergenceKind `json:"kind"`
	Type      Bias           `json:"type"`
}

// WhaleKind names an abnormal-volume event.
type WhaleKind string

const (
	WhaleCandle WhaleKind = "whale_candle"
	Spoofing    WhaleKind = "spoofing"
	WashTrading WhaleKind = "wash_trading"
)

// WhaleKinds lists whale event kinds in reporting order.
var WhaleKinds = []WhaleKind{WhaleCandle, Spoofing, WashTrading}

// WhaleEvent is an abnormal-volume bar. Metrics not relevant to Kind are zero.
type WhaleEvent struct {
	Index      int       `json:"index"`
	Time       time.Time `json:"time"`
	Kind       WhaleKind `json:"kind"`
	Volume     float64   `json:"volume"`
	MeanVolume float64   `json:"mean_volume"`
	PriceJump  float64   `json:"price_jump,omitempty"`
	PriceStd   float64   `json:"price_std,omitempty"`
	Body       float64   `json:"body,omitempty"`
}

// TrendPhase classifies a bar.
type TrendPhase string

const (
	PhaseUptrend   TrendPhase = "uptrend"
	PhaseDowntrend TrendPhase = "downtrend"
	PhaseRange     TrendPhase = "range"
	PhaseNeutral   TrendPhase = "neutral"
)
