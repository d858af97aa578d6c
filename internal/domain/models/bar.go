package models

import (
	"encoding/json"
	"math"
	"time"
)

// Bar is one OHLCV observation for a fixed time bucket.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Series is ordered by strictly increasing timestamp.
type Series []Bar

// Closes returns the close column.
func (s Series) Closes() []float64 { return s.column(func(b Bar) float64 { return b.Close }) }

// Highs returns the high column.
func (s Series) Highs() []float64 { return s.column(func(b Bar) float64 { return b.High }) }

// Lows returns the low column.
func (s Series) Lows() []float64 { return s.column(func(b Bar) float64 { return b.Low }) }

// Opens returns the open column.
func (s Series) Opens() []float64 { return s.column(func(b Bar) float64 { return b.Open }) }

// Volumes returns the volume column.
func (s Series) Volumes() []float64 { return s.column(func(b Bar) float64 { return b.Volume }) }

func (s Series) column(f func(Bar) float64) []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = f(b)
	}
	return out
}

// Last returns the most recent bar.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Clone returns an independent copy.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// RawBar is an input row before normalization. A nil field means the column is absent.
type RawBar struct {
	Timestamp *int64   `json:"timestamp"`
	Open      *float64 `json:"open"`
	High      *float64 `json:"high"`
	Low       *float64 `json:"low"`
	Close     *float64 `json:"close"`
	Volume    *float64 `json:"volume"`
}

// IndicatorSeries is index-aligned with the Series it was computed from.
// NaN marks positions without enough lookback.
type IndicatorSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"-"`
}

// Len returns the number of positions.
func (s IndicatorSeries) Len() int { return len(s.Values) }

// Defined reports whether position i holds a comparable value.
func (s IndicatorSeries) Defined(i int) bool {
	return i >= 0 && i < len(s.Values) && !math.IsNaN(s.Values[i])
}

// Last returns the last value and whether it is defined.
func (s IndicatorSeries) Last() (float64, bool) {
	if len(s.Values) == 0 {
		return math.NaN(), false
	}
	v := s.Values[len(s.Values)-1]
	return v, !math.IsNaN(v)
}

// MarshalJSON encodes undefined positions as null.
func (s IndicatorSeries) MarshalJSON() ([]byte, error) {
	vals := make([]*float64, len(s.Values))
	for i := range s.Values {
		if !math.IsNaN(s.Values[i]) && !math.IsInf(s.Values[i], 0) {
			v := s.Values[i]
			vals[i] = &v
		}
	}
	return json.Marshal(struct {
		Name   string     `json:"name"`
		Values []*float64 `json:"values"`
	}{Name: s.Name, Values: vals})
}

// PriceTick is a last-trade price observation from a live feed.
type PriceTick struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Volume float64   `json:"volume"`
	Time   time.Time `json:"time"`
}
