// Package risk holds stateless position sizing and payoff helpers.
package risk

import (
	"math"

	"github.com/shopspring/decimal"
)

// RiskReward returns reward/risk for a trade. ok is false when the stop sits
// on the entry and no ratio exists.
func RiskReward(entry, stop, target float64) (ratio float64, ok bool) {
	risk := math.Abs(entry - stop)
	if risk == 0 {
		return 0, false
	}
	return math.Abs(target-entry) / risk, true
}

// PositionSize returns the units to buy so that hitting stop loses riskPct of
// balance, scaled by leverage. Returns zero when entry equals stop.
func PositionSize(balance, riskPct, entry, stop, leverage float64) float64 {
	perUnit := decimal.NewFromFloat(entry).Sub(decimal.NewFromFloat(stop)).Abs()
	if perUnit.IsZero() {
		return 0
	}
	if leverage <= 0 {
		leverage = 1
	}
	size := decimal.NewFromFloat(balance).
		Mul(decimal.NewFromFloat(riskPct)).
		Div(perUnit).
		Mul(decimal.NewFromFloat(leverage))
	f, _ := size.Float64()
	return f
}

// Kelly returns the Kelly fraction clamped to [0, 1].
func Kelly(winRate, winLossRatio float64) float64 {
	if winLossRatio == 0 {
		return 0
	}
	k := winRate - (1-winRate)/winLossRatio
	return math.Max(0, math.Min(1, k))
}

// MaxDrawdown returns the largest peak-to-trough decline as a fraction of the peak.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}
	peak, maxDD := equity[0], 0.0
	for _, x := range equity {
		if x > peak {
			peak = x
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - x) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// TargetAnalysis is the risk profile of one target price.
type TargetAnalysis struct {
	Target        float64  `json:"target"`
	PositionSize  float64  `json:"position_size"`
	RiskReward    *float64 `json:"risk_reward"`
	KellyFraction float64  `json:"kelly_fraction"`
}

// Analyze profiles every target of a trade plan.
func Analyze(balance, entry, stop float64, targets []float64, riskPct, leverage, winRate float64) []TargetAnalysis {
	size := PositionSize(balance, riskPct, entry, stop, leverage)
	out := make([]TargetAnalysis, 0, len(targets))
	for _, tgt := range targets {
		a := TargetAnalysis{Target: tgt, PositionSize: size}
		if rr, ok := RiskReward(entry, stop, tgt); ok {
			a.RiskReward = &rr
			a.KellyFraction = Kelly(winRate, rr)
		}
		out = append(out, a)
	}
	return out
}
