package usecase

import (
	"fmt"
	"sort"
	"strings"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/services/indicators"
	"FinSignal/internal/services/risk"
)

const (
	maxLevels         = 3
	fallbackZoneRatio = 0.005
)

// AnalyticsSignalBuilder turns detector output into the analytics side of the
// signal fusion.
type AnalyticsSignalBuilder struct{}

func NewAnalyticsSignalBuilder() *AnalyticsSignalBuilder { return &AnalyticsSignalBuilder{} }

// Build votes the tags by bias. Confidence is the winning share and score the
// net vote over all directional tags. Levels come from the bundle pivots.
func (AnalyticsSignalBuilder) Build(tf string, b *models.TimeframeBundle, tags []models.SignalTag) models.EngineOutput {
	var bull, bear int
	reasons := make([]string, 0, len(tags)+1)
	for _, t := range tags {
		switch t.Bias() {
		case models.Bullish:
			bull++
		case models.Bearish:
			bear++
		}
		reasons = append(reasons, string(t))
	}

	out := models.EngineOutput{Signal: models.SignalHold, Reasons: reasons}
	if total := bull + bear; total > 0 {
		out.Score = float64(bull-bear) / float64(total)
		switch {
		case bull > bear:
			out.Signal = models.SignalBuy
			out.Confidence = float64(bull) / float64(total)
		case bear > bull:
			out.Signal = models.SignalSell
			out.Confidence = float64(bear) / float64(total)
		default:
			out.Confidence = 0.5
		}
	}
	if b == nil || b.Bars == 0 {
		out.Explanation = fmt.Sprintf("%s: no bars", tf)
		return out
	}

	price := b.LastClose
	out.CurrentPrice = models.Float(price)
	highs, lows := pivotLevels(b.Pivots, price)
	out.ResistanceLevels = highs
	out.SupportLevels = lows
	if b.Trend != nil {
		out.Reasons = append(out.Reasons, "trend_"+string(b.Trend.Current))
	}

	half := fallbackZoneRatio * price
	if atr, ok := b.Indicators[indicators.KeyATR].Last(); ok && atr > 0 {
		half = atr / 2
	}

	switch out.Signal {
	case models.SignalBuy:
		out.EntryZone = []float64{price - half, price + half}
		out.Targets = highs
		if len(lows) > 0 {
			out.StopLoss = models.Float(lows[0])
		}
	case models.SignalSell:
		out.EntryZone = []float64{price - half, price + half}
		out.Targets = lows
		if len(highs) > 0 {
			out.StopLoss = models.Float(highs[0])
		}
	}
	if out.StopLoss != nil && len(out.Targets) > 0 {
		if rr, ok := risk.RiskReward(price, *out.StopLoss, out.Targets[0]); ok {
			out.RiskReward = models.Float(rr)
		}
	}
	out.Explanation = fmt.Sprintf("%s: %d bullish, %d bearish tags (%s)", tf, bull, bear, strings.Join(out.Reasons, ", "))
	return out
}

// pivotLevels returns up to maxLevels distinct pivot highs above price,
// nearest first, and pivot lows below price, nearest first.
func pivotLevels(pivots []models.Pivot, price float64) (resistance, support []float64) {
	seenHigh, seenLow := map[float64]bool{}, map[float64]bool{}
	for _, p := range pivots {
		switch {
		case p.Kind == models.PivotHigh && p.Price > price && !seenHigh[p.Price]:
			seenHigh[p.Price] = true
			resistance = append(resistance, p.Price)
		case p.Kind == models.PivotLow && p.Price < price && !seenLow[p.Price]:
			seenLow[p.Price] = true
			support = append(support, p.Price)
		}
	}
	sort.Float64s(resistance)
	sort.Sort(sort.Reverse(sort.Float64Slice(support)))
	if len(resistance) > maxLevels {
		resistance = resistance[:maxLevels]
	}
	if len(support) > maxLevels {
		support = support[:maxLevels]
	}
	return resistance, support
}
