package detectors

import (
	"fmt"
	"math"

	"FinSignal/internal/domain/models"

	"gonum.org/v1/gonum/floats"
)

// Pivots marks bars whose high (low) equals the max high (min low) of the
// window spanning left bars before and right bars after. Ties count, so a
// flat run yields several pivots. At the same index a high pivot precedes a
// low pivot.
func Pivots(series models.Series, left, right int) []models.Pivot {
	out := []models.Pivot{}
	if left < 0 || right < 0 {
		return out
	}
	highs, lows := series.Highs(), series.Lows()
	for i := left; i < len(series)-right; i++ {
		hw, lw := highs[i-left:i+right+1], lows[i-left:i+right+1]
		if highs[i] == floats.Max(hw) {
			out = append(out, models.Pivot{Index: i, Time: series[i].Timestamp, Kind: models.PivotHigh, Price: highs[i]})
		}
		if lows[i] == floats.Min(lw) {
			out = append(out, models.Pivot{Index: i, Time: series[i].Timestamp, Kind: models.PivotLow, Price: lows[i]})
		}
	}
	return out
}

// Legs joins every consecutive pivot pair, alternating or not.
func Legs(pivots []models.Pivot) []models.Leg {
	if len(pivots) < 2 {
		return []models.Leg{}
	}
	out := make([]models.Leg, 0, len(pivots)-1)
	for i := 1; i < len(pivots); i++ {
		a, b := pivots[i-1], pivots[i]
		dir := models.DirectionDown
		if b.Price > a.Price {
			dir = models.DirectionUp
		}
		out = append(out, models.Leg{
			StartIndex: a.Index,
			EndIndex:   b.Index,
			StartPrice: a.Price,
			EndPrice:   b.Price,
			Kind:       fmt.Sprintf("%s_to_%s", a.Kind, b.Kind),
			Direction:  dir,
			Length:     math.Abs(b.Price - a.Price),
		})
	}
	return out
}
