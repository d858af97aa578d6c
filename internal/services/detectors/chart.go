package detectors

import (
	"math"

	"FinSignal/internal/domain/models"

	"gonum.org/v1/gonum/floats"
)

// ChartConfig holds chart pattern thresholds.
type ChartConfig struct {
	Distance          int     // bars on each side of the center bar
	Threshold         float64 // fractional tolerance between extrema
	TriangleWindow    int
	TriangleTolerance float64 // fractional distance of the window extreme from the latest bar
}

// DefaultChartConfig returns distance 5, threshold 2%, window 20, tolerance 1%.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{Distance: 5, Threshold: 0.02, TriangleWindow: 20, TriangleTolerance: 0.01}
}

// ChartPatterns runs every chart pattern detector. Every kind is present in
// the result, possibly with an empty slice.
func ChartPatterns(series models.Series, cfg ChartConfig) map[models.PatternKind][]models.PatternHit {
	highs, lows := series.Highs(), series.Lows()
	return map[models.PatternKind][]models.PatternHit{
		models.PatternDoubleTop:          doubleExtremes(series, highs, cfg, models.PatternDoubleTop, floats.Max),
		models.PatternDoubleBottom:       doubleExtremes(series, lows, cfg, models.PatternDoubleBottom, floats.Min),
		models.PatternHeadShoulders:      headShoulders(series, highs, cfg),
		models.PatternTriangleAscending:  triangles(series, highs, lows, cfg, true),
		models.PatternTriangleDescending: triangles(series, highs, lows, cfg, false),
	}
}

// doubleExtremes finds centers whose value is within Threshold of the extreme
// of the Distance bars on each side.
func doubleExtremes(series models.Series, vals []float64, cfg ChartConfig, kind models.PatternKind,
	extreme func([]float64) float64) []models.PatternHit {
	d := cfg.Distance
	out := []models.PatternHit{}
	if d <= 0 {
		return out
	}
	for i := d; i < len(vals)-d; i++ {
		left := extreme(vals[i-d : i])
		right := extreme(vals[i+1 : i+1+d])
		center := vals[i]
		tol := cfg.Threshold * center
		if math.Abs(center-left) < tol && math.Abs(center-right) < tol {
			out = append(out, models.PatternHit{
				Index:  i,
				Time:   series[i].Timestamp,
				Kind:   kind,
				Levels: models.PatternLevels{Price: models.Float(center), Left: models.Float(left), Right: models.Float(right)},
			})
		}
	}
	return out
}

func headShoulders(series models.Series, highs []float64, cfg ChartConfig) []models.PatternHit {
	d := cfg.Distance
	out := []models.PatternHit{}
	if d <= 0 {
		return out
	}
	for i := d; i < len(highs)-d-1; i++ {
		left := floats.Max(highs[i-d : i])
		right := floats.Max(highs[i+1 : i+1+d])
		head := highs[i]
		if head > left && head > right && math.Abs(left-right) < cfg.Threshold*head {
			out = append(out, models.PatternHit{
				Index:  i,
				Time:   series[i].Timestamp,
				Kind:   models.PatternHeadShoulders,
				Levels: models.PatternLevels{Head: models.Float(head), Left: models.Float(left), Right: models.Float(right)},
			})
		}
	}
	return out
}

// triangles scans the TriangleWindow bars before each index. Ascending needs
// non-decreasing lows with the window high near the last high; descending
// needs non-increasing highs with the window low near the last low.
func triangles(series models.Series, highs, lows []float64, cfg ChartConfig, ascending bool) []models.PatternHit {
	w := cfg.TriangleWindow
	out := []models.PatternHit{}
	if w < 2 {
		return out
	}
	kind := models.PatternTriangleDescending
	if ascending {
		kind = models.PatternTriangleAscending
	}
	for i := w; i < len(series); i++ {
		wh, wl := highs[i-w:i], lows[i-w:i]
		support := floats.Min(wl)
		resistance := floats.Max(wh)
		var ok bool
		if ascending {
			ok = nonDecreasing(wl) && math.Abs(resistance-wh[w-1]) < cfg.TriangleTolerance*resistance
		} else {
			ok = nonIncreasing(wh) && math.Abs(support-wl[w-1]) < cfg.TriangleTolerance*support
		}
		if ok {
			out = append(out, models.PatternHit{
				Index:  i,
				Time:   series[i].Timestamp,
				Kind:   kind,
				Levels: models.PatternLevels{Support: models.Float(support), Resistance: models.Float(resistance)},
			})
		}
	}
	return out
}

func nonDecreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] >= xs[i-1]) {
			return false
		}
	}
	return true
}

func nonIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] <= xs[i-1]) {
			return false
		}
	}
	return true
}
