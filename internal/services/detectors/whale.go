package detectors

import (
	"math"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/services/indicators"
)

// WhaleConfig holds the abnormal-volume thresholds. Rolling means and
// deviations include the bar being tested.
type WhaleConfig struct {
	VolumeWindow   int
	VolumeMultiple float64

	SpoofWindow         int
	SpoofVolumeMultiple float64
	JumpMultiple        float64
	// RequireReversal demands that the bar's own body points against the jump.
	RequireReversal bool

	WashWindow         int
	WashVolumeMultiple float64
	WashBodyFraction   float64
}

// DefaultWhaleConfig returns the documented thresholds.
func DefaultWhaleConfig() WhaleConfig {
	return WhaleConfig{
		VolumeWindow:        20,
		VolumeMultiple:      3,
		SpoofWindow:         10,
		SpoofVolumeMultiple: 2,
		JumpMultiple:        2,
		RequireReversal:     true,
		WashWindow:          10,
		WashVolumeMultiple:  2,
		WashBodyFraction:    0.1,
	}
}

// Whale runs the three abnormal-volume detectors. Every kind is present in
// the result; a bar may appear under several kinds.
func Whale(series models.Series, cfg WhaleConfig) map[models.WhaleKind][]models.WhaleEvent {
	return map[models.WhaleKind][]models.WhaleEvent{
		models.WhaleCandle: whaleCandles(series, cfg),
		models.Spoofing:    spoofing(series, cfg),
		models.WashTrading: washTrading(series, cfg),
	}
}

func whaleCandles(series models.Series, cfg WhaleConfig) []models.WhaleEvent {
	out := []models.WhaleEvent{}
	vols := series.Volumes()
	mean := indicators.RollingMean(vols, cfg.VolumeWindow)
	for i := range series {
		if math.IsNaN(mean[i]) || !(vols[i] > cfg.VolumeMultiple*mean[i]) {
			continue
		}
		out = append(out, models.WhaleEvent{
			Index:      i,
			Time:       series[i].Timestamp,
			Kind:       models.WhaleCandle,
			Volume:     vols[i],
			MeanVolume: mean[i],
		})
	}
	return out
}

func spoofing(series models.Series, cfg WhaleConfig) []models.WhaleEvent {
	out := []models.WhaleEvent{}
	w := cfg.SpoofWindow
	vols, closes := series.Volumes(), series.Closes()
	mean := indicators.RollingMean(vols, w)
	std := indicators.RollingStd(closes, w)
	for i := w; i < len(series); i++ {
		if math.IsNaN(mean[i]) || math.IsNaN(std[i]) {
			continue
		}
		if !(vols[i] > cfg.SpoofVolumeMultiple*mean[i]) {
			continue
		}
		jump := closes[i] - closes[i-w]
		if !(math.Abs(jump) > cfg.JumpMultiple*std[i]) {
			continue
		}
		if cfg.RequireReversal && !reverses(series[i], jump) {
			continue
		}
		out = append(out, models.WhaleEvent{
			Index:      i,
			Time:       series[i].Timestamp,
			Kind:       models.Spoofing,
			Volume:     vols[i],
			MeanVolume: mean[i],
			PriceJump:  jump,
			PriceStd:   std[i],
		})
	}
	return out
}

// reverses reports whether the bar closed against the direction of jump.
func reverses(b models.Bar, jump float64) bool {
	body := b.Close - b.Open
	return (jump > 0 && body < 0) || (jump < 0 && body > 0)
}

func washTrading(series models.Series, cfg WhaleConfig) []models.WhaleEvent {
	out := []models.WhaleEvent{}
	w := cfg.WashWindow
	vols := series.Volumes()
	mean := indicators.RollingMean(vols, w)
	for i := w; i < len(series); i++ {
		if math.IsNaN(mean[i]) {
			continue
		}
		body := math.Abs(series[i].Close - series[i].Open)
		if vols[i] > cfg.WashVolumeMultiple*mean[i] && body < cfg.WashBodyFraction*series[i].Close {
			out = append(out, models.WhaleEvent{
				Index:      i,
				Time:       series[i].Timestamp,
				Kind:       models.WashTrading,
				Volume:     vols[i],
				MeanVolume: mean[i],
				Body:       body,
			})
		}
	}
	return out
}
