package features

import (
	"math"
	"time"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/domain/repository"
	"FinSignal/internal/services/indicators"

	"gonum.org/v1/gonum/stat"
)

// Feature names sent to the model scorer.
const (
	FeatLastReturn   = "last_return"
	FeatMeanReturn   = "mean_return"
	FeatRealizedVol  = "realized_vol"
	FeatRSI          = "rsi"
	FeatADX          = "adx"
	FeatATRPct       = "atr_pct"
	FeatVolumeZScore = "volume_z"
)

// VolWindow is the realized volatility lookback in bars.
const VolWindow = 20

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(series)-1, or nil if insufficient data.
func ComputeLogReturns(series models.Series) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Close
		cur := series[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility computes annualized realized volatility of the latest
// window of log returns using the provided number of bars per year.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sigma := stat.StdDev(logReturns[len(logReturns)-window:], nil)
	return sigma * math.Sqrt(barsPerYear)
}

// BarsPerYearForTF returns the approximate number of bars per year for a timeframe.
func BarsPerYearForTF(tf repository.Timeframe) float64 {
	d := tf.Duration()
	if d <= 0 {
		d = time.Minute
	}
	return float64(365*24*time.Hour) / float64(d)
}

// AlignFromTo rounds a time range down to bucket boundaries of tf.
func AlignFromTo(from, to time.Time, tf repository.Timeframe) (time.Time, time.Time) {
	d := tf.Duration()
	if d <= 0 {
		d = time.Minute
	}
	return from.Truncate(d), to.Truncate(d)
}

// Extract builds the scalar feature map for the model scorer. Features whose
// lookback is not satisfied are omitted.
func Extract(series models.Series, tf repository.Timeframe) map[string]float64 {
	out := make(map[string]float64)
	rets := ComputeLogReturns(series)
	if len(rets) > 0 {
		out[FeatLastReturn] = rets[len(rets)-1]
		out[FeatMeanReturn] = stat.Mean(rets, nil)
	}
	if len(rets) >= VolWindow {
		out[FeatRealizedVol] = RealizedVolatility(rets, VolWindow, BarsPerYearForTF(tf))
	}
	cfg := indicators.DefaultConfig()
	if v, ok := indicators.RSI(series.Closes(), cfg.RSIPeriod).Last(); ok {
		out[FeatRSI] = v
	}
	if v, ok := indicators.ADX(series, cfg.ADXPeriod).ADX.Last(); ok {
		out[FeatADX] = v
	}
	if last, ok := series.Last(); ok && last.Close > 0 {
		if v, ok := indicators.ATR(series, cfg.ATRPeriod).Last(); ok {
			out[FeatATRPct] = v / last.Close
		}
	}
	if vols := series.Volumes(); len(vols) >= 2 {
		mean, std := stat.MeanStdDev(vols, nil)
		if std > 0 {
			out[FeatVolumeZScore] = (vols[len(vols)-1] - mean) / std
		}
	}
	return out
}
