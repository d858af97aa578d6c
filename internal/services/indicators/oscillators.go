package indicators

import (
	"fmt"
	"math"

	"FinSignal/internal/domain/models"
)

// RSI uses simple rolling means of gains and losses (not Wilder smoothing).
// The first bar has no predecessor and contributes zero gain and zero loss.
func RSI(closes []float64, period int) models.IndicatorSeries {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		switch {
		case math.IsNaN(d):
			gains[i], losses[i] = math.NaN(), math.NaN()
		case d > 0:
			gains[i] = d
		case d < 0:
			losses[i] = -d
		}
	}
	avgGain := RollingMean(gains, period)
	avgLoss := RollingMean(losses, period)

	out := nanSlice(n)
	for i := range out {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}
		rs := avgGain[i] / (avgLoss[i] + Epsilon)
		out[i] = 100 - 100/(1+rs)
	}
	return models.IndicatorSeries{Name: fmt.Sprintf("rsi_%d", period), Values: out}
}

// MACDResult holds the three MACD series.
type MACDResult struct {
	Line      models.IndicatorSeries
	Signal    models.IndicatorSeries
	Histogram models.IndicatorSeries
}

// MACD computes EMA(fast) - EMA(slow), its EMA(signal), and the difference.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	fastEMA := ema(closes, fast)
	slowEMA := ema(closes, slow)
	line := make([]float64, len(closes))
	for i := range line {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig := ema(line, signal)
	hist := make([]float64, len(closes))
	for i := range hist {
		hist[i] = line[i] - sig[i]
	}
	return MACDResult{
		Line:      models.IndicatorSeries{Name: "macd", Values: line},
		Signal:    models.IndicatorSeries{Name: "macd_signal", Values: sig},
		Histogram: models.IndicatorSeries{Name: "macd_hist", Values: hist},
	}
}

// StochasticResult holds %K and %D.
type StochasticResult struct {
	K models.IndicatorSeries
	D models.IndicatorSeries
}

// Stochastic computes %K over kPeriod and %D as the dPeriod mean of %K.
func Stochastic(series models.Series, kPeriod, dPeriod int) StochasticResult {
	lowest := RollingMin(series.Lows(), kPeriod)
	highest := RollingMax(series.Highs(), kPeriod)
	k := nanSlice(len(series))
	for i, b := range series {
		if math.IsNaN(lowest[i]) || math.IsNaN(highest[i]) {
			continue
		}
		k[i] = 100 * (b.Close - lowest[i]) / (highest[i] - lowest[i] + Epsilon)
	}
	return StochasticResult{
		K: models.IndicatorSeries{Name: "stoch_k", Values: k},
		D: models.IndicatorSeries{Name: "stoch_d", Values: RollingMean(k, dPeriod)},
	}
}
