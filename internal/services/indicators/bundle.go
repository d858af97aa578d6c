package indicators

import "FinSignal/internal/domain/models"

// Keys of the standard bundle.
const (
	KeySMA        = "sma"
	KeyEMA        = "ema"
	KeyRSI        = "rsi"
	KeyMACD       = "macd"
	KeyMACDSignal = "macd_signal"
	KeyMACDHist   = "macd_hist"
	KeyATR        = "atr"
	KeyBBUpper    = "bb_upper"
	KeyBBMiddle   = "bb_middle"
	KeyBBLower    = "bb_lower"
	KeyStochK     = "stoch_k"
	KeyStochD     = "stoch_d"
	KeyADX        = "adx"
)

// Config holds indicator periods.
type Config struct {
	SMAPeriod  int
	EMAPeriod  int
	RSIPeriod  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	ATRPeriod  int
	BBPeriod   int
	BBStd      float64
	StochK     int
	StochD     int
	ADXPeriod  int
}

// DefaultConfig returns the conventional periods.
func DefaultConfig() Config {
	return Config{
		SMAPeriod:  20,
		EMAPeriod:  20,
		RSIPeriod:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		ATRPeriod:  14,
		BBPeriod:   20,
		BBStd:      2,
		StochK:     14,
		StochD:     3,
		ADXPeriod:  14,
	}
}

// Compute returns the standard indicator bundle keyed by the Key constants.
func Compute(series models.Series, cfg Config) map[string]models.IndicatorSeries {
	closes := series.Closes()
	macd := MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	bb := Bollinger(closes, cfg.BBPeriod, cfg.BBStd)
	stoch := Stochastic(series, cfg.StochK, cfg.StochD)
	return map[string]models.IndicatorSeries{
		KeySMA:        SMA(closes, cfg.SMAPeriod),
		KeyEMA:        EMA(closes, cfg.EMAPeriod),
		KeyRSI:        RSI(closes, cfg.RSIPeriod),
		KeyMACD:       macd.Line,
		KeyMACDSignal: macd.Signal,
		KeyMACDHist:   macd.Histogram,
		KeyATR:        ATR(series, cfg.ATRPeriod),
		KeyBBUpper:    bb.Upper,
		KeyBBMiddle:   bb.Middle,
		KeyBBLower:    bb.Lower,
		KeyStochK:     stoch.K,
		KeyStochD:     stoch.D,
		KeyADX:        ADX(series, cfg.ADXPeriod).ADX,
	}
}
