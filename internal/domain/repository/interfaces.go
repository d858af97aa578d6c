package repository

import (
	"context"

	"FinSignal/internal/domain/models"
)

// BarFetcher supplies a bar series per (symbol, timeframe).
type BarFetcher interface {
	FetchBars(ctx context.Context, symbol string, tf Timeframe, limit int) (models.Series, error)
}

// Capability tells whether a bar source can actually serve requests.
type Capability int

const (
	Unsupported Capability = iota
	Implemented
)

func (c Capability) String() string {
	if c == Implemented {
		return "implemented"
	}
	return "unsupported"
}

// BarSource is a named data-source adapter. Callers check Capability before
// using it as a BarFetcher.
type BarSource interface {
	BarFetcher
	Name() string
	Capability() Capability
}

// AlertSink receives monitor alerts.
type AlertSink interface {
	Emit(ctx context.Context, a models.Alert) error
}

// TradeEventSink receives trade state changes.
type TradeEventSink interface {
	PublishTrade(ctx context.Context, t models.ActiveTrade) error
}

// PriceStream is a live last-trade feed.
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.PriceTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Metrics records pipeline telemetry.
type Metrics interface {
	RecordAnalysis(symbol, tf string, seconds float64)
	RecordError(kind string)
	RecordAlert(symbol string, tags int)
	RecordTradeClosed(symbol, result string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordAnalysis(string, string, float64) {}
func (NopMetrics) RecordError(string) {}
func (NopMetrics) RecordAlert(string, int) {}
func (NopMetrics) RecordTradeClosed(string, string) {}
func (NopMetrics) RecordLastPrice(string, float64) {}
func (NopMetrics) RecordLatency(string, float64) {}
