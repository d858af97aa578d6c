package usecase

import (
	"context"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/service/ratelimit"
	"FinSignal/pkg/logger"
)

// PriceRelay forwards live prices to the trade manager. Ticks are throttled
// per symbol, only the latest price per symbol is kept, and open trades are
// updated every flush interval.
type PriceRelay struct {
	stream  domrepo.PriceStream
	trades  *TradeManager
	limiter *ratelimit.Limiter
	maxRate float64
	flush   time.Duration
	metrics domrepo.Metrics
	log     *logger.Logger

	mu     sync.Mutex
	latest map[string]float64
}

type PriceRelayOption func(*PriceRelay)

// WithMaxUpdatesPerSecond caps accepted ticks per symbol; 0 disables the cap.
func WithMaxUpdatesPerSecond(n int) PriceRelayOption {
	return func(r *PriceRelay) {
		if n >= 0 {
			r.maxRate = float64(n)
		}
	}
}

func WithFlushInterval(d time.Duration) PriceRelayOption {
	return func(r *PriceRelay) {
		if d > 0 {
			r.flush = d
		}
	}
}

func WithRelayLimiter(l *ratelimit.Limiter) PriceRelayOption {
	return func(r *PriceRelay) {
		if l != nil {
			r.limiter = l
		}
	}
}

func WithRelayMetrics(m domrepo.Metrics) PriceRelayOption {
	return func(r *PriceRelay) {
		if m != nil {
			r.metrics = m
		}
	}
}

func WithRelayLogger(l *logger.Logger) PriceRelayOption {
	return func(r *PriceRelay) {
		if l != nil {
			r.log = l
		}
	}
}

func NewPriceRelay(stream domrepo.PriceStream, trades *TradeManager, opts ...PriceRelayOption) *PriceRelay {
	r := &PriceRelay{
		stream:  stream,
		trades:  trades,
		limiter: ratelimit.New(),
		maxRate: 5,
		flush:   2 * time.Second,
		metrics: domrepo.NopMetrics{},
		log:     logger.Nop(),
		latest:  make(map[string]float64),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(logger.String("component", "price_relay"))
	return r
}

// Run connects the stream and relays until ctx is done. Read errors trigger a
// reconnect; only a failed initial connect is returned.
func (r *PriceRelay) Run(ctx context.Context) error {
	if err := r.stream.Connect(ctx); err != nil {
		return err
	}
	if err := r.stream.Subscribe(ctx); err != nil {
		_ = r.stream.Close()
		return err
	}
	defer r.stream.Close()

	ticker := time.NewTicker(r.flush)
	defer ticker.Stop()

	ticks, errs := r.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			r.Flush(context.WithoutCancel(ctx))
			return nil
		case <-ticker.C:
			r.Flush(ctx)
		case err, ok := <-errs:
			if ok && err != nil {
				r.metrics.RecordError("stream")
				r.log.Warn("stream read failed", logger.Error(err))
			}
			if !r.reconnect(ctx) {
				return nil
			}
			ticks, errs = r.stream.Read(ctx)
		case t, ok := <-ticks:
			if !ok {
				ticks = nil
				continue
			}
			r.Accept(t)
		}
	}
}

// reconnect retries until it succeeds or ctx is done.
func (r *PriceRelay) reconnect(ctx context.Context) bool {
	for {
		err := r.stream.Reconnect(ctx)
		if err == nil {
			r.log.Info("stream reconnected")
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		r.metrics.RecordError("stream_reconnect")
		r.log.Warn("reconnect failed", logger.Error(err))
	}
}

// Accept validates and throttles a tick, keeping it as the symbol's latest
// price. It reports whether the tick was kept.
func (r *PriceRelay) Accept(t models.PriceTick) bool {
	if t.Symbol == "" || t.Price <= 0 {
		r.metrics.RecordError("relay_invalid_tick")
		return false
	}
	if r.maxRate > 0 && !r.limiter.Allow(t.Symbol, r.maxRate, r.maxRate) {
		return false
	}
	r.mu.Lock()
	r.latest[t.Symbol] = t.Price
	r.mu.Unlock()
	r.metrics.RecordLastPrice(t.Symbol, t.Price)
	return true
}

// Flush hands the pending prices to the trade manager and returns the ids of
// trades it closed.
func (r *PriceRelay) Flush(ctx context.Context) []string {
	r.mu.Lock()
	pending := r.latest
	r.latest = make(map[string]float64, len(pending))
	r.mu.Unlock()
	if len(pending) == 0 || r.trades == nil {
		return nil
	}
	start := time.Now()
	closed := r.trades.UpdatePrices(ctx, pending)
	r.metrics.RecordLatency("relay_flush", time.Since(start).Seconds())
	if len(closed) > 0 {
		r.log.Info("trades closed by live price", logger.Strings("trade_ids", closed))
	}
	return closed
}
