package usecase

import (
	"context"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	domsvc "FinSignal/internal/domain/service"
	"FinSignal/pkg/logger"

	"github.com/google/uuid"
)

// MonitorConfig lists what the monitor watches.
type MonitorConfig struct {
	Symbols      []string
	Timeframes   []string
	Interval     time.Duration
	Quorum       int
	AlertOnEmpty bool
}

// Monitor repeatedly analyzes the configured symbols, emits consensus alerts,
// refreshes the fused signals and feeds the trade manager.
type Monitor struct {
	cfg  MonitorConfig
	orch *Orchestrator
	gen  *SignalGenerator
	sink domrepo.AlertSink

	scorer  domsvc.ModelScorer
	builder *AnalyticsSignalBuilder
	adapter *SignalAdapter
	book    *SignalBook
	trades  *TradeManager

	metrics domrepo.Metrics
	log     *logger.Logger
	now     func() time.Time
	newID   func() string
}

type MonitorOption func(*Monitor)

// WithScoring enables the model scoring step. Fused signals go to book.
func WithScoring(scorer domsvc.ModelScorer, builder *AnalyticsSignalBuilder, adapter *SignalAdapter, book *SignalBook) MonitorOption {
	return func(m *Monitor) {
		m.scorer = scorer
		m.builder = builder
		m.adapter = adapter
		m.book = book
	}
}

// WithMonitorTrades batch-updates open trades after every iteration.
func WithMonitorTrades(tm *TradeManager) MonitorOption {
	return func(m *Monitor) { m.trades = tm }
}

func WithMonitorMetrics(mt domrepo.Metrics) MonitorOption {
	return func(m *Monitor) {
		if mt != nil {
			m.metrics = mt
		}
	}
}

func WithMonitorLogger(l *logger.Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.log = l
		}
	}
}

// WithMonitorClock replaces the time source and the alert id generator.
func WithMonitorClock(now func() time.Time, newID func() string) MonitorOption {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
		if newID != nil {
			m.newID = newID
		}
	}
}

func NewMonitor(cfg MonitorConfig, orch *Orchestrator, gen *SignalGenerator, sink domrepo.AlertSink, opts ...MonitorOption) *Monitor {
	if cfg.Quorum <= 0 {
		cfg.Quorum = DefaultQuorum
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	m := &Monitor{
		cfg:     cfg,
		orch:    orch,
		gen:     gen,
		sink:    sink,
		metrics: domrepo.NopMetrics{},
		log:     logger.Nop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.String("component", "monitor"))
	return m
}

// Run loops until ctx is done, sleeping Interval between iterations. With
// once set it returns after the first iteration. Cancellation lets the
// current iteration finish.
func (m *Monitor) Run(ctx context.Context, once bool) error {
	m.log.Info("monitor started",
		logger.Strings("symbols", m.cfg.Symbols),
		logger.Strings("timeframes", m.cfg.Timeframes),
		logger.Duration("interval", m.cfg.Interval),
	)
	for {
		m.Tick(context.WithoutCancel(ctx))
		if once {
			return nil
		}
		select {
		case <-ctx.Done():
			m.log.Info("monitor stopped")
			return nil
		case <-time.After(m.cfg.Interval):
		}
	}
}

// Tick runs one iteration over every symbol and returns the emitted alerts.
// A failing symbol is logged and skipped.
func (m *Monitor) Tick(ctx context.Context) []models.Alert {
	start := time.Now()
	alerts := []models.Alert{}
	prices := map[string]float64{}
	scores := map[string]float64{}
	analyses := map[string]models.TradeAnalysis{}

	for _, symbol := range m.cfg.Symbols {
		res, err := m.orch.Analyze(ctx, symbol, m.cfg.Timeframes)
		if err != nil {
			m.metrics.RecordError("monitor")
			m.log.Error("analysis failed", logger.String("symbol", symbol), logger.Error(err))
			continue
		}
		primary, ok := res.Primary()
		if !ok {
			m.metrics.RecordError("monitor_no_data")
			m.log.Warn("no timeframe succeeded", logger.String("symbol", symbol), logger.Any("errors", res.Errors))
			continue
		}

		tags := m.gen.Generate(res)
		consensus := Consensus(tags, m.cfg.Quorum)
		if len(consensus) > 0 || m.cfg.AlertOnEmpty {
			a := models.Alert{
				ID:       m.newID(),
				Symbol:   symbol,
				Signals:  consensus,
				Time:     m.now().UTC(),
				Details:  tags,
				Failures: res.Errors,
			}
			if err := m.sink.Emit(ctx, a); err != nil {
				m.metrics.RecordError("alert_sink")
				m.log.Error("emit alert failed", logger.String("symbol", symbol), logger.Error(err))
			} else {
				m.metrics.RecordAlert(symbol, len(consensus))
				alerts = append(alerts, a)
			}
		}

		prices[symbol] = primary.LastClose
		analysis := models.TradeAnalysis{Consensus: consensus, Notes: res.Errors}
		if primary.Trend != nil {
			analysis.Phase = primary.Trend.Current
		}
		analyses[symbol] = analysis

		if score, ok := m.score(ctx, symbol, primary, consensus); ok {
			scores[symbol] = score
		}
	}

	if m.trades != nil {
		if closed := m.trades.UpdateAll(ctx, prices, scores, analyses); len(closed) > 0 {
			m.log.Info("trades closed", logger.Strings("trade_ids", closed))
		}
	}
	m.metrics.RecordLatency("monitor_tick", time.Since(start).Seconds())
	return alerts
}

// score runs the model and stores the fused signal. It reports the model
// score when scoring is configured and succeeded.
func (m *Monitor) score(ctx context.Context, symbol string, b *models.TimeframeBundle, consensus []models.SignalTag) (float64, bool) {
	if m.scorer == nil || m.adapter == nil {
		return 0, false
	}
	ai, err := m.scorer.Score(ctx, domsvc.ScoreRequest{
		Symbol:    symbol,
		Timeframe: b.Timeframe,
		Closes:    b.Closes,
		Features:  b.Features,
	})
	if err != nil {
		m.metrics.RecordError("model_score")
		m.log.Warn("model score failed", logger.String("symbol", symbol), logger.Error(err))
		return 0, false
	}
	analytics := m.builder.Build(b.Timeframe, b, consensus)
	sig := m.adapter.Adapt(symbol, b.Timeframe, ai, analytics)
	if m.book != nil {
		m.book.Put(sig)
	}
	return ai.Score, true
}
