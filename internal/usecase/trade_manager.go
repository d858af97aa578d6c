package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/pkg/logger"
)

const tradeIDLayout = "20060102150405"

// StartParams opens a trade against a signal.
type StartParams struct {
	Signal     models.StandardSignal
	EntryPrice float64
	Direction  models.TradeDirection // empty follows the signal: buy is long, sell is short
	EntryTime  *time.Time
}

// TradeManager tracks trades from open to closed. All mutations happen under
// one mutex, so updates of a single trade never interleave.
type TradeManager struct {
	mu     sync.RWMutex
	trades map[string]*models.ActiveTrade

	retention int
	onEvict   func(models.ActiveTrade)
	sink      domrepo.TradeEventSink
	metrics   domrepo.Metrics
	log       *logger.Logger
	now       func() time.Time
}

type TradeManagerOption func(*TradeManager)

// WithClosedRetention keeps at most n closed trades; 0 keeps all.
func WithClosedRetention(n int) TradeManagerOption {
	return func(m *TradeManager) {
		if n >= 0 {
			m.retention = n
		}
	}
}

// WithEvictionHook receives every closed trade dropped by retention.
func WithEvictionHook(fn func(models.ActiveTrade)) TradeManagerOption {
	return func(m *TradeManager) { m.onEvict = fn }
}

// WithTradeSink publishes open and close events.
func WithTradeSink(s domrepo.TradeEventSink) TradeManagerOption {
	return func(m *TradeManager) { m.sink = s }
}

func WithTradeMetrics(mt domrepo.Metrics) TradeManagerOption {
	return func(m *TradeManager) {
		if mt != nil {
			m.metrics = mt
		}
	}
}

func WithTradeLogger(l *logger.Logger) TradeManagerOption {
	return func(m *TradeManager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithTradeClock replaces the time source.
func WithTradeClock(now func() time.Time) TradeManagerOption {
	return func(m *TradeManager) { m.now = now }
}

func NewTradeManager(opts ...TradeManagerOption) *TradeManager {
	m := &TradeManager{
		trades:  make(map[string]*models.ActiveTrade),
		metrics: domrepo.NopMetrics{},
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start opens a trade and returns its state.
func (m *TradeManager) Start(ctx context.Context, p StartParams) (models.ActiveTrade, error) {
	sig := p.Signal
	symbol := strings.TrimSpace(sig.Symbol)
	if symbol == "" {
		return models.ActiveTrade{}, models.NewDataError("symbol", "signal has no symbol")
	}
	if p.EntryPrice <= 0 {
		return models.ActiveTrade{}, models.NewDataError("entry_price", "entry price must be positive")
	}
	dir, err := resolveDirection(p.Direction, sig.SignalType)
	if err != nil {
		return models.ActiveTrade{}, err
	}

	now := m.now().UTC()
	entry := now
	if p.EntryTime != nil {
		entry = p.EntryTime.UTC()
	}

	m.mu.Lock()
	t := &models.ActiveTrade{
		TradeID:    m.nextID(symbol, sig.Timeframe, now),
		Symbol:     symbol,
		Timeframe:  sig.Timeframe,
		EntryPrice: p.EntryPrice,
		EntryTime:  entry,
		Direction:  dir,
		Signal:     sig.Clone(),
		Targets:    append([]float64{}, sig.Targets...),
		Status:     models.TradeOpen,
		LastPrice:  p.EntryPrice,
		LastScore:  sig.Score,
		History:    []models.TradeSnapshot{},
	}
	if sig.StopLoss != nil {
		t.StopLoss = models.Float(*sig.StopLoss)
	}
	m.trades[t.TradeID] = t
	state := t.Clone()
	m.mu.Unlock()

	m.log.Info("trade opened",
		logger.String("trade_id", state.TradeID),
		logger.String("direction", string(dir)),
		logger.Float64("entry", p.EntryPrice),
	)
	m.publish(ctx, state)
	return state, nil
}

func resolveDirection(d models.TradeDirection, sig models.SignalType) (models.TradeDirection, error) {
	switch d {
	case models.Long, models.Short:
		return d, nil
	case "":
		switch sig {
		case models.SignalBuy:
			return models.Long, nil
		case models.SignalSell:
			return models.Short, nil
		}
		return "", models.NewDataError("direction", fmt.Sprintf("direction required for %q signal", sig))
	default:
		return "", models.NewDataError("direction", fmt.Sprintf("unknown direction %q", d))
	}
}

// nextID must be called with mu held.
func (m *TradeManager) nextID(symbol, tf string, now time.Time) string {
	base := fmt.Sprintf("%s_%s_%s", symbol, tf, now.Format(tradeIDLayout))
	id := base
	for n := 2; ; n++ {
		if _, taken := m.trades[id]; !taken {
			return id
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

// Update applies a price observation. Targets are checked in order before the
// stop loss; a nil stop loss is never hit. Closed trades are left untouched.
// The bool is false for unknown ids.
func (m *TradeManager) Update(ctx context.Context, id string, price, score float64, analysis models.TradeAnalysis) (models.ActiveTrade, bool) {
	m.mu.Lock()
	t, ok := m.trades[id]
	if !ok {
		m.mu.Unlock()
		return models.ActiveTrade{}, false
	}
	closed := m.apply(t, price, score, analysis)
	state := t.Clone()
	evicted := m.enforceRetention()
	m.mu.Unlock()

	if closed {
		m.closed(ctx, state)
	}
	m.evict(evicted)
	return state, true
}

// apply must be called with mu held. It reports whether the trade closed.
func (m *TradeManager) apply(t *models.ActiveTrade, price, score float64, analysis models.TradeAnalysis) bool {
	if t.Status != models.TradeOpen {
		return false
	}
	now := m.now().UTC()
	t.LastPrice = price
	t.LastScore = score
	snap := models.TradeSnapshot{Time: now, Price: price, Score: score, Analysis: analysis, Status: models.TradeOpen}

	for k, target := range t.Targets {
		hit := price >= target
		if t.Direction == models.Short {
			hit = price <= target
		}
		if hit {
			m.close(t, target, models.TargetResult(k+1), now)
			snap.Comment = fmt.Sprintf("target %d reached", k+1)
			break
		}
	}
	if t.Status == models.TradeOpen && t.StopLoss != nil {
		sl := *t.StopLoss
		hit := price <= sl
		if t.Direction == models.Short {
			hit = price >= sl
		}
		if hit {
			m.close(t, sl, models.ResultStopLoss, now)
			snap.Comment = "stop loss hit"
		}
	}
	snap.Status = t.Status
	t.History = append(t.History, snap)
	return t.Status == models.TradeClosed
}

func (m *TradeManager) close(t *models.ActiveTrade, price float64, result string, now time.Time) {
	t.Status = models.TradeClosed
	t.ClosePrice = models.Float(price)
	t.CloseTime = &now
	t.Result = result
}

// ManualClose closes an open trade at price. Closed trades and unknown ids are
// no-ops; the bool is false for unknown ids.
func (m *TradeManager) ManualClose(ctx context.Context, id string, price float64) (models.ActiveTrade, bool) {
	m.mu.Lock()
	t, ok := m.trades[id]
	if !ok {
		m.mu.Unlock()
		return models.ActiveTrade{}, false
	}
	if t.Status != models.TradeOpen {
		state := t.Clone()
		m.mu.Unlock()
		return state, true
	}
	now := m.now().UTC()
	t.LastPrice = price
	m.close(t, price, models.ResultManual, now)
	t.History = append(t.History, models.TradeSnapshot{
		Time:    now,
		Price:   price,
		Score:   t.LastScore,
		Comment: "manual close",
		Status:  models.TradeClosed,
	})
	state := t.Clone()
	evicted := m.enforceRetention()
	m.mu.Unlock()

	m.closed(ctx, state)
	m.evict(evicted)
	return state, true
}

// UpdateAll updates every open trade once. Symbols missing from prices or
// scores keep the trade's last known values; a missing analysis is empty.
// It returns the ids of trades closed by this call.
func (m *TradeManager) UpdateAll(ctx context.Context, prices, scores map[string]float64, analyses map[string]models.TradeAnalysis) []string {
	var closedStates []models.ActiveTrade
	m.mu.Lock()
	for _, t := range m.trades {
		if t.Status != models.TradeOpen {
			continue
		}
		price, ok := prices[t.Symbol]
		if !ok {
			price = t.LastPrice
		}
		score, ok := scores[t.Symbol]
		if !ok {
			score = t.LastScore
		}
		if m.apply(t, price, score, analyses[t.Symbol]) {
			closedStates = append(closedStates, t.Clone())
		}
	}
	evicted := m.enforceRetention()
	m.mu.Unlock()
	return m.finish(ctx, closedStates, evicted)
}

// UpdatePrices updates only the open trades whose symbol has a price, keeping
// their last score. It returns the ids of trades closed by this call.
func (m *TradeManager) UpdatePrices(ctx context.Context, prices map[string]float64) []string {
	if len(prices) == 0 {
		return nil
	}
	var closedStates []models.ActiveTrade
	m.mu.Lock()
	for _, t := range m.trades {
		price, ok := prices[t.Symbol]
		if !ok || t.Status != models.TradeOpen {
			continue
		}
		if m.apply(t, price, t.LastScore, models.TradeAnalysis{}) {
			closedStates = append(closedStates, t.Clone())
		}
	}
	evicted := m.enforceRetention()
	m.mu.Unlock()
	return m.finish(ctx, closedStates, evicted)
}

func (m *TradeManager) finish(ctx context.Context, closedStates, evicted []models.ActiveTrade) []string {
	ids := make([]string, 0, len(closedStates))
	for _, s := range closedStates {
		m.closed(ctx, s)
		ids = append(ids, s.TradeID)
	}
	sort.Strings(ids)
	m.evict(evicted)
	return ids
}

// Get returns a deep copy of the trade.
func (m *TradeManager) Get(id string) (models.ActiveTrade, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trades[id]
	if !ok {
		return models.ActiveTrade{}, false
	}
	return t.Clone(), true
}

// List returns deep copies ordered by entry time then id. An empty status
// lists every trade.
func (m *TradeManager) List(status models.TradeStatus) []models.ActiveTrade {
	m.mu.RLock()
	out := make([]models.ActiveTrade, 0, len(m.trades))
	for _, t := range m.trades {
		if status == "" || t.Status == status {
			out = append(out, t.Clone())
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryTime.Equal(out[j].EntryTime) {
			return out[i].EntryTime.Before(out[j].EntryTime)
		}
		return out[i].TradeID < out[j].TradeID
	})
	return out
}

// OpenSymbols returns the distinct symbols with open trades.
func (m *TradeManager) OpenSymbols() []string {
	m.mu.RLock()
	seen := map[string]struct{}{}
	for _, t := range m.trades {
		if t.Status == models.TradeOpen {
			seen[t.Symbol] = struct{}{}
		}
	}
	m.mu.RUnlock()
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// enforceRetention must be called with mu held. It removes the oldest closed
// trades beyond the retention limit and returns them.
func (m *TradeManager) enforceRetention() []models.ActiveTrade {
	if m.retention <= 0 {
		return nil
	}
	var closed []*models.ActiveTrade
	for _, t := range m.trades {
		if t.Status == models.TradeClosed {
			closed = append(closed, t)
		}
	}
	if len(closed) <= m.retention {
		return nil
	}
	sort.Slice(closed, func(i, j int) bool {
		if !closed[i].CloseTime.Equal(*closed[j].CloseTime) {
			return closed[i].CloseTime.Before(*closed[j].CloseTime)
		}
		return closed[i].TradeID < closed[j].TradeID
	})
	drop := closed[:len(closed)-m.retention]
	out := make([]models.ActiveTrade, 0, len(drop))
	for _, t := range drop {
		out = append(out, t.Clone())
		delete(m.trades, t.TradeID)
	}
	return out
}

func (m *TradeManager) evict(trades []models.ActiveTrade) {
	if m.onEvict == nil {
		return
	}
	for _, t := range trades {
		m.onEvict(t)
	}
}

func (m *TradeManager) closed(ctx context.Context, t models.ActiveTrade) {
	m.metrics.RecordTradeClosed(t.Symbol, t.Result)
	m.log.Info("trade closed",
		logger.String("trade_id", t.TradeID),
		logger.String("result", t.Result),
		logger.Float64("close_price", *t.ClosePrice),
	)
	m.publish(ctx, t)
}

func (m *TradeManager) publish(ctx context.Context, t models.ActiveTrade) {
	if m.sink == nil {
		return
	}
	if err := m.sink.PublishTrade(ctx, t); err != nil {
		m.metrics.RecordError("trade_sink")
		m.log.Warn("publish trade failed", logger.String("trade_id", t.TradeID), logger.Error(err))
	}
}
