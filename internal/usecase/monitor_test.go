package usecase

import (
	"context"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(t *testing.T, f *fakeFetcher, sink *recordingSink, cfg MonitorConfig, opts ...MonitorOption) *Monitor {
	t.Helper()
	orch := NewOrchestrator(f, NewSeriesAnalyzer(DefaultAnalyzerConfig()), WithFullAnalysis())
	ids := 0
	opts = append([]MonitorOption{WithMonitorClock(fixedClock(t0), func() string {
		ids++
		return "alert-" + string(rune('0'+ids))
	})}, opts...)
	return NewMonitor(cfg, orch, NewSignalGenerator(3, 1.5), sink, opts...)
}

func TestMonitorOnceEmitsOnEmptyWhenAsked(t *testing.T) {
	f := &fakeFetcher{series: map[domrepo.Timeframe]models.Series{
		domrepo.TF1h: waveSeries(80, time.Hour),
		domrepo.TF4h: waveSeries(80, 4*time.Hour),
	}}
	sink := &recordingSink{}
	m := newTestMonitor(t, f, sink, MonitorConfig{
		Symbols:      []string{"BTCUSDT"},
		Timeframes:   []string{"1h", "4h"},
		Quorum:       99,
		AlertOnEmpty: true,
	})

	require.NoError(t, m.Run(context.Background(), true))
	require.Len(t, sink.alerts, 1)
	a := sink.alerts[0]
	assert.Equal(t, "alert-1", a.ID)
	assert.Equal(t, "BTCUSDT", a.Symbol)
	assert.Empty(t, a.Signals)
	assert.Equal(t, t0, a.Time)
	assert.Contains(t, a.Details, "1h")
	assert.Contains(t, a.Details, "4h")
}

func TestMonitorSkipsEmptyConsensus(t *testing.T) {
	f := &fakeFetcher{series: map[domrepo.Timeframe]models.Series{domrepo.TF1h: waveSeries(80, time.Hour)}}
	sink := &recordingSink{}
	m := newTestMonitor(t, f, sink, MonitorConfig{Symbols: []string{"X"}, Timeframes: []string{"1h"}, Quorum: 99})
	assert.Empty(t, m.Tick(context.Background()))
	assert.Empty(t, sink.alerts)
}

func TestMonitorFailedSymbolDoesNotStopOthers(t *testing.T) {
	f := &fakeFetcher{errs: map[domrepo.Timeframe]error{domrepo.TF1h: errBoom}}
	sink := &recordingSink{}
	m := newTestMonitor(t, f, sink, MonitorConfig{
		Symbols: []string{"A", "B"}, Timeframes: []string{"1h"}, AlertOnEmpty: true,
	})
	assert.Empty(t, m.Tick(context.Background()))
	assert.Len(t, f.calls, 2, "both symbols attempted")
}

func TestMonitorScoresAndUpdatesTrades(t *testing.T) {
	f := &fakeFetcher{series: map[domrepo.Timeframe]models.Series{domrepo.TF1h: waveSeries(80, time.Hour)}}
	sink := &recordingSink{}
	scorer := &fakeScorer{out: models.EngineOutput{Signal: models.SignalBuy, Confidence: 0.9, Score: 0.75}}
	adapter, err := NewSignalAdapter(models.DefaultWeights(), 0)
	require.NoError(t, err)
	book := NewSignalBook()
	trades := NewTradeManager()
	sig := longSignal()
	sig.Symbol = "BTCUSDT"
	sig.Targets = []float64{1000}
	sig.StopLoss = nil
	tr, err := trades.Start(context.Background(), StartParams{Signal: sig, EntryPrice: 100})
	require.NoError(t, err)

	m := newTestMonitor(t, f, sink,
		MonitorConfig{Symbols: []string{"BTCUSDT"}, Timeframes: []string{"1h"}, AlertOnEmpty: true},
		WithScoring(scorer, NewAnalyticsSignalBuilder(), adapter, book),
		WithMonitorTrades(trades),
	)
	m.Tick(context.Background())

	assert.Equal(t, "BTCUSDT", scorer.req.Symbol)
	assert.Len(t, scorer.req.Closes, 80)

	got, ok := book.Get("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, "1h", got.Timeframe)

	state, _ := trades.Get(tr.TradeID)
	require.Len(t, state.History, 1)
	assert.Equal(t, 0.75, state.History[0].Score)
	last := waveSeries(80, time.Hour)[79].Close
	assert.Equal(t, last, state.History[0].Price)
}

func TestMonitorRunStopsOnCancel(t *testing.T) {
	f := &fakeFetcher{series: map[domrepo.Timeframe]models.Series{domrepo.TF1h: waveSeries(10, time.Hour)}}
	m := newTestMonitor(t, f, &recordingSink{}, MonitorConfig{
		Symbols: []string{"X"}, Timeframes: []string{"1h"}, Interval: time.Hour,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, false) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop")
	}
	assert.Len(t, f.calls, 1, "the current iteration completes")
}
