package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/pkg/logger"
)

// DefaultBarLimit is the number of bars requested per timeframe.
const DefaultBarLimit = 500

// Orchestrator fetches and analyzes every requested timeframe of a symbol in
// parallel. Timeframes share no state; a failure only marks its own timeframe.
type Orchestrator struct {
	fetcher  domrepo.BarFetcher
	analyzer *SeriesAnalyzer
	metrics  domrepo.Metrics
	log      *logger.Logger
	limit    int
	full     bool
	timeout  time.Duration
	now      func() time.Time
}

type OrchestratorOption func(*Orchestrator)

// WithFullAnalysis enables candlesticks, indicators, trend and divergences.
func WithFullAnalysis() OrchestratorOption {
	return func(o *Orchestrator) { o.full = true }
}

// WithBarLimit sets the number of bars fetched per timeframe.
func WithBarLimit(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithFetchTimeout bounds a whole Analyze call.
func WithFetchTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.timeout = d }
}

func WithOrchestratorMetrics(m domrepo.Metrics) OrchestratorOption {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

func WithOrchestratorLogger(l *logger.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func NewOrchestrator(fetcher domrepo.BarFetcher, analyzer *SeriesAnalyzer, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		fetcher:  fetcher,
		analyzer: analyzer,
		metrics:  domrepo.NopMetrics{},
		log:      logger.Nop(),
		limit:    DefaultBarLimit,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Full reports whether the orchestrator runs the full analysis by default.
func (o *Orchestrator) Full() bool { return o.full }

// Analyze runs in the orchestrator's default mode.
func (o *Orchestrator) Analyze(ctx context.Context, symbol string, timeframes []string) (*models.MultiTimeframeResult, error) {
	return o.AnalyzeMode(ctx, symbol, timeframes, o.full)
}

// AnalyzeMode runs with an explicit full-analysis flag. It only fails on an
// empty symbol or timeframe list; per-timeframe failures land in Errors.
func (o *Orchestrator) AnalyzeMode(ctx context.Context, symbol string, timeframes []string, full bool) (*models.MultiTimeframeResult, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, models.NewDataError("symbol", "symbol is required")
	}
	tfs := dedupeTimeframes(timeframes)
	if len(tfs) == 0 {
		return nil, models.NewDataError("timeframes", "at least one timeframe is required")
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	res := &models.MultiTimeframeResult{
		Symbol:     symbol,
		Timeframes: tfs,
		Timestamp:  o.now().UTC(),
		Bundles:    make(map[string]*models.TimeframeBundle, len(tfs)),
		Errors:     map[string]string{},
	}

	type item struct {
		tf     string
		bundle *models.TimeframeBundle
		err    error
	}
	ch := make(chan item, len(tfs))
	var wg sync.WaitGroup
	for _, tf := range tfs {
		wg.Add(1)
		go func(tf string) {
			defer wg.Done()
			b, err := o.analyzeOne(ctx, symbol, tf, full)
			ch <- item{tf: tf, bundle: b, err: err}
		}(tf)
	}
	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.tf] = it.err.Error()
			continue
		}
		res.Bundles[it.tf] = it.bundle
	}
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

func (o *Orchestrator) analyzeOne(ctx context.Context, symbol, raw string, full bool) (*models.TimeframeBundle, error) {
	start := time.Now()
	tf, err := domrepo.ParseTimeframe(raw)
	if err != nil {
		o.metrics.RecordError("timeframe")
		return nil, err
	}
	series, err := o.fetcher.FetchBars(ctx, symbol, tf, o.limit)
	if err != nil {
		o.metrics.RecordError("fetch")
		o.log.Warn("fetch failed",
			logger.String("symbol", symbol),
			logger.String("tf", raw),
			logger.Error(err),
		)
		return nil, fmt.Errorf("fetch %s %s: %w", symbol, raw, err)
	}
	if len(series) == 0 {
		o.metrics.RecordError("empty_series")
		return nil, models.NewDataError("", fmt.Sprintf("no bars for %s %s", symbol, raw))
	}
	b := o.analyzer.Analyze(raw, series, full)
	o.metrics.RecordAnalysis(symbol, raw, time.Since(start).Seconds())
	return b, nil
}

// dedupeTimeframes lowercases, trims and drops blanks and duplicates while
// keeping the first occurrence order.
func dedupeTimeframes(tfs []string) []string {
	return domrepo.SplitTimeframes(strings.Join(tfs, ","))
}
