package di

import (
	"context"
	"fmt"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	domsvc "FinSignal/internal/domain/service"
	"FinSignal/internal/handler/api"
	internalrepo "FinSignal/internal/repository"
	"FinSignal/internal/service/cache"
	"FinSignal/internal/service/finnhub"
	"FinSignal/internal/service/ratelimit"
	"FinSignal/internal/services/analytics"
	"FinSignal/internal/services/detectors"
	"FinSignal/internal/services/indicators"
	"FinSignal/internal/services/trend"
	"FinSignal/internal/usecase"
	pkgch "FinSignal/pkg/clickhouse"
	"FinSignal/pkg/config"
	pkgkafka "FinSignal/pkg/kafka"
	"FinSignal/pkg/logger"
	"FinSignal/pkg/metrics"
	"FinSignal/pkg/server"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideMetrics returns the Prometheus recorder on the default registry.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideClickHouseClient connects only when ClickHouse is the bar source.
func ProvideClickHouseClient(cfg *config.Config, l *logger.Logger) (*pkgch.Client, func(), error) {
	if cfg.Source.Name != internalrepo.SourceClickHouse {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ClickHouse.DialTimeout+5*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	l.Info("clickhouse connected", logger.String("database", cfg.ClickHouse.Database))
	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", logger.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvideSourceRegistry registers every known bar source. ClickHouse is only
// present when a client was opened.
func ProvideSourceRegistry(cfg *config.Config, ch *pkgch.Client, l *logger.Logger) *internalrepo.SourceRegistry {
	reg := internalrepo.NewSourceRegistry(
		internalrepo.NewCSVSource(cfg.Source.CSVDir, cfg.Analysis.ZThreshold, l),
		internalrepo.NewCoinGeckoSource(cfg.CoinGecko.BaseURL, cfg.CoinGecko.Timeout, l),
	)
	if ch != nil {
		reg.Register(internalrepo.NewCHBarSource(ch.DB(), cfg.ClickHouse.Database, nil, l))
	}
	return reg
}

// ProvideBarFetcher resolves the configured source.
func ProvideBarFetcher(cfg *config.Config, reg *internalrepo.SourceRegistry) (domrepo.BarFetcher, error) {
	return reg.Fetcher(cfg.Source.Name)
}

// ProvideAnalyzerConfig maps the analysis section onto detector settings.
func ProvideAnalyzerConfig(cfg *config.Config) usecase.AnalyzerConfig {
	a := cfg.Analysis
	return usecase.AnalyzerConfig{
		Indicators: indicators.DefaultConfig(),
		Chart: detectors.ChartConfig{
			Distance:          a.Chart.Distance,
			Threshold:         a.Chart.Threshold,
			TriangleWindow:    a.Chart.TriangleWindow,
			TriangleTolerance: a.Chart.TriangleTolerance,
		},
		PivotLeft:        a.Pivot.Left,
		PivotRight:       a.Pivot.Right,
		DivergenceWindow: a.DivergenceWindow,
		Whale: detectors.WhaleConfig{
			VolumeWindow:        a.Whale.VolumeWindow,
			VolumeMultiple:      a.Whale.VolumeMultiple,
			SpoofWindow:         a.Whale.SpoofWindow,
			SpoofVolumeMultiple: a.Whale.SpoofVolumeMultiple,
			JumpMultiple:        a.Whale.JumpMultiple,
			RequireReversal:     a.Whale.RequireReversal,
			WashWindow:          a.Whale.WashWindow,
			WashVolumeMultiple:  a.Whale.WashVolumeMultiple,
			WashBodyFraction:    a.Whale.WashBodyFraction,
		},
		Trend: trend.Config{
			EMAPeriod: a.Trend.EMAPeriod,
			SMAPeriod: a.Trend.SMAPeriod,
			ADXPeriod: a.Trend.ADXPeriod,
			TrendADX:  a.Trend.TrendADX,
			RangeADX:  a.Trend.RangeADX,
		},
	}
}

// ProvideOrchestrator creates the multi-timeframe pipeline.
func ProvideOrchestrator(cfg *config.Config, fetcher domrepo.BarFetcher, acfg usecase.AnalyzerConfig,
	mt domrepo.Metrics, l *logger.Logger) *usecase.Orchestrator {
	opts := []usecase.OrchestratorOption{
		usecase.WithBarLimit(cfg.Monitor.BarLimit),
		usecase.WithOrchestratorMetrics(mt),
		usecase.WithOrchestratorLogger(l),
	}
	if cfg.Monitor.FullAnalysis {
		opts = append(opts, usecase.WithFullAnalysis())
	}
	return usecase.NewOrchestrator(fetcher, usecase.NewSeriesAnalyzer(acfg), opts...)
}

func ProvideSignalGenerator(cfg *config.Config) *usecase.SignalGenerator {
	return usecase.NewSignalGenerator(cfg.Signal.RecentBars, cfg.Signal.MajorLegFactor)
}

func ProvideSignalAdapter(cfg *config.Config) (*usecase.SignalAdapter, error) {
	w := models.Weights{AI: cfg.Signal.WeightAI, Analytics: cfg.Signal.WeightAnalytics}
	return usecase.NewSignalAdapter(w, cfg.Signal.Validity)
}

func ProvideSignalBook() *usecase.SignalBook {
	return usecase.NewSignalBook()
}

// ProvideModelScorer returns nil when no model service is configured, which
// disables the scoring step of the monitor.
func ProvideModelScorer(cfg *config.Config) domsvc.ModelScorer {
	if cfg.Analytics.ModelURL == "" {
		return nil
	}
	base := analytics.NewHTTPServiceBase(cfg.Analytics.ModelURL, cfg.Analytics.Timeout)
	return analytics.NewHTTPModelScorer(base, cfg.Analytics.Retries)
}

// ProvideKafkaProducer returns a nil producer when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(pkgkafka.Settings{
		Brokers:      k.Brokers,
		RequiredAcks: k.RequiredAcks,
		Compression:  k.Compression,
		MaxAttempts:  k.Producer.MaxAttempts,
		Linger:       k.Producer.Linger,
		BatchBytes:   k.Producer.BatchBytes,
		BatchSize:    k.Producer.BatchSize,
		WriteTimeout: k.Producer.WriteTimeout,
		ReadTimeout:  k.Producer.ReadTimeout,
		Async:        k.Producer.Async,
	}.Options()...)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("kafka producer ready", logger.Strings("brokers", k.Brokers))
	cleanup := func() {
		if err := producer.Close(); err != nil {
			l.Warn("kafka producer close error", logger.Error(err))
		}
	}
	return producer, cleanup, nil
}

// ProvideAlertSink always logs alerts and also publishes them when Kafka is on.
func ProvideAlertSink(cfg *config.Config, producer *pkgkafka.Producer, l *logger.Logger) domrepo.AlertSink {
	sinks := usecase.MultiAlertSink{usecase.NewLogAlertSink(l)}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaAlertSink(producer, cfg.Kafka.AlertsTopic))
	}
	return sinks
}

// ProvideTradeSink returns nil without Kafka.
func ProvideTradeSink(cfg *config.Config, producer *pkgkafka.Producer) domrepo.TradeEventSink {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaTradeSink(producer, cfg.Kafka.TradesTopic)
}

func ProvideTradeManager(cfg *config.Config, sink domrepo.TradeEventSink, mt domrepo.Metrics, l *logger.Logger) *usecase.TradeManager {
	return usecase.NewTradeManager(
		usecase.WithClosedRetention(cfg.Trades.ClosedRetention),
		usecase.WithTradeSink(sink),
		usecase.WithTradeMetrics(mt),
		usecase.WithTradeLogger(l),
	)
}

func ProvideMonitor(
	cfg *config.Config,
	orch *usecase.Orchestrator,
	gen *usecase.SignalGenerator,
	sink domrepo.AlertSink,
	scorer domsvc.ModelScorer,
	adapter *usecase.SignalAdapter,
	book *usecase.SignalBook,
	tm *usecase.TradeManager,
	mt domrepo.Metrics,
	l *logger.Logger,
) *usecase.Monitor {
	return usecase.NewMonitor(usecase.MonitorConfig{
		Symbols:      cfg.Monitor.Symbols,
		Timeframes:   cfg.Monitor.Timeframes,
		Interval:     cfg.Monitor.Interval,
		Quorum:       cfg.Monitor.Quorum,
		AlertOnEmpty: cfg.Monitor.AlertOnEmpty,
	}, orch, gen, sink,
		usecase.WithScoring(scorer, usecase.NewAnalyticsSignalBuilder(), adapter, book),
		usecase.WithMonitorTrades(tm),
		usecase.WithMonitorMetrics(mt),
		usecase.WithMonitorLogger(l),
	)
}

// ProvidePriceRelay returns nil when the Finnhub stream is disabled.
func ProvidePriceRelay(cfg *config.Config, tm *usecase.TradeManager, mt domrepo.Metrics, l *logger.Logger) *usecase.PriceRelay {
	if !cfg.Finnhub.Enabled {
		return nil
	}
	stream := finnhub.New(finnhub.Config{
		APIKey:         cfg.Finnhub.APIKey,
		WebSocketURL:   cfg.Finnhub.WebSocketURL,
		Symbols:        cfg.Finnhub.Symbols,
		ReconnectDelay: cfg.Finnhub.ReconnectDelay,
		PingInterval:   cfg.Finnhub.PingInterval,
	}, l)
	return usecase.NewPriceRelay(stream, tm,
		usecase.WithMaxUpdatesPerSecond(cfg.Trades.MaxUpdatesPerSecond),
		usecase.WithFlushInterval(cfg.Trades.FlushInterval),
		usecase.WithRelayMetrics(mt),
		usecase.WithRelayLogger(l),
	)
}

// ProvideCache fronts Redis with a short in-process layer when Redis is
// enabled and uses the in-process TTL cache alone otherwise.
func ProvideCache(cfg *config.Config, l *logger.Logger) (cache.BytesCache, func(), error) {
	r := cfg.Cache.Redis
	if !r.Enabled {
		return cache.NewTTLCache(), func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
		Prefix:   r.Prefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache connected", logger.String("addr", r.Addr))
	cleanup := func() {
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", logger.Error(err))
		}
	}
	return cache.NewLayeredCache(rc, cfg.Cache.TTL/2), cleanup, nil
}

func ProvideHandler(
	cfg *config.Config,
	orch *usecase.Orchestrator,
	gen *usecase.SignalGenerator,
	adapter *usecase.SignalAdapter,
	book *usecase.SignalBook,
	tm *usecase.TradeManager,
	reg *internalrepo.SourceRegistry,
	c cache.BytesCache,
	l *logger.Logger,
) *api.Handler {
	return api.NewHandler(api.Deps{
		Orchestrator: orch,
		Generator:    gen,
		Adapter:      adapter,
		Book:         book,
		Trades:       tm,
		Sources:      reg,
		Cache:        c,
		Limiter:      ratelimit.New(),
	}, api.Config{
		CacheTTL:      cfg.Cache.TTL,
		RateCapacity:  cfg.RateLimit.Capacity,
		RateRefillSec: cfg.RateLimit.RefillPerSec,
		Timeframes:    cfg.Monitor.Timeframes,
	}, l)
}

// ProvideApp assembles the runnable application.
func ProvideApp(cfg *config.Config, l *logger.Logger, monitor *usecase.Monitor, relay *usecase.PriceRelay, h *api.Handler) *server.App {
	return server.New(cfg, l, monitor, relay, h)
}
