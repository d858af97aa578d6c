//go:build wireinject
// +build wireinject

package di

import (
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/pkg/config"
	"FinSignal/pkg/metrics"
	"FinSignal/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		wire.Bind(new(domrepo.Metrics), new(*metrics.Recorder)),

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideSourceRegistry,
		ProvideBarFetcher,
		ProvideAlertSink,
		ProvideTradeSink,
		ProvideModelScorer,

		// Use cases
		ProvideAnalyzerConfig,
		ProvideOrchestrator,
		ProvideSignalGenerator,
		ProvideSignalAdapter,
		ProvideSignalBook,
		ProvideTradeManager,
		ProvideMonitor,
		ProvidePriceRelay,

		// Delivery
		ProvideHandler,
		ProvideApp,
	)
	return nil, nil, nil
}
