// Package di wires the service's dependencies together.
package di

import (
	"go.uber.org/zap"

	"explorer-backend/application/explorer"
	"explorer-backend/application/queries"
	querybus "explorer-backend/application/queries/bus"
	queryhandlers "explorer-backend/application/queries/handlers"
	"explorer-backend/infrastructure/config"
	"explorer-backend/infrastructure/persistence/memory"
	"explorer-backend/infrastructure/upstream/arxiv"
	"explorer-backend/infrastructure/upstream/coingecko"
	"explorer-backend/infrastructure/upstream/feeds"
	"explorer-backend/pkg/observability"
)

// metricsNamespace prefixes every Prometheus metric.
const metricsNamespace = "explorer"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideStore creates the in-memory universe store
func ProvideStore(cfg *config.Config) *memory.UniverseStore {
	return memory.NewUniverseStore(cfg.InsightCap, cfg.InsightTrim)
}

// ProvideMarketClient creates the cryptocurrency market client
func ProvideMarketClient(cfg *config.Config, logger *zap.Logger) explorer.MarketClient {
	return coingecko.NewClient(
		cfg.MarketPages,
		cfg.MarketPageSize,
		cfg.UpstreamTimeout,
		logger,
		coingecko.WithRateLimit(cfg.UpstreamRate),
	)
}

// ProvideFeedClient creates the news feed client
func ProvideFeedClient(cfg *config.Config, logger *zap.Logger) explorer.FeedClient {
	return feeds.NewClient(cfg.FeedURLs, cfg.UpstreamTimeout, logger)
}

// ProvideResearchClient creates the research index client
func ProvideResearchClient(cfg *config.Config, logger *zap.Logger) explorer.ResearchClient {
	return arxiv.NewClient(
		cfg.ArxivCategories,
		cfg.UpstreamTimeout,
		logger,
		arxiv.WithRateLimit(cfg.UpstreamRate),
	)
}

// ProvideEngine creates the exploration engine
func ProvideEngine(
	store *memory.UniverseStore,
	markets explorer.MarketClient,
	feedClient explorer.FeedClient,
	research explorer.ResearchClient,
	metrics *observability.Collector,
	logger *zap.Logger,
) *explorer.Engine {
	return explorer.NewEngine(store, markets, feedClient, research, metrics, logger)
}

// ProvideDynamic creates the runtime-changeable settings holder
func ProvideDynamic(cfg *config.Config) *config.Dynamic {
	return config.NewDynamic(cfg)
}

// ProvideRunner creates the single-writer run loop
func ProvideRunner(engine *explorer.Engine, dynamic *config.Dynamic, logger *zap.Logger) *explorer.Runner {
	return explorer.NewRunner(engine, dynamic, logger)
}

// busMetricsAdapter exposes the collector through the query bus interface.
type busMetricsAdapter struct {
	collector *observability.Collector
}

func (a busMetricsAdapter) StartTimer(metric, label string) querybus.Timer {
	return a.collector.StartTimer(metric, label)
}

func (a busMetricsAdapter) Increment(metric, label string) {
	a.collector.Increment(metric, label)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(engine *explorer.Engine, metrics *observability.Collector) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	middleware := querybus.NewMetricsMiddleware(busMetricsAdapter{collector: metrics})

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetStatusQuery{}, queryhandlers.NewGetStatusHandler(engine)},
		{queries.SearchUniverseQuery{}, queryhandlers.NewSearchUniverseHandler(engine)},
		{queries.GetInsightsQuery{}, queryhandlers.NewGetInsightsHandler(engine)},
	}
	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, middleware.Wrap(reg.handler)); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}
