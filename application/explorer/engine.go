// Package explorer implements the exploration engine: upstream discovery,
// insight generation, universe search, and status reporting over the
// in-memory store.
package explorer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"explorer-backend/domain/exploration"
	"explorer-backend/infrastructure/persistence/memory"
	"explorer-backend/pkg/observability"
)

// MarketClient lists cryptocurrency market entities.
type MarketClient interface {
	Markets(ctx context.Context) ([]exploration.Entity, []string, error)
}

// FeedClient lists news-source entities.
type FeedClient interface {
	Sources(ctx context.Context) ([]exploration.Entity, []string, error)
}

// ResearchClient lists research-category entities.
type ResearchClient interface {
	Categories(ctx context.Context) ([]exploration.Entity, []string, error)
}

// Engine owns the universe store and derives insights from it. All writes go
// through the Runner's single goroutine; the engine itself does not spawn
// any.
type Engine struct {
	store    *memory.UniverseStore
	markets  MarketClient
	feeds    FeedClient
	research ResearchClient
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewEngine creates an engine over the given store and upstream clients.
func NewEngine(
	store *memory.UniverseStore,
	markets MarketClient,
	feeds FeedClient,
	research ResearchClient,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		store:    store,
		markets:  markets,
		feeds:    feeds,
		research: research,
		metrics:  metrics,
		logger:   logger,
	}
}

// Bootstrap performs the one-time initial population of the universe. Every
// discovery failure is absorbed into the report; the engine is ready
// afterwards even if every source was down.
func (e *Engine) Bootstrap(ctx context.Context) *exploration.DiscoveryReport {
	e.logger.Info("Bootstrapping universe discovery")

	report := e.Discover(ctx)

	e.logger.Info("Bootstrap complete",
		zap.Int("entities", report.TotalEntities()),
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", report.Failed()),
	)
	return report
}

// Discover re-runs every discovery routine sequentially and replaces the
// affected domains wholesale. A routine that fails completely leaves its
// domain untouched.
func (e *Engine) Discover(ctx context.Context) *exploration.DiscoveryReport {
	report := &exploration.DiscoveryReport{StartedAt: time.Now().UTC()}

	report.Results = append(report.Results,
		e.discoverDomain(ctx, exploration.DomainFinancial, "coingecko", e.markets.Markets),
		e.discoverDomain(ctx, exploration.DomainNews, "rss", e.feeds.Sources),
		e.discoverDomain(ctx, exploration.DomainResearch, "arxiv", e.research.Categories),
	)
	report.FinishedAt = time.Now().UTC()

	e.store.SetReport(report)
	e.store.SetState(exploration.ExplorationState{
		TotalDiscoveries: e.store.TotalEntities(),
		UniverseSize:     len(report.Results),
		LastUpdate:       report.FinishedAt,
	})

	e.metrics.DiscoveryRuns.Inc()
	for _, domain := range exploration.AllDomains {
		e.metrics.UniverseEntities.WithLabelValues(string(domain)).Set(float64(e.store.DomainCount(domain)))
	}

	return report
}

type discoverFunc func(ctx context.Context) ([]exploration.Entity, []string, error)

func (e *Engine) discoverDomain(ctx context.Context, domain exploration.Domain, source string, discover discoverFunc) exploration.SourceResult {
	started := time.Now()

	entities, skipped, err := discover(ctx)
	result := exploration.SourceResult{
		Domain:      domain,
		Source:      source,
		EntityCount: len(entities),
		Skipped:     skipped,
		Duration:    time.Since(started),
		Err:         err,
	}

	if len(skipped) > 0 {
		e.metrics.UpstreamSkips.WithLabelValues(string(domain)).Add(float64(len(skipped)))
	}

	if err != nil {
		e.logger.Error("Discovery routine failed",
			zap.String("domain", string(domain)),
			zap.String("source", source),
			zap.Error(err),
		)
		return result
	}

	e.store.ReplaceDomain(domain, entities)
	e.logger.Info("Discovered domain",
		zap.String("domain", string(domain)),
		zap.Int("entities", len(entities)),
		zap.Int("skipped", len(skipped)),
	)
	return result
}

// Explore recomputes the insight list from currently cached data and updates
// the exploration state. It never re-fetches upstream sources; that is what
// Discover is for.
func (e *Engine) Explore(ctx context.Context) (exploration.ExploreResult, error) {
	if err := ctx.Err(); err != nil {
		return exploration.ExploreResult{}, err
	}

	e.generateInsights()

	now := time.Now().UTC()
	e.store.SetState(exploration.ExplorationState{
		TotalDiscoveries: e.store.TotalEntities(),
		UniverseSize:     len(exploration.AllDomains),
		LastUpdate:       now,
	})

	e.metrics.RefreshCycles.Inc()
	e.metrics.InsightsHeld.Set(float64(e.store.InsightCount()))

	return exploration.ExploreResult{
		InsightsGenerated: e.store.InsightCount(),
		Timestamp:         now,
	}, nil
}

// RecentInsights returns up to limit of the most recent insights.
func (e *Engine) RecentInsights(limit int) []exploration.Insight {
	return e.store.RecentInsights(limit)
}

// Store exposes the underlying store for status and tests.
func (e *Engine) Store() *memory.UniverseStore {
	return e.store
}
