package explorer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"explorer-backend/domain/exploration"
	"explorer-backend/infrastructure/persistence/memory"
	"explorer-backend/pkg/observability"
)

// stubSource is a controllable upstream client serving all three domains.
type stubSource struct {
	entities []exploration.Entity
	skipped  []string
	err      error
}

func (s *stubSource) Markets(ctx context.Context) ([]exploration.Entity, []string, error) {
	return s.entities, s.skipped, s.err
}

func (s *stubSource) Sources(ctx context.Context) ([]exploration.Entity, []string, error) {
	return s.entities, s.skipped, s.err
}

func (s *stubSource) Categories(ctx context.Context) ([]exploration.Entity, []string, error) {
	return s.entities, s.skipped, s.err
}

func failingSource(msg string) *stubSource {
	return &stubSource{err: errors.New(msg)}
}

func sampleAssets() []exploration.Entity {
	now := time.Now().UTC()
	return []exploration.Entity{
		&exploration.CryptoAsset{Symbol: "BTC", Name: "Bitcoin", Price: 65000, MarketCap: 1.2e12, Change24h: 12.0, DiscoveredAt: now},
		&exploration.CryptoAsset{Symbol: "ETH", Name: "Ethereum", Price: 3200, MarketCap: 4e11, Change24h: -11.0, DiscoveredAt: now},
		&exploration.CryptoAsset{Symbol: "USDT", Name: "Tether", Price: 1.0, MarketCap: 9e10, Change24h: 0.5, DiscoveredAt: now},
	}
}

func sampleNews() []exploration.Entity {
	return []exploration.Entity{
		&exploration.NewsSource{Title: "TechCrunch", URL: "https://techcrunch.com/feed", ArticleCount: 20, LatestArticle: "Startup raises round"},
	}
}

func sampleResearch() []exploration.Entity {
	return []exploration.Entity{
		&exploration.ResearchCategory{Code: "cs.AI", RecentPapers: 10},
	}
}

func newTestEngine(t *testing.T, markets MarketClient, feeds FeedClient, research ResearchClient) *Engine {
	t.Helper()
	store := memory.NewUniverseStore(20, 10)
	metrics := observability.NewCollector("explorer")
	return NewEngine(store, markets, feeds, research, metrics, zap.NewNop())
}

func TestEngine_Bootstrap_AllSourcesFail(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t,
		failingSource("markets down"),
		failingSource("feeds down"),
		failingSource("arxiv down"),
	)

	report := engine.Bootstrap(ctx)

	require.NotNil(t, report)
	assert.Equal(t, 3, report.Failed())
	assert.Equal(t, 0, report.Succeeded())
	assert.Equal(t, 0, engine.Store().TotalEntities())

	// The service stays usable: every read returns a valid empty payload.
	status := engine.Status()
	assert.Equal(t, 0, status.TotalDiscoveries)
	require.NotNil(t, status.LastDiscovery)
	assert.Equal(t, 3, status.LastDiscovery.Failed)

	result := engine.Search("bitcoin")
	assert.Equal(t, 0, result.TotalMatches)
	assert.Empty(t, result.ResultsByDomain)

	_, err := engine.Explore(ctx)
	require.NoError(t, err)
}

func TestEngine_Discover_FailedRoutineKeepsDomain(t *testing.T) {
	ctx := context.Background()
	markets := &stubSource{entities: sampleAssets()}
	engine := newTestEngine(t, markets, &stubSource{entities: sampleNews()}, &stubSource{entities: sampleResearch()})

	first := engine.Discover(ctx)
	require.Equal(t, 3, first.Succeeded())
	require.Equal(t, 3, engine.Store().DomainCount(exploration.DomainFinancial))

	// The market source goes down; its domain must survive the next run.
	markets.entities = nil
	markets.err = errors.New("rate limited")

	second := engine.Discover(ctx)
	assert.Equal(t, 1, second.Failed())
	assert.Equal(t, 3, engine.Store().DomainCount(exploration.DomainFinancial))
	assert.Equal(t, 1, engine.Store().DomainCount(exploration.DomainNews))
}

func TestEngine_Discover_ReplacesDomainWholesale(t *testing.T) {
	ctx := context.Background()
	markets := &stubSource{entities: sampleAssets()}
	engine := newTestEngine(t, markets, &stubSource{entities: sampleNews()}, &stubSource{entities: sampleResearch()})

	engine.Discover(ctx)
	require.Equal(t, 3, engine.Store().DomainCount(exploration.DomainFinancial))

	markets.entities = sampleAssets()[:1]
	engine.Discover(ctx)

	assert.Equal(t, 1, engine.Store().DomainCount(exploration.DomainFinancial))
	entities := engine.Store().DomainEntities(exploration.DomainFinancial)
	require.Len(t, entities, 1)
	assert.Equal(t, "BTC-USD", entities[0].Key())
}

func TestEngine_Discover_RecordsSkips(t *testing.T) {
	ctx := context.Background()
	markets := &stubSource{entities: sampleAssets(), skipped: []string{"page 2: unexpected status 429"}}
	engine := newTestEngine(t, markets, &stubSource{entities: sampleNews()}, &stubSource{entities: sampleResearch()})

	report := engine.Discover(ctx)

	require.Equal(t, 3, report.Succeeded())
	assert.Equal(t, []string{"page 2: unexpected status 429"}, report.Results[0].Skipped)

	status := engine.Status()
	require.NotNil(t, status.LastDiscovery)
	assert.Equal(t, 1, status.LastDiscovery.Skipped)
}

func TestSummarizeMarket_ChangeClassification(t *testing.T) {
	now := time.Now().UTC()
	entities := []exploration.Entity{
		&exploration.CryptoAsset{Symbol: "AAA", Name: "Alpha", Price: 10, Change24h: 12.0, DiscoveredAt: now},
		&exploration.CryptoAsset{Symbol: "BBB", Name: "Beta", Price: 20, Change24h: -11.0, DiscoveredAt: now},
		&exploration.CryptoAsset{Symbol: "CCC", Name: "Gamma", Price: 30, Change24h: 1.0, DiscoveredAt: now},
		&exploration.CryptoAsset{Symbol: "DDD", Name: "Delta", Price: 40, Change24h: 0.5, DiscoveredAt: now},
	}

	s := summarizeMarket(entities)

	require.Len(t, s.gainers, 1)
	require.Len(t, s.losers, 1)
	assert.Equal(t, "AAA-USD", s.gainers[0].Entity)
	assert.Equal(t, 12.0, s.gainers[0].Change24h)
	assert.Equal(t, "BBB-USD", s.losers[0].Entity)
	assert.Equal(t, 2, s.stableCount)
	assert.Equal(t, 3, s.positive)
	assert.Equal(t, 1, s.negative)
}

func TestSummarizeMarket_MoversSortedByMagnitude(t *testing.T) {
	entities := []exploration.Entity{
		&exploration.CryptoAsset{Symbol: "AAA", Change24h: 6.0},
		&exploration.CryptoAsset{Symbol: "BBB", Change24h: 18.0},
		&exploration.CryptoAsset{Symbol: "CCC", Change24h: 9.0},
	}

	s := summarizeMarket(entities)

	require.Len(t, s.gainers, 3)
	assert.Equal(t, "BBB-USD", s.gainers[0].Entity)
	assert.Equal(t, "CCC-USD", s.gainers[1].Entity)
	assert.Equal(t, "AAA-USD", s.gainers[2].Entity)
	assert.Equal(t, []string{"BBB-USD"}, s.volatile)
}

func TestSummarizeMarket_ValueTiers(t *testing.T) {
	entities := []exploration.Entity{
		&exploration.CryptoAsset{Symbol: "BIG", Price: 65000, MarketCap: 1.2e12, Change24h: 0.1},
		&exploration.CryptoAsset{Symbol: "GEM", Price: 0.5, MarketCap: 1e8, Change24h: 3.0},
		&exploration.CryptoAsset{Symbol: "EXP", Price: 1500, MarketCap: 1e9, Change24h: -1.0},
		&exploration.CryptoAsset{Symbol: "FLAT", Price: 0.5, MarketCap: 1e8, Change24h: -3.0},
	}

	s := summarizeMarket(entities)

	assert.Equal(t, []string{"BIG-USD"}, s.blueChips)
	assert.Equal(t, []string{"GEM-USD"}, s.cheapGems)
	assert.Equal(t, []string{"EXP-USD"}, s.highValue)
	assert.Empty(t, s.volatile)
}

func TestEngine_Explore_GeneratesInsights(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, &stubSource{entities: sampleAssets()}, &stubSource{entities: sampleNews()}, &stubSource{entities: sampleResearch()})
	engine.Discover(ctx)

	result, err := engine.Explore(ctx)

	require.NoError(t, err)
	assert.Greater(t, result.InsightsGenerated, 0)
	assert.Equal(t, result.InsightsGenerated, engine.Store().InsightCount())

	categories := make(map[string]bool)
	for _, insight := range engine.Store().RecentInsights(100) {
		categories[insight.Category] = true
		assert.NotEmpty(t, insight.ID)
		assert.NotEmpty(t, insight.Description)
		assert.False(t, insight.CreatedAt.IsZero())
	}
	assert.True(t, categories[exploration.CategoryUniverseOverview])
	assert.True(t, categories[exploration.CategoryMarketMovement])
	assert.True(t, categories[exploration.CategorySentiment])
	assert.True(t, categories[exploration.CategoryNewsMonitoring])
	assert.True(t, categories[exploration.CategoryResearchTracking])
	assert.True(t, categories[exploration.CategoryCrossDomain])
	assert.True(t, categories[exploration.CategorySystemStatus])
}

func TestEngine_Explore_InsightListStaysBounded(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, &stubSource{entities: sampleAssets()}, &stubSource{entities: sampleNews()}, &stubSource{entities: sampleResearch()})
	engine.Discover(ctx)

	first, err := engine.Explore(ctx)
	require.NoError(t, err)
	second, err := engine.Explore(ctx)
	require.NoError(t, err)

	// Back-to-back cycles only accumulate until the cap kicks in.
	assert.GreaterOrEqual(t, second.InsightsGenerated, first.InsightsGenerated)

	perCycle := first.InsightsGenerated
	for i := 0; i < 10; i++ {
		_, err := engine.Explore(ctx)
		require.NoError(t, err)
		assert.LessOrEqual(t, engine.Store().InsightCount(), 20+perCycle)
	}

	// After enough cycles the list settles below the cap, trimmed to the
	// most recent entries.
	assert.LessOrEqual(t, engine.Store().InsightCount(), 20)

	recent := engine.Store().RecentInsights(1)
	require.Len(t, recent, 1)
	assert.Equal(t, exploration.CategorySystemStatus, recent[0].Category)
}

// flakyEntity survives discovery but blows up when insight generation asks
// for its key again.
type flakyEntity struct{ calls int }

func (f *flakyEntity) Key() string {
	f.calls++
	if f.calls > 1 {
		panic("corrupt entity")
	}
	return "flaky"
}

func (f *flakyEntity) Attributes() []exploration.Attribute { return nil }

func TestEngine_Explore_RecoversFromPanic(t *testing.T) {
	ctx := context.Background()
	broken := []exploration.Entity{&flakyEntity{}}
	engine := newTestEngine(t, failingSource("down"), &stubSource{entities: broken}, failingSource("down"))
	engine.Discover(ctx)

	result, err := engine.Explore(ctx)

	require.NoError(t, err)
	assert.Greater(t, result.InsightsGenerated, 0)

	recent := engine.Store().RecentInsights(1)
	require.Len(t, recent, 1)
	assert.Equal(t, exploration.CategorySystemAlert, recent[0].Category)
}

func TestEngine_Explore_CancelledContext(t *testing.T) {
	engine := newTestEngine(t, failingSource("down"), failingSource("down"), failingSource("down"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Explore(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Search_KeyMatch(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, &stubSource{entities: sampleAssets()}, &stubSource{entities: sampleNews()}, &stubSource{entities: sampleResearch()})
	engine.Discover(ctx)

	result := engine.Search("btc")

	assert.Equal(t, "btc", result.SearchTerm)
	assert.Equal(t, 1, result.TotalMatches)
	matches := result.ResultsByDomain[exploration.DomainFinancial]
	require.Len(t, matches, 1)
	assert.Equal(t, "BTC-USD", matches[0].Entity)
	assert.Equal(t, "name", matches[0].MatchType)
	assert.Equal(t, 65000.0, matches[0].Details["current_price"])
}

func TestEngine_Search_AttributeMatch(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, &stubSource{entities: sampleAssets()}, &stubSource{entities: sampleNews()}, &stubSource{entities: sampleResearch()})
	engine.Discover(ctx)

	// "ethereum" is not in the key "ETH-USD" but is the name attribute.
	result := engine.Search("ethereum")

	require.Equal(t, 1, result.TotalMatches)
	matches := result.ResultsByDomain[exploration.DomainFinancial]
	require.Len(t, matches, 1)
	assert.Equal(t, "ETH-USD", matches[0].Entity)
	assert.Equal(t, "name", matches[0].MatchType)
	assert.Equal(t, "Ethereum", matches[0].MatchValue)
}

func TestEngine_Search_AcrossDomains(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, &stubSource{entities: sampleAssets()}, &stubSource{entities: sampleNews()}, &stubSource{entities: sampleResearch()})
	engine.Discover(ctx)

	// "te" hits Tether, TechCrunch, and nothing in research.
	result := engine.Search("te")

	total := 0
	for _, matches := range result.ResultsByDomain {
		total += len(matches)
	}
	assert.Equal(t, result.TotalMatches, total)
	assert.NotEmpty(t, result.ResultsByDomain[exploration.DomainFinancial])
	assert.NotEmpty(t, result.ResultsByDomain[exploration.DomainNews])
}

func TestEngine_Search_NoMatches(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, &stubSource{entities: sampleAssets()}, &stubSource{entities: sampleNews()}, &stubSource{entities: sampleResearch()})
	engine.Discover(ctx)

	result := engine.Search("zzzzzz")

	assert.Equal(t, 0, result.TotalMatches)
	assert.Empty(t, result.ResultsByDomain)
}

func TestEngine_Status_TotalsMatchDomains(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, &stubSource{entities: sampleAssets()}, &stubSource{entities: sampleNews()}, &stubSource{entities: sampleResearch()})
	engine.Discover(ctx)
	_, err := engine.Explore(ctx)
	require.NoError(t, err)

	status := engine.Status()

	total := 0
	for _, stats := range status.UniverseStatistics {
		total += stats.TotalEntities
		assert.LessOrEqual(t, len(stats.SampleEntities), 3)
	}
	assert.Equal(t, total, status.TotalDiscoveries)
	assert.Equal(t, 5, status.TotalDiscoveries)
	assert.Equal(t, engine.Store().InsightCount(), status.AutonomousInsights)
	assert.Equal(t, 5, status.ExplorationState.TotalDiscoveries)

	require.NotNil(t, status.LastDiscovery)
	assert.Equal(t, 3, status.LastDiscovery.Succeeded)
	assert.Equal(t, 0, status.LastDiscovery.Failed)
}
