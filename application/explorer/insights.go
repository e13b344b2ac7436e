package explorer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"explorer-backend/domain/exploration"
)

// Classification thresholds over 24h percent change and price data.
const (
	moverThreshold      = 5.0   // |change| above this is a significant mover
	stableThreshold     = 2.0   // |change| below this counts as stable
	volatilityThreshold = 15.0  // |change| above this raises an alert
	blueChipMarketCap   = 10e9  // market cap above this is "blue chip"
	cheapGemPriceLow    = 0.01  // cheap-gem price band, lower bound
	cheapGemPriceHigh   = 1.0   // cheap-gem price band, upper bound
	highValuePrice      = 1000.0

	minStableCount = 10 // stability insight only above this count
	topMovers      = 5  // movers reported per bucket
)

// generateInsights runs one derivation cycle over cached data. A panic
// anywhere inside is recovered and replaced by a single fallback insight;
// insights appended before the failure point are kept.
func (e *Engine) generateInsights() {
	e.store.TrimInsights()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Insight generation failed", zap.Any("panic", r))
			e.metrics.RefreshFailures.Inc()
			e.store.AppendInsight(exploration.NewInsight(
				exploration.CategorySystemAlert,
				fmt.Sprintf("Explorer recovering - %d entities discovered so far", e.store.TotalEntities()),
			))
		}
	}()

	snap := e.store.Snapshot()

	populated := make([]string, 0, len(snap.Domains))
	for _, domain := range exploration.AllDomains {
		if len(snap.Domains[domain]) > 0 {
			populated = append(populated, string(domain))
		}
	}

	// Universe overview
	e.store.AppendInsight(exploration.NewInsight(
		exploration.CategoryUniverseOverview,
		fmt.Sprintf("Universe contains %d entities across %d domains: %s",
			snap.TotalEntities(), len(populated), strings.Join(populated, ", ")),
	).WithDetails(map[string]interface{}{
		"entity_count": snap.TotalEntities(),
		"domains":      populated,
	}))

	e.financialInsights(snap.Domains[exploration.DomainFinancial])
	e.newsInsights(snap.Domains[exploration.DomainNews])
	e.researchInsights(snap.Domains[exploration.DomainResearch])

	if len(populated) > 1 {
		e.store.AppendInsight(exploration.NewInsight(
			exploration.CategoryCrossDomain,
			fmt.Sprintf("Cross-domain coverage active: connecting %s", strings.Join(populated, " and ")),
		))
	}

	// System status, appended every cycle
	e.store.AppendInsight(exploration.NewInsight(
		exploration.CategorySystemStatus,
		fmt.Sprintf("Explorer operating autonomously - last update %s", time.Now().UTC().Format("15:04:05")),
	))
}

// marketSummary is the threshold classification of the financial domain
// that insight generation reports on.
type marketSummary struct {
	gainers     []exploration.Mover
	losers      []exploration.Mover
	stableCount int
	positive    int
	negative    int
	blueChips   []string
	cheapGems   []string
	highValue   []string
	volatile    []string
}

// summarizeMarket buckets every crypto asset by its 24h change and price
// data. Movers are sorted by magnitude of change.
func summarizeMarket(entities []exploration.Entity) marketSummary {
	var s marketSummary

	for _, entity := range entities {
		asset, ok := entity.(*exploration.CryptoAsset)
		if !ok {
			continue
		}

		change := asset.Change24h
		switch {
		case math.Abs(change) > moverThreshold:
			mover := exploration.Mover{
				Entity:    asset.Key(),
				Name:      asset.Name,
				Price:     asset.Price,
				Change24h: round2(change),
			}
			if change > 0 {
				s.gainers = append(s.gainers, mover)
			} else {
				s.losers = append(s.losers, mover)
			}
		case math.Abs(change) < stableThreshold:
			s.stableCount++
		}

		if change > 0 {
			s.positive++
		} else if change < 0 {
			s.negative++
		}

		if asset.MarketCap > blueChipMarketCap {
			s.blueChips = append(s.blueChips, asset.Key())
		}
		if asset.Price >= cheapGemPriceLow && asset.Price <= cheapGemPriceHigh && change > 0 {
			s.cheapGems = append(s.cheapGems, asset.Key())
		}
		if asset.Price > highValuePrice {
			s.highValue = append(s.highValue, asset.Key())
		}
		if math.Abs(change) > volatilityThreshold {
			s.volatile = append(s.volatile, asset.Key())
		}
	}

	sortByMagnitude(s.gainers)
	sortByMagnitude(s.losers)
	return s
}

func (e *Engine) financialInsights(entities []exploration.Entity) {
	if len(entities) == 0 {
		return
	}

	s := summarizeMarket(entities)
	gainers, losers := s.gainers, s.losers
	stableCount := s.stableCount
	positive, negative := s.positive, s.negative
	blueChips, cheapGems, highValue, volatile := s.blueChips, s.cheapGems, s.highValue, s.volatile

	if len(gainers)+len(losers) > 0 {
		e.store.AppendInsight(exploration.NewInsight(
			exploration.CategoryMarketMovement,
			fmt.Sprintf("Detected %d cryptocurrencies with significant price movement (>%.0f%%)",
				len(gainers)+len(losers), moverThreshold),
		).WithDetails(map[string]interface{}{
			"gainers":      top(gainers, topMovers),
			"losers":       top(losers, topMovers),
			"total_movers": len(gainers) + len(losers),
		}))
	}

	if stableCount > minStableCount {
		e.store.AppendInsight(exploration.NewInsight(
			exploration.CategoryMarketStability,
			fmt.Sprintf("Market stability detected: %d cryptocurrencies showing low volatility (<%.0f%%)",
				stableCount, stableThreshold),
		).WithDetails(map[string]interface{}{"stable_count": stableCount}))
	}

	if len(blueChips) > 0 || len(cheapGems) > 0 || len(highValue) > 0 {
		insight := exploration.NewInsight(
			exploration.CategoryValueTier,
			fmt.Sprintf("Value tiers: %d blue chips, %d cheap gems with positive momentum, %d high-value assets",
				len(blueChips), len(cheapGems), len(highValue)),
		).WithDetails(map[string]interface{}{
			"blue_chips": capList(blueChips, topMovers),
			"cheap_gems": capList(cheapGems, topMovers),
			"high_value": capList(highValue, topMovers),
		})
		if len(cheapGems) > 0 {
			insight = insight.WithRecommendation(
				fmt.Sprintf("Review %s for early momentum in the sub-$%.0f band", strings.Join(capList(cheapGems, 3), ", "), cheapGemPriceHigh))
		}
		e.store.AppendInsight(insight)
	}

	if positive+negative > 0 {
		pct := float64(positive) / float64(positive+negative) * 100
		label := "bearish"
		if pct >= 50 {
			label = "bullish"
		}
		e.store.AppendInsight(exploration.NewInsight(
			exploration.CategorySentiment,
			fmt.Sprintf("Aggregate market sentiment is %s: %.1f%% of assets moving up", label, pct),
		).WithDetails(map[string]interface{}{
			"positive": positive,
			"negative": negative,
			"percent":  round2(pct),
		}))
	}

	if len(volatile) > 0 {
		e.store.AppendInsight(exploration.NewInsight(
			exploration.CategoryVolatilityAlert,
			fmt.Sprintf("Volatility alert: %d assets exceeded %.0f%% movement in 24h", len(volatile), volatilityThreshold),
		).WithDetails(map[string]interface{}{
			"assets": capList(volatile, topMovers),
		}).WithRecommendation("Check exposure to the flagged assets before the next cycle"))
	}
}

func (e *Engine) newsInsights(entities []exploration.Entity) {
	if len(entities) == 0 {
		return
	}
	sources := make([]string, 0, len(entities))
	for _, entity := range entities {
		sources = append(sources, entity.Key())
	}
	e.store.AppendInsight(exploration.NewInsight(
		exploration.CategoryNewsMonitoring,
		fmt.Sprintf("Active monitoring of %d news sources for real-time updates", len(entities)),
	).WithDetails(map[string]interface{}{"sources": sources}))
}

func (e *Engine) researchInsights(entities []exploration.Entity) {
	if len(entities) == 0 {
		return
	}
	categories := make([]string, 0, len(entities))
	for _, entity := range entities {
		categories = append(categories, entity.Key())
	}
	e.store.AppendInsight(exploration.NewInsight(
		exploration.CategoryResearchTracking,
		fmt.Sprintf("Tracking %d research categories for new publications", len(entities)),
	).WithDetails(map[string]interface{}{"categories": categories}))
}

func sortByMagnitude(movers []exploration.Mover) {
	sort.Slice(movers, func(i, j int) bool {
		return math.Abs(movers[i].Change24h) > math.Abs(movers[j].Change24h)
	})
}

func top(movers []exploration.Mover, n int) []exploration.Mover {
	if len(movers) > n {
		return movers[:n]
	}
	return movers
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
