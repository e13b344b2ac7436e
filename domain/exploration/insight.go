package exploration

import (
	"time"

	"github.com/google/uuid"
)

// Insight categories produced by the generation cycle.
const (
	CategoryUniverseOverview = "universe_overview"
	CategoryMarketMovement   = "market_movement"
	CategoryMarketStability  = "market_stability"
	CategoryValueTier        = "value_tier"
	CategorySentiment        = "market_sentiment"
	CategoryVolatilityAlert  = "volatility_alert"
	CategoryNewsMonitoring   = "news_monitoring"
	CategoryResearchTracking = "research_tracking"
	CategoryCrossDomain      = "cross_domain_analysis"
	CategorySystemStatus     = "system_status"
	CategorySystemAlert      = "system_alert"
)

// Insight is a derived, human-readable observation about current entity
// data. Insights are immutable once created and accumulate in append order.
type Insight struct {
	ID             string      `json:"id"`
	Category       string      `json:"category"`
	Description    string      `json:"description"`
	Details        interface{} `json:"details,omitempty"`
	Recommendation string      `json:"recommendation,omitempty"`
	CreatedAt      time.Time   `json:"timestamp"`
}

// NewInsight creates an insight stamped with a fresh ID and creation time.
func NewInsight(category, description string) Insight {
	return Insight{
		ID:          uuid.New().String(),
		Category:    category,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// WithDetails attaches a structured detail payload.
func (i Insight) WithDetails(details interface{}) Insight {
	i.Details = details
	return i
}

// WithRecommendation attaches actionable recommendation text.
func (i Insight) WithRecommendation(text string) Insight {
	i.Recommendation = text
	return i
}

// Mover is the detail payload entry for market-movement insights.
type Mover struct {
	Entity    string  `json:"entity"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
}
