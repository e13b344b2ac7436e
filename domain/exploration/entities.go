package exploration

import (
	"strconv"
	"time"
)

// CryptoAsset is one cryptocurrency from the market-listing API.
type CryptoAsset struct {
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Price        float64   `json:"current_price"`
	MarketCap    float64   `json:"market_cap"`
	Change24h    float64   `json:"price_change_24h"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Key returns the symbol paired with its quote currency, e.g. "BTC-USD".
func (a *CryptoAsset) Key() string {
	return a.Symbol + "-USD"
}

// Attributes implements Entity.
func (a *CryptoAsset) Attributes() []Attribute {
	return []Attribute{
		StringAttr("name", a.Name),
		NumberAttr("current_price", a.Price),
		NumberAttr("market_cap", a.MarketCap),
		NumberAttr("price_change_24h", a.Change24h),
		StringAttr("discovered_at", a.DiscoveredAt.Format(time.RFC3339)),
		StringAttr("type", "cryptocurrency"),
	}
}

// NewsSource is one monitored RSS/Atom feed.
type NewsSource struct {
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	ArticleCount  int       `json:"articles_count"`
	LatestArticle string    `json:"latest_article"`
	DiscoveredAt  time.Time `json:"discovered_at"`
}

// Key returns the feed title, falling back to the URL for untitled feeds.
func (s *NewsSource) Key() string {
	if s.Title != "" {
		return s.Title
	}
	return s.URL
}

// Attributes implements Entity.
func (s *NewsSource) Attributes() []Attribute {
	return []Attribute{
		StringAttr("url", s.URL),
		NumberAttr("articles_count", float64(s.ArticleCount)),
		StringAttr("latest_article", s.LatestArticle),
		StringAttr("discovered_at", s.DiscoveredAt.Format(time.RFC3339)),
		StringAttr("type", "news_source"),
	}
}

// ResearchCategory is one paper-index category with its recent-paper count.
type ResearchCategory struct {
	Code         string    `json:"category"`
	RecentPapers int       `json:"recent_papers"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Key returns the category code, e.g. "cs.AI".
func (c *ResearchCategory) Key() string {
	return c.Code
}

// Attributes implements Entity.
func (c *ResearchCategory) Attributes() []Attribute {
	return []Attribute{
		NumberAttr("recent_papers", float64(c.RecentPapers)),
		StringAttr("category", c.Code),
		StringAttr("discovered_at", c.DiscoveredAt.Format(time.RFC3339)),
		StringAttr("type", "research_category"),
	}
}

// AttributeValue renders an attribute for JSON payloads, keeping numbers as
// numbers and strings as strings.
func AttributeValue(attr Attribute) interface{} {
	if attr.Kind == AttributeNumber {
		return attr.Number
	}
	return attr.String
}

// FormatChange renders a 24h percent change the way the dashboard shows it.
func FormatChange(change float64) string {
	return strconv.FormatFloat(change, 'f', 2, 64) + "%"
}
