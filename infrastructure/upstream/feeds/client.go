// Package feeds fetches RSS/Atom news feeds and reduces each one to a
// NewsSource entity.
package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"explorer-backend/domain/exploration"
	apperrors "explorer-backend/pkg/errors"
)

// DefaultSources is the fixed feed list polled when none is configured.
var DefaultSources = []string{
	"https://feeds.feedburner.com/TechCrunch",
	"https://www.wired.com/feed/rss",
	"https://feeds.reuters.com/reuters/businessNews",
}

// Client parses a fixed list of feed URLs.
type Client struct {
	sources []string
	parser  *gofeed.Parser
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a feed client for the given source URLs.
func NewClient(sources []string, timeout time.Duration, logger *zap.Logger) *Client {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &Client{
		sources: sources,
		parser:  gofeed.NewParser(),
		timeout: timeout,
		logger:  logger,
	}
}

// Sources fetches every configured feed, skipping sources that fail. It
// returns an error only when every feed failed.
func (c *Client) Sources(ctx context.Context) ([]exploration.Entity, []string, error) {
	var entities []exploration.Entity
	var skipped []string

	for _, sourceURL := range c.sources {
		feed, err := c.fetch(ctx, sourceURL)
		if err != nil {
			c.logger.Warn("News source fetch failed",
				zap.String("url", sourceURL),
				zap.Error(err),
			)
			skipped = append(skipped, fmt.Sprintf("%s: %v", sourceURL, err))
			continue
		}
		if len(feed.Items) == 0 {
			skipped = append(skipped, fmt.Sprintf("%s: empty feed", sourceURL))
			continue
		}

		source := &exploration.NewsSource{
			Title:        feed.Title,
			URL:          sourceURL,
			ArticleCount: len(feed.Items),
			DiscoveredAt: time.Now().UTC(),
		}
		if len(feed.Items) > 0 {
			source.LatestArticle = feed.Items[0].Title
		}
		entities = append(entities, source)
	}

	if len(entities) == 0 && len(skipped) > 0 {
		return nil, skipped, apperrors.NewExternalError("feeds", fmt.Errorf("all %d sources failed", len(c.sources)))
	}
	return entities, skipped, nil
}

func (c *Client) fetch(ctx context.Context, sourceURL string) (*gofeed.Feed, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.parser.ParseURLWithContext(sourceURL, fetchCtx)
}
