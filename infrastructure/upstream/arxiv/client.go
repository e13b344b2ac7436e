// Package arxiv queries the arXiv Atom API for recent-paper counts per
// research category.
package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"explorer-backend/domain/exploration"
	apperrors "explorer-backend/pkg/errors"
)

// DefaultBaseURL is the public arXiv query endpoint.
const DefaultBaseURL = "http://export.arxiv.org/api/query"

// DefaultCategories is the fixed category list queried when none is
// configured.
var DefaultCategories = []string{"cs.AI", "cs.LG", "cs.CL", "cs.CV", "cs.RO"}

// maxResults bounds each category query; the count of returned entries is
// the "recent papers" figure.
const maxResults = 10

// Client queries one category at a time, throttled between requests.
type Client struct {
	baseURL    string
	categories []string
	httpClient *http.Client
	parser     *gofeed.Parser
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the query endpoint, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithRateLimit overrides the requests-per-second throttle.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient creates a research-index client for the given categories.
func NewClient(categories []string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		categories: categories,
		httpClient: &http.Client{Timeout: timeout},
		parser:     gofeed.NewParser(),
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categories queries every configured category, skipping ones that fail. It
// returns an error only when every category failed.
func (c *Client) Categories(ctx context.Context) ([]exploration.Entity, []string, error) {
	var entities []exploration.Entity
	var skipped []string

	for _, category := range c.categories {
		if err := c.limiter.Wait(ctx); err != nil {
			return entities, skipped, err
		}

		count, err := c.recentPapers(ctx, category)
		if err != nil {
			c.logger.Warn("Research category query failed",
				zap.String("category", category),
				zap.Error(err),
			)
			skipped = append(skipped, fmt.Sprintf("%s: %v", category, err))
			continue
		}

		entities = append(entities, &exploration.ResearchCategory{
			Code:         category,
			RecentPapers: count,
			DiscoveredAt: time.Now().UTC(),
		})
	}

	if len(entities) == 0 && len(skipped) > 0 {
		return nil, skipped, apperrors.NewExternalError("arxiv", fmt.Errorf("all %d categories failed", len(c.categories)))
	}
	return entities, skipped, nil
}

func (c *Client) recentPapers(ctx context.Context, category string) (int, error) {
	params := url.Values{}
	params.Set("search_query", "cat:"+category)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return 0, err
	}
	return len(feed.Items), nil
}
