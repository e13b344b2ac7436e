// Package coingecko fetches cryptocurrency market listings from the
// CoinGecko REST API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"explorer-backend/domain/exploration"
	apperrors "explorer-backend/pkg/errors"
)

// DefaultBaseURL is the public CoinGecko API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Client pages through the /coins/markets endpoint. Requests are throttled
// with a token bucket to respect the public API's rate limits.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	pages      int
	perPage    int
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithRateLimit overrides the requests-per-second throttle.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient creates a market client fetching the given number of pages at
// the given page size.
func NewClient(pages, perPage int, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		pages:      pages,
		perPage:    perPage,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// marketRow mirrors the fields of one /coins/markets entry that the
// explorer keeps.
type marketRow struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	CurrentPrice *float64 `json:"current_price"`
	MarketCap    *float64 `json:"market_cap"`
	Change24h    *float64 `json:"price_change_percentage_24h"`
}

// Markets fetches every configured page, skipping pages that fail. It
// returns an error only when no page produced data, together with the list
// of skipped pages for the discovery report.
func (c *Client) Markets(ctx context.Context) ([]exploration.Entity, []string, error) {
	var entities []exploration.Entity
	var skipped []string

	for page := 1; page <= c.pages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return entities, skipped, err
		}

		rows, err := c.fetchPage(ctx, page)
		if err != nil {
			c.logger.Warn("Market page fetch failed",
				zap.Int("page", page),
				zap.Error(err),
			)
			skipped = append(skipped, fmt.Sprintf("page %d: %v", page, err))
			continue
		}

		now := time.Now().UTC()
		for _, row := range rows {
			entities = append(entities, &exploration.CryptoAsset{
				Symbol:       strings.ToUpper(row.Symbol),
				Name:         row.Name,
				Price:        deref(row.CurrentPrice),
				MarketCap:    deref(row.MarketCap),
				Change24h:    deref(row.Change24h),
				DiscoveredAt: now,
			})
		}
	}

	if len(entities) == 0 && len(skipped) > 0 {
		return nil, skipped, apperrors.NewExternalError("coingecko", fmt.Errorf("all %d pages failed", c.pages))
	}
	return entities, skipped, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]marketRow, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(c.perPage))
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/coins/markets?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var rows []marketRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
