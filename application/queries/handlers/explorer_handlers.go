// Package handlers implements the query handlers backed by the explorer
// engine.
package handlers

import (
	"context"
	"fmt"

	"explorer-backend/application/explorer"
	"explorer-backend/application/queries"
	"explorer-backend/application/queries/bus"
)

// GetStatusHandler serves GetStatusQuery.
type GetStatusHandler struct {
	engine *explorer.Engine
}

// NewGetStatusHandler creates the handler.
func NewGetStatusHandler(engine *explorer.Engine) *GetStatusHandler {
	return &GetStatusHandler{engine: engine}
}

// Handle implements bus.QueryHandler.
func (h *GetStatusHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	if _, ok := query.(queries.GetStatusQuery); !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}
	return h.engine.Status(), nil
}

// SearchUniverseHandler serves SearchUniverseQuery.
type SearchUniverseHandler struct {
	engine *explorer.Engine
}

// NewSearchUniverseHandler creates the handler.
func NewSearchUniverseHandler(engine *explorer.Engine) *SearchUniverseHandler {
	return &SearchUniverseHandler{engine: engine}
}

// Handle implements bus.QueryHandler.
func (h *SearchUniverseHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.SearchUniverseQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}
	return h.engine.Search(q.Term), nil
}

// GetInsightsHandler serves GetInsightsQuery.
type GetInsightsHandler struct {
	engine *explorer.Engine
}

// NewGetInsightsHandler creates the handler.
func NewGetInsightsHandler(engine *explorer.Engine) *GetInsightsHandler {
	return &GetInsightsHandler{engine: engine}
}

// Handle implements bus.QueryHandler.
func (h *GetInsightsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetInsightsQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}
	limit := q.Limit
	if limit == 0 {
		limit = queries.DefaultInsightLimit
	}
	return h.engine.RecentInsights(limit), nil
}
