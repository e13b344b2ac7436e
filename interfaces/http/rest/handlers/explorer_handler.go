// Package handlers contains the HTTP handlers for the explorer's read and
// trigger endpoints.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"explorer-backend/application/explorer"
	"explorer-backend/application/queries"
	querybus "explorer-backend/application/queries/bus"
	"explorer-backend/pkg/common"
)

// ExplorerHandler handles exploration-related HTTP requests
type ExplorerHandler struct {
	queryBus *querybus.QueryBus
	runner   *explorer.Runner
	logger   *zap.Logger
}

// NewExplorerHandler creates a new explorer handler
func NewExplorerHandler(queryBus *querybus.QueryBus, runner *explorer.Runner, logger *zap.Logger) *ExplorerHandler {
	return &ExplorerHandler{
		queryBus: queryBus,
		runner:   runner,
		logger:   logger,
	}
}

// Status handles GET /status
func (h *ExplorerHandler) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetStatusQuery{})
	if err != nil {
		h.logger.Error("Failed to get status", zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError,
			common.StandardErrorCodes.InternalError, "Failed to get status")
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Insights handles GET /insights
func (h *ExplorerHandler) Insights(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetInsightsQuery{Limit: queries.DefaultInsightLimit})
	if err != nil {
		h.logger.Error("Failed to get insights", zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError,
			common.StandardErrorCodes.InternalError, "Failed to get insights")
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Search handles GET /search/{term}
func (h *ExplorerHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := chi.URLParam(r, "term")
	if term == "" {
		common.RespondError(w, http.StatusBadRequest,
			common.StandardErrorCodes.BadRequest, "Search term is required")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.SearchUniverseQuery{Term: term})
	if err != nil {
		h.logger.Error("Search failed",
			zap.String("term", term),
			zap.Error(err),
		)
		common.RespondError(w, http.StatusBadRequest,
			common.StandardErrorCodes.ValidationError, "Invalid search term")
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Explore handles GET /explore: it triggers one refresh cycle on the run
// loop and reports the outcome with HTTP 200 either way.
func (h *ExplorerHandler) Explore(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.TriggerExplore(r.Context())
	if err != nil {
		h.logger.Error("Manual exploration failed", zap.Error(err))
		common.RespondTriggerFailure(w, err)
		return
	}
	common.RespondTriggerSuccess(w, result)
}

// Discover handles GET /discover: it re-runs upstream discovery on the run
// loop and returns the per-source report.
func (h *ExplorerHandler) Discover(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.TriggerDiscover(r.Context())
	if err != nil {
		h.logger.Error("Manual discovery failed", zap.Error(err))
		common.RespondTriggerFailure(w, err)
		return
	}

	// SourceResult errors do not serialize; surface them as strings.
	results := make([]map[string]interface{}, 0, len(report.Results))
	for _, res := range report.Results {
		entry := map[string]interface{}{
			"domain":       res.Domain,
			"source":       res.Source,
			"entity_count": res.EntityCount,
			"skipped":      res.Skipped,
		}
		if res.Failed() {
			entry["error"] = res.Error()
		}
		results = append(results, entry)
	}
	common.RespondTriggerSuccess(w, map[string]interface{}{
		"results":        results,
		"succeeded":      report.Succeeded(),
		"failed":         report.Failed(),
		"total_entities": report.TotalEntities(),
	})
}
