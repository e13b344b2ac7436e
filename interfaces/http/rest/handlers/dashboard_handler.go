package handlers

import (
	_ "embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed dashboard.html
var dashboardHTML string

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

// DashboardHandler renders the monitoring page. The page itself polls the
// JSON endpoints client-side; nothing is server-rendered beyond the title.
type DashboardHandler struct {
	title  string
	logger *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(title string, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{title: title, logger: logger}
}

// Dashboard handles GET /
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, map[string]string{"Title": h.title}); err != nil {
		h.logger.Error("Failed to render dashboard", zap.Error(err))
	}
}
