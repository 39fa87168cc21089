package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dvloznov/finance-advisor/internal/api/middleware"
	"github.com/dvloznov/finance-advisor/internal/finance"
	"github.com/rs/zerolog"
)

// DashboardSource builds the overview for a user.
type DashboardSource interface {
	Dashboard(ctx context.Context, userID string) (finance.Dashboard, error)
}

// DashboardHandler handles the dashboard endpoint.
type DashboardHandler struct {
	source DashboardSource
	log    zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(source DashboardSource, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{source: source, log: log}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, err := h.source.Dashboard(ctx, middleware.UserIDFromContext(ctx))
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Server Error")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, d)
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
