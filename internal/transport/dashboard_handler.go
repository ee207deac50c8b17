package transport

import (
	"net/http"

	"smartpos/internal/middleware"
	"smartpos/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DashboardHandler handles HTTP requests for the sales dashboard
type DashboardHandler struct {
	dashboard service.DashboardService
	logger    *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboard service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// RegisterRoutes registers dashboard routes; management only
func (h *DashboardHandler) RegisterRoutes(r chi.Router, authMiddleware, managementMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(managementMiddleware)
		r.Get("/stats", h.Stats)
	})
}

// Stats returns the sales overview aggregates
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to assemble dashboard stats", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to fetch dashboard stats")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}
