package transport

import (
	"net/http"

	"smartpos/internal/middleware"
	"smartpos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecommendationRequest carries the product ids currently in the cart
type RecommendationRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1,dive,uuid"`
}

// RecommendationHandler handles HTTP requests for cart recommendations
type RecommendationHandler struct {
	recommendations service.RecommendationService
	logger          *zap.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler
func NewRecommendationHandler(recommendations service.RecommendationService, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations: recommendations,
		logger:          logger,
	}
}

// RegisterRoutes registers recommendation routes; all require authentication
func (h *RecommendationHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/recommendations", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Recommend)
	})
}

// Recommend suggests complementary products for the cart. Failures in
// the suggestion pipeline yield an empty list, never an error status.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Recommendation validation failed", zap.Error(err))
		middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"recommendations": []service.Recommendation{}})
		return
	}

	productIDs := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		productIDs = append(productIDs, id)
	}

	recommendations, err := h.recommendations.Recommend(r.Context(), productIDs)
	if err != nil {
		h.logger.Warn("Recommendation pipeline failed", zap.Error(err))
		recommendations = []service.Recommendation{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"recommendations": recommendations})
}
