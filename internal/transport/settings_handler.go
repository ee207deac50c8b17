package transport

import (
	"errors"
	"net/http"

	"smartpos/internal/domain"
	"smartpos/internal/middleware"
	"smartpos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaveSettingsRequest represents the store settings payload
type SaveSettingsRequest struct {
	StoreName string          `json:"store_name" validate:"required"`
	Address   string          `json:"address"`
	Phone     string          `json:"phone"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Currency  string          `json:"currency"`
}

// SettingsHandler handles HTTP requests for store settings
type SettingsHandler struct {
	settings service.SettingsService
	logger   *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

// RegisterRoutes registers settings routes. Reading is open to all
// authenticated staff (receipts need the currency and tax rate); writing
// is admin-only.
func (h *SettingsHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/settings", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Put("/", h.Save)
		})
	})
}

// Get returns the current store settings (defaults when unset)
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to fetch settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

// Save upserts the store settings
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveSettingsRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Settings validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.settings.Save(r.Context(), &domain.StoreSettings{
		StoreName: req.StoreName,
		Address:   req.Address,
		Phone:     req.Phone,
		TaxRate:   req.TaxRate,
		Currency:  req.Currency,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTaxRate) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to save settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	h.logger.Info("Store settings updated", zap.String("tax_rate", settings.TaxRate.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"settings": settings})
}
