package transport

import (
	"errors"
	"net/http"

	"smartpos/internal/domain"
	"smartpos/internal/middleware"
	"smartpos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutItem is one cart line of a checkout request. Any price or
// stock fields the client might send are not modeled here at all: the
// engine re-derives them from the catalog.
type CheckoutItem struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// CheckoutRequest represents the checkout request payload
type CheckoutRequest struct {
	Items          []CheckoutItem  `json:"items" validate:"required,min=1,dive"`
	Discount       decimal.Decimal `json:"discount"`
	PaymentMethod  string          `json:"payment_method" validate:"required,oneof=CASH CARD QR"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
}

// CheckoutResponse wraps the persisted order for receipt rendering
type CheckoutResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
}

// CheckoutHandler handles HTTP requests for checkout and order history
type CheckoutHandler struct {
	settlement service.SettlementService
	logger     *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(settlement service.SettlementService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		settlement: settlement,
		logger:     logger,
	}
}

// RegisterRoutes registers checkout routes; all require authentication
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/checkout", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Checkout)
	})
}

// Checkout validates and settles a cart, returning the persisted order
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cashierID, ok := authenticatedUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart := make([]service.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id: "+item.ProductID)
			return
		}
		cart = append(cart, service.CartLine{ProductID: productID, Quantity: item.Quantity})
	}

	order, err := h.settlement.Settle(
		r.Context(),
		cashierID,
		cart,
		req.Discount,
		domain.PaymentMethod(req.PaymentMethod),
		req.AmountTendered,
	)
	if err != nil {
		h.respondSettlementError(w, err)
		return
	}

	h.logger.Info("Order settled",
		zap.String("order_number", order.OrderNumber),
		zap.String("cashier_id", cashierID.String()),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, CheckoutResponse{Success: true, Order: order})
}

// respondSettlementError maps the settlement error taxonomy onto HTTP
// statuses. Conflicts get 409 so clients know a retry is safe.
func (h *CheckoutHandler) respondSettlementError(w http.ResponseWriter, err error) {
	var (
		validationErr  *service.ValidationError
		notFoundErr    *service.NotFoundError
		stockErr       *service.InsufficientStockError
		paymentErr     *service.InsufficientPaymentError
		conflictErr    *service.ConflictError
		persistenceErr *service.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		middleware.RespondWithError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		middleware.RespondWithError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &stockErr):
		middleware.RespondWithError(w, http.StatusBadRequest, stockErr.Error())
	case errors.As(err, &paymentErr):
		middleware.RespondWithError(w, http.StatusBadRequest, paymentErr.Error())
	case errors.As(err, &conflictErr):
		middleware.RespondWithError(w, http.StatusConflict, conflictErr.Error())
	case errors.As(err, &persistenceErr):
		h.logger.Error("Settlement persistence failure", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process order")
	default:
		h.logger.Error("Unexpected settlement error", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process order")
	}
}

// authenticatedUserID pulls the cashier identity set by the auth
// middleware. The engine trusts this value as given.
func authenticatedUserID(r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
