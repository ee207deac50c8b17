package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"smartpos/internal/domain"
	"smartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// orderNumberAttempts bounds regeneration when the random suffix
	// collides with an existing order number on the same day.
	orderNumberAttempts = 5
)

// paymentTolerance absorbs cent-level noise in the tendered amount so a
// customer handing over 109.99 against a 110.00 total is not rejected.
var paymentTolerance = decimal.NewFromFloat(0.01)

// CartLine is one entry of a checkout request. Prices are never accepted
// from the client; only the product reference and quantity matter.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// SettlementService validates a proposed cart, computes the final charge
// and commits the order atomically, or fails without side effects.
type SettlementService interface {
	Settle(ctx context.Context, cashierID uuid.UUID, cart []CartLine, discount decimal.Decimal, method domain.PaymentMethod, amountTendered decimal.Decimal) (*domain.Order, error)
}

type settlementService struct {
	products repository.ProductRepository
	settings repository.SettingsRepository
	orders   repository.OrderRepository
	now      func() time.Time
}

// NewSettlementService creates a new instance of SettlementService
func NewSettlementService(
	products repository.ProductRepository,
	settings repository.SettingsRepository,
	orders repository.OrderRepository,
) SettlementService {
	return &settlementService{
		products: products,
		settings: settings,
		orders:   orders,
		now:      time.Now,
	}
}

// Settle runs the checkout algorithm in strict order: validate the cart
// against authoritative stock and prices, snapshot the tax rate, compute
// totals, verify payment, then commit order + items + stock decrements
// as one transaction and re-read the result for the receipt.
//
// Duplicate lines for the same product are deliberately kept as
// independent line items. Each passes its own stock check; if together
// they overdraw the stock, the conditional decrement inside the commit
// catches it and the settlement fails with a ConflictError.
func (s *settlementService) Settle(
	ctx context.Context,
	cashierID uuid.UUID,
	cart []CartLine,
	discount decimal.Decimal,
	method domain.PaymentMethod,
	amountTendered decimal.Decimal,
) (*domain.Order, error) {
	if len(cart) == 0 {
		return nil, &ValidationError{Reason: "empty cart"}
	}
	if !method.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown payment method %q", method)}
	}
	if discount.IsNegative() {
		return nil, &ValidationError{Reason: "discount must not be negative"}
	}
	for _, line := range cart {
		if line.Quantity < 1 {
			return nil, &ValidationError{Reason: "quantity must be at least 1"}
		}
	}

	// Re-derive every price from the catalog; client-supplied prices are
	// discarded before this point.
	subtotal := decimal.Zero
	items := make([]domain.OrderItem, 0, len(cart))
	for _, line := range cart {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, &NotFoundError{ProductID: line.ProductID}
			}
			return nil, &PersistenceError{Err: err}
		}

		if line.Quantity > product.StockQuantity {
			return nil, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.StockQuantity,
			}
		}

		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, domain.OrderItem{
			ID:        uuid.New(),
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     product.Price, // frozen at time of sale
		})
	}

	// Tax rate is snapshotted once per settlement; the pricing math never
	// re-reads mutable configuration.
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	totals := ComputeTotals(subtotal, discount, settings.TaxRate)

	amountPaid := amountTendered
	change := decimal.Zero
	switch method {
	case domain.PaymentCash:
		if amountTendered.LessThan(totals.Total.Sub(paymentTolerance)) {
			return nil, &InsufficientPaymentError{Required: totals.Total}
		}
		change = amountTendered.Sub(totals.Total)
		if change.IsNegative() {
			change = decimal.Zero
		}
	default:
		// Card and QR capture exactly the computed total; whatever the
		// client sent as tendered amount is ignored.
		amountPaid = totals.Total
	}

	order := &domain.Order{
		ID:            uuid.New(),
		TotalAmount:   totals.Total,
		Discount:      discount,
		PaymentMethod: method,
		AmountPaid:    amountPaid,
		Change:        change,
		UserID:        cashierID,
		CreatedAt:     s.now().UTC(),
	}
	for i := range items {
		items[i].OrderID = order.ID
	}

	if err := s.commit(ctx, order, items); err != nil {
		return nil, err
	}

	receipt, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return receipt, nil
}

// commit assigns an order number and persists the settlement, retrying
// with a fresh number when the random suffix collides.
func (s *settlementService) commit(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	var stockConflict *repository.StockConflictError

	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number, err := s.generateOrderNumber()
		if err != nil {
			return &PersistenceError{Err: err}
		}
		order.OrderNumber = number

		err = s.orders.Create(ctx, order, items)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrOrderNumberTaken):
			continue
		case errors.As(err, &stockConflict):
			return &ConflictError{
				Reason: fmt.Sprintf("stock for product %s was depleted concurrently", stockConflict.ProductID),
			}
		default:
			return &PersistenceError{Err: err}
		}
	}

	return &ConflictError{Reason: "could not assign a unique order number"}
}

// generateOrderNumber produces a human-readable, date-stamped number of
// the form ORD-YYYYMMDD-NNNN. Uniqueness is enforced by the database;
// collisions surface as ErrOrderNumberTaken and are retried.
func (s *settlementService) generateOrderNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate order number suffix: %w", err)
	}
	suffix := n.Int64() + 1000

	return fmt.Sprintf("ORD-%s-%04d", s.now().Format("20060102"), suffix), nil
}
