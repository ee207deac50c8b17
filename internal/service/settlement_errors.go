package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settlement error taxonomy. Every failure path of Settle returns exactly
// one of these types; nothing is logged-and-swallowed inside the engine.

// ValidationError reports malformed checkout input. Not retryable.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid checkout request: " + e.Reason
}

// NotFoundError reports a cart line referencing a product that no longer
// exists. The caller must refresh the cart.
type NotFoundError struct {
	ProductID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// InsufficientStockError reports a cart line requesting more units than
// are available. The caller must adjust the quantity.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s, available: %d", e.ProductName, e.Available)
}

// InsufficientPaymentError reports tendered cash below the computed
// total. The caller must collect more payment.
type InsufficientPaymentError struct {
	Required decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment amount, total is %s", e.Required.StringFixed(2))
}

// ConflictError reports a lost race with a concurrent settlement (stock
// depleted between validation and commit, or the order number could not
// be assigned). The commit was rolled back; retrying the settlement is
// safe.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "settlement conflict: " + e.Reason
}

// PersistenceError reports a storage fault during the commit. The caller
// may retry but must not assume partial success: the transaction either
// committed fully or not at all.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "settlement persistence failure: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
