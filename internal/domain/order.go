package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates how an order was paid
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
	PaymentQR   PaymentMethod = "QR"
)

// Valid reports whether the payment method is one of the known values
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentQR:
		return true
	}
	return false
}

// Order is the settlement record. It is created exactly once, atomically,
// and never mutated afterwards.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	OrderNumber   string          `json:"order_number" db:"order_number"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	AmountPaid    decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	Change        decimal.Decimal `json:"change" db:"change"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	CashierName   string          `json:"cashier_name,omitempty" db:"-"`
	Items         []OrderItem     `json:"items,omitempty" db:"-"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// OrderItem is one line of an order. Price is a frozen copy of the
// product's price at the time of sale, not a live reference; historical
// orders must not change when catalog prices do.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name,omitempty" db:"-"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
}
