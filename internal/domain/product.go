package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to products created without a category.
const DefaultCategory = "Uncategorized"

// Product represents an item in the store catalog
type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Category      string          `json:"category" db:"category"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	Description   string          `json:"description" db:"description"`
	ImageURL      string          `json:"image_url" db:"image_url"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// StoreSettings is the single store-wide pricing policy record.
// Exactly one row exists at a time; it is upserted under a fixed key.
type StoreSettings struct {
	StoreName string          `json:"store_name" db:"store_name"`
	Address   string          `json:"address" db:"address"`
	Phone     string          `json:"phone" db:"phone"`
	TaxRate   decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	Currency  string          `json:"currency" db:"currency"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// DefaultStoreSettings returns the fallback policy used before the
// settings row has been created: no tax, dollar currency.
func DefaultStoreSettings() *StoreSettings {
	return &StoreSettings{
		StoreName: "Smart POS",
		Address:   "123 Store St",
		TaxRate:   decimal.Zero,
		Currency:  "$",
	}
}
