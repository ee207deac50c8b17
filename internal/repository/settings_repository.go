package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartpos/internal/domain"
)

// settingsRowID pins the store settings to a single row; Upsert always
// targets this key so exactly one active policy record exists.
const settingsRowID = 1

// SettingsRepository defines the interface for store settings access
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.StoreSettings, error)
	Upsert(ctx context.Context, settings *domain.StoreSettings) error
}

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get retrieves the store settings, falling back to defaults when the
// row has not been created yet. Callers never see a not-found error.
func (r *settingsRepository) Get(ctx context.Context) (*domain.StoreSettings, error) {
	query := `
		SELECT store_name, address, phone, tax_rate, currency, updated_at
		FROM store_settings
		WHERE id = $1
	`

	settings := &domain.StoreSettings{}
	err := r.db.QueryRowContext(ctx, query, settingsRowID).Scan(
		&settings.StoreName,
		&settings.Address,
		&settings.Phone,
		&settings.TaxRate,
		&settings.Currency,
		&settings.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return domain.DefaultStoreSettings(), nil
		}
		return nil, fmt.Errorf("failed to get store settings: %w", err)
	}

	return settings, nil
}

// Upsert writes the store settings under the fixed key
func (r *settingsRepository) Upsert(ctx context.Context, settings *domain.StoreSettings) error {
	query := `
		INSERT INTO store_settings (id, store_name, address, phone, tax_rate, currency, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE
		SET store_name = EXCLUDED.store_name,
		    address = EXCLUDED.address,
		    phone = EXCLUDED.phone,
		    tax_rate = EXCLUDED.tax_rate,
		    currency = EXCLUDED.currency,
		    updated_at = NOW()
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		settingsRowID,
		settings.StoreName,
		settings.Address,
		settings.Phone,
		settings.TaxRate,
		settings.Currency,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert store settings: %w", err)
	}

	return nil
}
