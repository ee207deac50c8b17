package service

import (
	"context"
	"errors"
	"fmt"

	"smartpos/internal/domain"
	"smartpos/internal/repository"
)

var ErrInvalidTaxRate = errors.New("tax rate must not be negative")

// SettingsService defines the interface for store settings business logic
type SettingsService interface {
	Get(ctx context.Context) (*domain.StoreSettings, error)
	Save(ctx context.Context, settings *domain.StoreSettings) (*domain.StoreSettings, error)
}

type settingsService struct {
	settings repository.SettingsRepository
}

// NewSettingsService creates a new instance of SettingsService
func NewSettingsService(settings repository.SettingsRepository) SettingsService {
	return &settingsService{settings: settings}
}

// Get retrieves the current store settings (defaults when unset)
func (s *settingsService) Get(ctx context.Context) (*domain.StoreSettings, error) {
	return s.settings.Get(ctx)
}

// Save upserts the store settings and returns the stored record
func (s *settingsService) Save(ctx context.Context, settings *domain.StoreSettings) (*domain.StoreSettings, error) {
	if settings.TaxRate.IsNegative() {
		return nil, ErrInvalidTaxRate
	}
	if settings.Currency == "" {
		settings.Currency = domain.DefaultStoreSettings().Currency
	}

	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	return s.settings.Get(ctx)
}
