package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smartpos/internal/domain"
	"smartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProduct = errors.New("product name is required and price/stock must not be negative")
)

// CatalogService defines the interface for product catalog business logic
type CatalogService interface {
	CreateProduct(ctx context.Context, name, category, description, imageURL string, price decimal.Decimal, stockQuantity int) (*domain.Product, error)
	UpdatePriceStock(ctx context.Context, id uuid.UUID, price *decimal.Decimal, stockQuantity *int) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, category string) ([]*domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]*domain.Product, error)
}

type catalogService struct {
	products repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(products repository.ProductRepository) CatalogService {
	return &catalogService{products: products}
}

// CreateProduct adds a product to the catalog. An empty category falls
// back to the uncategorized bucket.
func (s *catalogService) CreateProduct(ctx context.Context, name, category, description, imageURL string, price decimal.Decimal, stockQuantity int) (*domain.Product, error) {
	if strings.TrimSpace(name) == "" || price.IsNegative() || stockQuantity < 0 {
		return nil, ErrInvalidProduct
	}

	if category == "" {
		category = domain.DefaultCategory
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New(),
		Name:          name,
		Category:      category,
		Price:         price,
		StockQuantity: stockQuantity,
		Description:   description,
		ImageURL:      imageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// UpdatePriceStock patches a product's price and/or stock
func (s *catalogService) UpdatePriceStock(ctx context.Context, id uuid.UUID, price *decimal.Decimal, stockQuantity *int) (*domain.Product, error) {
	if price != nil && price.IsNegative() {
		return nil, ErrInvalidProduct
	}
	if stockQuantity != nil && *stockQuantity < 0 {
		return nil, ErrInvalidProduct
	}

	return s.products.UpdatePriceStock(ctx, id, price, stockQuantity)
}

// DeleteProduct removes a product from the catalog
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.products.Delete(ctx, id)
}

// GetProduct retrieves a single product
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

// ListProducts retrieves the catalog, optionally filtered by category
func (s *catalogService) ListProducts(ctx context.Context, category string) ([]*domain.Product, error) {
	return s.products.List(ctx, category)
}

// SearchProducts finds up to ten products matching the query
func (s *catalogService) SearchProducts(ctx context.Context, query string) ([]*domain.Product, error) {
	return s.products.Search(ctx, query, 10)
}
