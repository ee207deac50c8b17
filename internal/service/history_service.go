package service

import (
	"context"

	"smartpos/internal/domain"
	"smartpos/internal/repository"

	"github.com/google/uuid"
)

// HistoryService exposes the read side of the order ledger
type HistoryService interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
}

type historyService struct {
	orders repository.OrderRepository
}

// NewHistoryService creates a new instance of HistoryService
func NewHistoryService(orders repository.OrderRepository) HistoryService {
	return &historyService{orders: orders}
}

// ListForUser retrieves a cashier's orders, newest first
func (s *historyService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// Get retrieves a single order with its items for receipt rendering
func (s *historyService) Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orders.FindByID(ctx, orderID)
}
