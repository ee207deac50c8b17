package service

import (
	"context"
	"fmt"

	"smartpos/internal/domain"
	"smartpos/internal/repository"

	"github.com/shopspring/decimal"
)

// DashboardStats is the sales overview shown to managers
type DashboardStats struct {
	TotalRevenue      decimal.Decimal           `json:"total_revenue"`
	TotalOrders       int                       `json:"total_orders"`
	AverageOrderValue decimal.Decimal           `json:"average_order_value"`
	TopProducts       []repository.ProductSales `json:"top_products"`
	RecentOrders      []*domain.Order           `json:"recent_orders"`
}

// DashboardService assembles sales aggregates from the order ledger
type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
}

type dashboardService struct {
	orders repository.OrderRepository
}

// NewDashboardService creates a new instance of DashboardService
func NewDashboardService(orders repository.OrderRepository) DashboardService {
	return &dashboardService{orders: orders}
}

// Stats returns total revenue, order count, average order value, the
// five best sellers and the five most recent orders.
func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	revenue, count, err := s.orders.SalesSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales summary: %w", err)
	}

	topProducts, err := s.orders.TopProducts(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}

	recentOrders, err := s.orders.RecentOrders(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}

	average := decimal.Zero
	if count > 0 {
		average = revenue.Div(decimal.NewFromInt(int64(count)))
	}

	return &DashboardStats{
		TotalRevenue:      revenue,
		TotalOrders:       count,
		AverageOrderValue: average,
		TopProducts:       topProducts,
		RecentOrders:      recentOrders,
	}, nil
}
