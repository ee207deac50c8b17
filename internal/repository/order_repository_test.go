package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartpos/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func seedProduct(t *testing.T, name string, price string, stock int) *domain.Product {
	t.Helper()

	product := &domain.Product{
		ID:            uuid.New(),
		Name:          name,
		Category:      "Beverages",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := NewProductRepository(testDB).Create(context.Background(), product); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	t.Cleanup(func() {
		_, _ = testDB.Exec("DELETE FROM order_items WHERE product_id = $1", product.ID)
		_, _ = testDB.Exec("DELETE FROM products WHERE id = $1", product.ID)
	})

	return product
}

func seedCashier(t *testing.T, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "hash",
		Role:         domain.RolePOSOfficer,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := NewUserRepository(testDB).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed cashier: %v", err)
	}
	t.Cleanup(func() {
		_, _ = testDB.Exec("DELETE FROM orders WHERE user_id = $1", user.ID)
		_, _ = testDB.Exec("DELETE FROM users WHERE id = $1", user.ID)
	})

	return user
}

func buildOrder(user *domain.User, orderNumber string, total string) *domain.Order {
	return &domain.Order{
		ID:            uuid.New(),
		OrderNumber:   orderNumber,
		TotalAmount:   decimal.RequireFromString(total),
		Discount:      decimal.Zero,
		PaymentMethod: domain.PaymentCash,
		AmountPaid:    decimal.RequireFromString(total),
		Change:        decimal.Zero,
		UserID:        user.ID,
		CreatedAt:     time.Now(),
	}
}

func TestCreateOrderDecrementsStock(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	product := seedProduct(t, "Espresso", "3.50", 10)
	cashier := seedCashier(t, "cashier-decrement")

	order := buildOrder(cashier, "ORD-20260829-1001", "7.00")
	items := []domain.OrderItem{
		{ID: uuid.New(), ProductID: product.ID, Quantity: 2, Price: product.Price},
	}

	if err := repo.Create(ctx, order, items); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	updated, err := NewProductRepository(testDB).FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("failed to re-read product: %v", err)
	}
	if updated.StockQuantity != 8 {
		t.Fatalf("expected stock 8 after settlement, got %d", updated.StockQuantity)
	}

	stored, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to find order: %v", err)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(stored.Items))
	}
	if stored.Items[0].ProductName != "Espresso" {
		t.Fatalf("expected resolved product name, got %q", stored.Items[0].ProductName)
	}
	if stored.CashierName != "cashier-decrement" {
		t.Fatalf("expected resolved cashier name, got %q", stored.CashierName)
	}
}

func TestCreateOrderRollsBackOnInsufficientStock(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	plenty := seedProduct(t, "Bottled Water", "1.00", 100)
	scarce := seedProduct(t, "Limited Cake", "9.99", 1)
	cashier := seedCashier(t, "cashier-rollback")

	order := buildOrder(cashier, "ORD-20260829-1002", "21.98")
	items := []domain.OrderItem{
		{ID: uuid.New(), ProductID: plenty.ID, Quantity: 2, Price: plenty.Price},
		{ID: uuid.New(), ProductID: scarce.ID, Quantity: 2, Price: scarce.Price},
	}

	err := repo.Create(ctx, order, items)
	var conflict *StockConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StockConflictError, got %v", err)
	}
	if conflict.ProductID != scarce.ID {
		t.Fatalf("expected conflict on scarce product, got %s", conflict.ProductID)
	}

	// The whole transaction rolled back: no order, no stock change on
	// the line that succeeded first.
	if _, err := repo.FindByID(ctx, order.ID); err != ErrOrderNotFound {
		t.Fatalf("expected order to not exist, got %v", err)
	}

	reread, err := NewProductRepository(testDB).FindByID(ctx, plenty.ID)
	if err != nil {
		t.Fatalf("failed to re-read product: %v", err)
	}
	if reread.StockQuantity != 100 {
		t.Fatalf("expected untouched stock 100, got %d", reread.StockQuantity)
	}
}

func TestCreateOrderRejectsDuplicateOrderNumber(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	product := seedProduct(t, "Green Tea", "2.00", 50)
	cashier := seedCashier(t, "cashier-collision")

	first := buildOrder(cashier, "ORD-20260829-1003", "2.00")
	items := []domain.OrderItem{
		{ID: uuid.New(), ProductID: product.ID, Quantity: 1, Price: product.Price},
	}
	if err := repo.Create(ctx, first, items); err != nil {
		t.Fatalf("failed to create first order: %v", err)
	}

	second := buildOrder(cashier, "ORD-20260829-1003", "2.00")
	secondItems := []domain.OrderItem{
		{ID: uuid.New(), ProductID: product.ID, Quantity: 1, Price: product.Price},
	}
	if err := repo.Create(ctx, second, secondItems); err != ErrOrderNumberTaken {
		t.Fatalf("expected ErrOrderNumberTaken, got %v", err)
	}

	// The rejected attempt must not have touched stock.
	reread, err := NewProductRepository(testDB).FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("failed to re-read product: %v", err)
	}
	if reread.StockQuantity != 49 {
		t.Fatalf("expected stock 49, got %d", reread.StockQuantity)
	}
}

func TestListByUserReturnsNewestFirst(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	product := seedProduct(t, "Croissant", "4.25", 30)
	cashier := seedCashier(t, "cashier-history")

	older := buildOrder(cashier, "ORD-20260829-1004", "4.25")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := buildOrder(cashier, "ORD-20260829-1005", "8.50")

	for _, o := range []*domain.Order{older, newer} {
		items := []domain.OrderItem{
			{ID: uuid.New(), ProductID: product.ID, Quantity: 1, Price: product.Price},
		}
		if err := repo.Create(ctx, o, items); err != nil {
			t.Fatalf("failed to create order %s: %v", o.OrderNumber, err)
		}
	}

	orders, err := repo.ListByUser(ctx, cashier.ID)
	if err != nil {
		t.Fatalf("failed to list orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].OrderNumber != "ORD-20260829-1005" {
		t.Fatalf("expected newest order first, got %s", orders[0].OrderNumber)
	}
	for _, o := range orders {
		if len(o.Items) != 1 {
			t.Fatalf("expected items attached to order %s", o.OrderNumber)
		}
	}
}
