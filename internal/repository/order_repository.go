package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartpos/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderNumberTaken signals a collision on the human-readable order
	// number. The caller regenerates the number and retries; the insert
	// never silently overwrites.
	ErrOrderNumberTaken = errors.New("order number already taken")
)

// StockConflictError reports that a conditional stock decrement lost the
// race inside the commit transaction. The whole transaction has been
// rolled back when this is returned.
type StockConflictError struct {
	ProductID uuid.UUID
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock conflict on product %s", e.ProductID)
}

// ProductSales is a dashboard aggregate: units sold and revenue earned
// for one product, priced from the captured order-item prices.
type ProductSales struct {
	ProductID uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// OrderRepository defines the interface for the order ledger. Orders are
// append-only: there is no update or delete path.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order, items []domain.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	SalesSummary(ctx context.Context) (revenue decimal.Decimal, orderCount int, err error)
	TopProducts(ctx context.Context, limit int) ([]ProductSales, error)
	RecentOrders(ctx context.Context, limit int) ([]*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create persists the order, its items and the matching stock decrements
// as one all-or-nothing transaction. Each decrement is conditional on
// enough remaining stock; if any line cannot be covered the transaction
// rolls back and a *StockConflictError is returned, leaving no visible
// side effects.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin settlement transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, order_number, total_amount, discount, payment_method, amount_paid, change, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		order.ID,
		order.OrderNumber,
		order.TotalAmount,
		order.Discount,
		order.PaymentMethod,
		order.AmountPaid,
		order.Change,
		order.UserID,
		order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrOrderNumberTaken
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, order.ID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}

		if err := decrementStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, ErrInsufficientStock) {
				return &StockConflictError{ProductID: item.ProductID}
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settlement transaction: %w", err)
	}

	return nil
}

const orderColumns = `o.id, o.order_number, o.total_amount, o.discount, o.payment_method,
		       o.amount_paid, o.change, o.user_id, COALESCE(u.username, ''), o.created_at`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.TotalAmount,
		&o.Discount,
		&o.PaymentMethod,
		&o.AmountPaid,
		&o.Change,
		&o.UserID,
		&o.CashierName,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// FindByID retrieves a fully assembled order: line items with resolved
// product names and the cashier identity, ready for receipt rendering.
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// ListByUser retrieves a cashier's orders newest-first, with items
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// SalesSummary returns total revenue and order count across the ledger
func (r *orderRepository) SalesSummary(ctx context.Context) (decimal.Decimal, int, error) {
	var revenue decimal.Decimal
	var count int

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM orders
	`).Scan(&revenue, &count)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to compute sales summary: %w", err)
	}

	return revenue, count, nil
}

// TopProducts returns the best-selling products by quantity, with
// revenue computed from the prices captured at time of sale.
func (r *orderRepository) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, COALESCE(p.name, 'Unknown Product'),
		       SUM(oi.quantity), SUM(oi.quantity * oi.price)
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		GROUP BY oi.product_id, p.name
		ORDER BY SUM(oi.quantity) DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	sales := []ProductSales{}
	for rows.Next() {
		var s ProductSales
		if err := rows.Scan(&s.ProductID, &s.Name, &s.Quantity, &s.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan product sales: %w", err)
		}
		sales = append(sales, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product sales: %w", err)
	}

	return sales, nil
}

// RecentOrders retrieves the latest orders with items, newest-first
func (r *orderRepository) RecentOrders(ctx context.Context, limit int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// attachItems loads the line items for the given orders in one query and
// distributes them onto their parents.
func (r *orderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID.String())
		byID[o.ID] = o
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, 'Unknown Product'), oi.quantity, oi.price
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id::text = ANY($1)
		ORDER BY p.name ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if parent, ok := byID[item.OrderID]; ok {
			parent.Items = append(parent.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}
