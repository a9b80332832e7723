package postgres

import (
	"context"
	"fmt"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/pkg/database"
)

// DashboardRepository implements repository.DashboardRepository using
// PostgreSQL aggregate queries.
type DashboardRepository struct {
	pool database.DBTX
}

// NewDashboardRepository creates a PostgreSQL-backed dashboard repository.
func NewDashboardRepository(pool database.DBTX) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// CountProducts returns the total and active product counts.
func (r *DashboardRepository) CountProducts(ctx context.Context) (total, active int64, err error) {
	query := `SELECT count(*), count(*) FILTER (WHERE active) FROM products`

	if err := r.pool.QueryRow(ctx, query).Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("count products: %w", err)
	}
	return total, active, nil
}

// CountCustomers returns the number of registered customers.
func (r *DashboardRepository) CountCustomers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}

// CountSubscribers returns the number of newsletter subscribers.
func (r *DashboardRepository) CountSubscribers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM newsletter_subscribers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}

// OrdersByStatus returns the order count per status.
func (r *DashboardRepository) OrdersByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countByStatus(ctx, "orders")
}

// MessagesByStatus returns the contact message count per status.
func (r *DashboardRepository) MessagesByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countByStatus(ctx, "contact_messages")
}

func (r *DashboardRepository) countByStatus(ctx context.Context, table string) (map[string]int64, error) {
	query := fmt.Sprintf(`SELECT status, count(*) FROM %s GROUP BY status`, table)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count %s by status: %w", table, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan %s status count: %w", table, err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s status counts: %w", table, err)
	}
	return counts, nil
}

// Revenue sums the totals of all orders that were not cancelled.
func (r *DashboardRepository) Revenue(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(sum(total_amount), 0) FROM orders WHERE status <> $1`

	var revenue int64
	if err := r.pool.QueryRow(ctx, query, domain.OrderStatusCancelled).Scan(&revenue); err != nil {
		return 0, fmt.Errorf("sum revenue: %w", err)
	}
	return revenue, nil
}

// RecentOrders returns the newest orders.
func (r *DashboardRepository) RecentOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows, nil)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// RecentMessages returns the newest contact messages.
func (r *DashboardRepository) RecentMessages(ctx context.Context, limit int) ([]domain.ContactMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM contact_messages ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.ContactMessage
	for rows.Next() {
		m, err := scanMessage(rows, nil)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}
	if messages == nil {
		messages = []domain.ContactMessage{}
	}
	return messages, nil
}

// TopProducts ranks products by units sold across all orders, unnesting the
// items jsonb.
func (r *DashboardRepository) TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	query := `
		SELECT item->>'product_id' AS product_id,
		       max(item->>'title') AS title,
		       sum((item->>'quantity')::bigint) AS units_sold,
		       count(DISTINCT o.id) AS order_count
		FROM orders o, jsonb_array_elements(o.items) item
		GROUP BY item->>'product_id'
		ORDER BY units_sold DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("load top products: %w", err)
	}
	defer rows.Close()

	var top []domain.ProductSales
	for rows.Next() {
		var s domain.ProductSales
		if err := rows.Scan(&s.ProductID, &s.Title, &s.UnitsSold, &s.OrderCount); err != nil {
			return nil, fmt.Errorf("scan top product row: %w", err)
		}
		top = append(top, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top product rows: %w", err)
	}
	if top == nil {
		top = []domain.ProductSales{}
	}
	return top, nil
}
