package domain

// ProductSales is a top-seller entry: how often a product was ordered and
// how many units it moved.
type ProductSales struct {
	ProductID  string `json:"product_id"`
	Title      string `json:"title"`
	UnitsSold  int64  `json:"units_sold"`
	OrderCount int64  `json:"order_count"`
}

// DashboardStats is the back-office overview: entity counts, order and
// message breakdowns by status, revenue, and recent activity.
type DashboardStats struct {
	ProductCount     int64            `json:"product_count"`
	ActiveProducts   int64            `json:"active_products"`
	CustomerCount    int64            `json:"customer_count"`
	SubscriberCount  int64            `json:"subscriber_count"`
	OrdersByStatus   map[string]int64 `json:"orders_by_status"`
	MessagesByStatus map[string]int64 `json:"messages_by_status"`
	Revenue          int64            `json:"revenue"`
	RecentOrders     []Order          `json:"recent_orders"`
	RecentMessages   []ContactMessage `json:"recent_messages"`
	TopProducts      []ProductSales   `json:"top_products"`
}

// TotalOrders sums the status breakdown.
func (s *DashboardStats) TotalOrders() int64 {
	var total int64
	for _, n := range s.OrdersByStatus {
		total += n
	}
	return total
}
