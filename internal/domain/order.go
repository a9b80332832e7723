package domain

import (
	"time"
)

// Order status constants.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderItem is a purchased line, snapshotted from the cart at checkout.
type OrderItem struct {
	ProductID     string `json:"product_id"`
	Title         string `json:"title"`
	Color         string `json:"color,omitempty"`
	Size          string `json:"size,omitempty"`
	UnitPrice     int64  `json:"unit_price"`
	OriginalPrice int64  `json:"original_price"`
	Quantity      int    `json:"quantity"`
}

// Order represents a customer order. New orders start in status pending.
type Order struct {
	ID          string      `json:"id"`
	CustomerID  *string     `json:"customer_id,omitempty"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone,omitempty"`
	Address     string      `json:"address"`
	City        string      `json:"city"`
	Notes       string      `json:"notes,omitempty"`
	Items       []OrderItem `json:"items"`
	TotalAmount int64       `json:"total_amount"`
	Currency    string      `json:"currency"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ItemCount returns the total quantity across all items.
func (o *Order) ItemCount() int {
	var count int
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// ValidOrderStatuses returns the set of valid order statuses.
func ValidOrderStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValidOrderStatus checks whether the given status is valid.
func IsValidOrderStatus(status string) bool {
	for _, s := range ValidOrderStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
