package domain

import (
	"time"
)

// Cart limits.
const (
	MaxQuantityPerLine = 100
	MaxLinesPerCart    = 50
)

// CartLine is a single cart entry. Lines are keyed by the
// (product id, color, size) combination; adding the same combination again
// merges into the existing line. UnitPrice is the effective price at add
// time; OriginalPrice keeps the list price so a sale markdown stays visible
// after the sale ends.
type CartLine struct {
	ProductID     string `json:"product_id"`
	Title         string `json:"title"`
	Image         string `json:"image,omitempty"`
	Color         string `json:"color,omitempty"`
	Size          string `json:"size,omitempty"`
	UnitPrice     int64  `json:"unit_price"`
	OriginalPrice int64  `json:"original_price"`
	Quantity      int    `json:"quantity"`
}

// Cart holds a session's shopping cart.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	Currency  string     `json:"currency"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart creates an empty cart for the given session.
func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Lines:     []CartLine{},
		Currency:  DefaultCurrency,
		UpdatedAt: time.Now().UTC(),
	}
}

// FindLine returns the index of the line matching the variant key,
// or -1 if no such line exists.
func (c *Cart) FindLine(productID, color, size string) int {
	for i, line := range c.Lines {
		if line.ProductID == productID && line.Color == color && line.Size == size {
			return i
		}
	}
	return -1
}

// TotalAmount returns the cart total in agorot.
func (c *Cart) TotalAmount() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.UnitPrice * int64(line.Quantity)
	}
	return total
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Wishlist is a session's set of saved product ids, in insertion order.
type Wishlist struct {
	SessionID  string    `json:"session_id"`
	ProductIDs []string  `json:"product_ids"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewWishlist creates an empty wishlist for the given session.
func NewWishlist(sessionID string) *Wishlist {
	return &Wishlist{
		SessionID:  sessionID,
		ProductIDs: []string{},
		UpdatedAt:  time.Now().UTC(),
	}
}

// Contains reports whether the product id is saved.
func (w *Wishlist) Contains(productID string) bool {
	for _, id := range w.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Toggle adds the product id when absent and removes it when present.
// It returns true when the id was added.
func (w *Wishlist) Toggle(productID string) bool {
	for i, id := range w.ProductIDs {
		if id == productID {
			w.ProductIDs = append(w.ProductIDs[:i], w.ProductIDs[i+1:]...)
			return false
		}
	}
	w.ProductIDs = append(w.ProductIDs, productID)
	return true
}
