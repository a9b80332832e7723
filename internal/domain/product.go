package domain

import (
	"time"
)

// Product category constants.
const (
	CategoryOnePiece    = "one-piece"
	CategoryBikini      = "bikini"
	CategoryBeachwear   = "beachwear"
	CategoryAccessories = "accessories"
)

// DefaultCurrency is the store currency. Prices are in agorot (1/100 ILS).
const DefaultCurrency = "ILS"

// FeaturedLimit caps the number of products on the featured shelf.
const FeaturedLimit = 4

// RelatedLimit caps the number of related products returned per product.
const RelatedLimit = 4

// ColorVariant is a color option: a display name plus an optional hex
// swatch code for rendering.
type ColorVariant struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Product represents a catalog item.
type Product struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Collections []string       `json:"collections,omitempty"`
	Price       int64          `json:"price"`
	SalePrice   *int64         `json:"sale_price,omitempty"`
	Currency    string         `json:"currency"`
	Images      []string       `json:"images"`
	Sizes       []string       `json:"sizes,omitempty"`
	Colors      []ColorVariant `json:"colors,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	InStock     bool           `json:"in_stock"`
	Active      bool           `json:"active"`
	Featured    bool           `json:"featured"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// EffectivePrice returns the sale price when one is set, else the list price.
func (p *Product) EffectivePrice() int64 {
	if p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice
	}
	return p.Price
}

// OnSale reports whether the product currently has a sale price.
func (p *Product) OnSale() bool {
	return p.SalePrice != nil && *p.SalePrice > 0
}

// HasCollection reports whether the product belongs to the given collection.
func (p *Product) HasCollection(collection string) bool {
	for _, c := range p.Collections {
		if c == collection {
			return true
		}
	}
	return false
}

// ValidCategories returns the set of valid product categories.
func ValidCategories() []string {
	return []string{CategoryOnePiece, CategoryBikini, CategoryBeachwear, CategoryAccessories}
}

// IsValidCategory checks whether the given category is valid.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories() {
		if c == category {
			return true
		}
	}
	return false
}
