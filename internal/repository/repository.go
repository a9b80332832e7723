package repository

import (
	"context"
	"time"

	"github.com/damkaswim/storefront/internal/domain"
)

// ProductFilter narrows admin product listings.
type ProductFilter struct {
	Category string
	Active   *bool
	Search   string
	Limit    int
	Offset   int
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status string
	Email  string
	Limit  int
	Offset int
}

// MessageFilter narrows contact message listings.
type MessageFilter struct {
	Status  string
	Subject string
	Limit   int
	Offset  int
}

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	ActiveProducts(ctx context.Context) ([]domain.Product, error)
	Featured(ctx context.Context, limit int) ([]domain.Product, error)
	RelatedByCategory(ctx context.Context, category, excludeID string, limit int) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// MessageRepository defines contact message persistence operations.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.ContactMessage) error
	GetByID(ctx context.Context, id string) (*domain.ContactMessage, error)
	List(ctx context.Context, filter MessageFilter) ([]domain.ContactMessage, int, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SaveReply(ctx context.Context, id, subject, body string, repliedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// CustomerRepository defines customer persistence operations.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context, limit, offset int) ([]domain.Customer, int, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id string) error
}

// AdminRepository looks up back-office accounts for credential checks.
type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

// SubscriberRepository defines newsletter subscription operations.
type SubscriberRepository interface {
	Subscribe(ctx context.Context, subscriber *domain.Subscriber) error
	List(ctx context.Context, limit, offset int) ([]domain.Subscriber, int, error)
}

// DashboardRepository aggregates the counts and recent activity shown on the
// admin dashboard.
type DashboardRepository interface {
	CountProducts(ctx context.Context) (total, active int64, err error)
	CountCustomers(ctx context.Context) (int64, error)
	CountSubscribers(ctx context.Context) (int64, error)
	OrdersByStatus(ctx context.Context) (map[string]int64, error)
	MessagesByStatus(ctx context.Context) (map[string]int64, error)
	Revenue(ctx context.Context) (int64, error)
	RecentOrders(ctx context.Context, limit int) ([]domain.Order, error)
	RecentMessages(ctx context.Context, limit int) ([]domain.ContactMessage, error)
	TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error)
}

// CartStore persists session carts. Load returns an empty cart when the
// session has none stored or the stored payload cannot be decoded.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// WishlistStore persists session wishlists with the same contract as CartStore.
type WishlistStore interface {
	Load(ctx context.Context, sessionID string) (*domain.Wishlist, error)
	Save(ctx context.Context, wishlist *domain.Wishlist) error
	Delete(ctx context.Context, sessionID string) error
}
