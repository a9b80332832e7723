package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/event"
	"github.com/damkaswim/storefront/internal/repository"
	redisstore "github.com/damkaswim/storefront/internal/repository/redis"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
	pkgkafka "github.com/damkaswim/storefront/pkg/kafka"
)

// --- Mock Repositories ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) RelatedByCategory(ctx context.Context, category, excludeID string, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, category, excludeID, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestProducer(logger *slog.Logger) *event.Producer {
	// No real broker in tests; publishing fails and is tolerated.
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func newCartTestStores(t *testing.T) (repository.CartStore, repository.WishlistStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	logger := newTestLogger()
	carts := redisstore.NewCartStore(client, time.Hour, logger)
	wishlists := redisstore.NewWishlistStore(client, time.Hour, logger)
	return carts, wishlists
}

func newCartTestService(t *testing.T, products *mockProductRepository) *CartService {
	t.Helper()
	carts, wishlists := newCartTestStores(t)
	logger := newTestLogger()
	return NewCartService(carts, wishlists, products, newTestProducer(logger), logger)
}

func activeProduct(id string) *domain.Product {
	sale := int64(14900)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Product{
		ID:        id,
		Title:     "Coral Reef One-Piece",
		Category:  domain.CategoryOnePiece,
		Price:     19900,
		SalePrice: &sale,
		Currency:  "ILS",
		Images:    []string{"https://cdn.example.com/coral-front.jpg"},
		InStock:   true,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// --- Tests ---

func TestCartService_AddLine_SnapshotsProduct(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-001").Return(activeProduct("prod-001"), nil)

	cart, err := svc.AddLine(ctx, "sess-001", &AddLineInput{
		ProductID: "prod-001", Color: "coral", Size: "M", Quantity: 2,
	})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "Coral Reef One-Piece", cart.Lines[0].Title)
	assert.Equal(t, "https://cdn.example.com/coral-front.jpg", cart.Lines[0].Image)
	// The sale price is charged, and the list price rides along so the
	// markdown stays visible after the sale ends.
	assert.Equal(t, int64(14900), cart.Lines[0].UnitPrice)
	assert.Equal(t, int64(19900), cart.Lines[0].OriginalPrice)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	products.AssertExpectations(t)
}

func TestCartService_AddLine_MergesSameVariant(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-001").Return(activeProduct("prod-001"), nil)

	_, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-001", Color: "coral", Size: "M", Quantity: 2})
	require.NoError(t, err)

	cart, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-001", Color: "coral", Size: "M", Quantity: 3})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestCartService_AddLine_DistinctVariantsStaySeparate(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-001").Return(activeProduct("prod-001"), nil)

	_, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-001", Color: "coral", Size: "M", Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-001", Color: "navy", Size: "M", Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 2)
}

func TestCartService_AddLine_CapsQuantity(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-001").Return(activeProduct("prod-001"), nil)

	_, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-001", Quantity: 90})
	require.NoError(t, err)

	cart, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-001", Quantity: 90})
	require.NoError(t, err)
	assert.Equal(t, domain.MaxQuantityPerLine, cart.Lines[0].Quantity)
}

func TestCartService_AddLine_RejectsInactiveProduct(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	p := activeProduct("prod-001")
	p.Active = false
	products.On("GetByID", ctx, "prod-001").Return(p, nil)

	_, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-001", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartService_AddLine_UnknownProduct(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("product", "missing"))

	_, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartService_MutationsPersist(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-001").Return(activeProduct("prod-001"), nil)

	_, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-001", Quantity: 2})
	require.NoError(t, err)

	// A fresh read sees the stored state, not an in-memory copy.
	cart, err := svc.GetCart(ctx, "sess-001")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func TestCartService_UpdateLineQuantity_ZeroRemovesLine(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-001").Return(activeProduct("prod-001"), nil)

	_, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-001", Quantity: 2})
	require.NoError(t, err)

	cart, err := svc.UpdateLineQuantity(ctx, "sess-001", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartService_UpdateLineQuantity_OutOfRangeIsNoop(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-001").Return(activeProduct("prod-001"), nil)

	_, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-001", Quantity: 2})
	require.NoError(t, err)

	cart, err := svc.UpdateLineQuantity(ctx, "sess-001", 5, 3)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)

	cart, err = svc.RemoveLine(ctx, "sess-001", -1)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
}

func TestCartService_RemoveLine(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-001").Return(activeProduct("prod-001"), nil)
	products.On("GetByID", ctx, "prod-002").Return(activeProduct("prod-002"), nil)

	_, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-001", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-002", Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.RemoveLine(ctx, "sess-001", 0)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "prod-002", cart.Lines[0].ProductID)
}

func TestCartService_ClearCart(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-001").Return(activeProduct("prod-001"), nil)

	_, err := svc.AddLine(ctx, "sess-001", &AddLineInput{ProductID: "prod-001", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, "sess-001"))

	cart, err := svc.GetCart(ctx, "sess-001")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartService_ToggleWishlist(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-001").Return(activeProduct("prod-001"), nil)

	wishlist, added, err := svc.ToggleWishlist(ctx, "sess-001", "prod-001")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"prod-001"}, wishlist.ProductIDs)

	wishlist, added, err = svc.ToggleWishlist(ctx, "sess-001", "prod-001")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, wishlist.ProductIDs)
}

func TestCartService_GetWishlist_ResolvesProducts(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartTestService(t, products)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-001").Return(activeProduct("prod-001"), nil)
	products.On("GetByIDs", ctx, []string{"prod-001"}).
		Return([]domain.Product{*activeProduct("prod-001")}, nil)

	_, _, err := svc.ToggleWishlist(ctx, "sess-001", "prod-001")
	require.NoError(t, err)

	wishlist, resolved, err := svc.GetWishlist(ctx, "sess-001")
	require.NoError(t, err)
	assert.Equal(t, []string{"prod-001"}, wishlist.ProductIDs)
	require.Len(t, resolved, 1)
	assert.Equal(t, "prod-001", resolved[0].ID)
	products.AssertExpectations(t)
}
