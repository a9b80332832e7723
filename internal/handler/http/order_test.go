package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/repository"
	redisrepo "github.com/damkaswim/storefront/internal/repository/redis"
	"github.com/damkaswim/storefront/internal/service"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

// ============================================================================
// Mock OrderRepository
// ============================================================================

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// ============================================================================
// Test helpers
// ============================================================================

// testOrderHandler wires the order service to a real miniredis cart store.
// The returned store is shared with the handler so tests can seed carts.
func testOrderHandler(t *testing.T, orders *mockOrderRepository) (*OrderHandler, repository.CartStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := testLogger()
	carts := redisrepo.NewCartStore(client, 30*24*time.Hour, logger)
	svc := service.NewOrderService(orders, carts, testEventProducer(), logger)
	return NewOrderHandler(svc, logger), carts
}

func setupOrderRouter(handler *OrderHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(SessionFromHeader)
			r.Post("/checkout", handler.Checkout)
		})

		r.Get("/admin/orders", handler.ListOrders)
		r.Get("/admin/orders/{id}", handler.GetOrder)
		r.Patch("/admin/orders/{id}/status", handler.UpdateOrderStatus)
	})
	return r
}

func seedCart(t *testing.T, carts repository.CartStore, sessionID string) {
	t.Helper()
	cart := domain.NewCart(sessionID)
	cart.Lines = []domain.CartLine{
		{ProductID: "prod-001", Title: "Coral Reef One-Piece", Color: "coral", Size: "M", UnitPrice: 14900, OriginalPrice: 19900, Quantity: 2},
	}
	require.NoError(t, carts.Save(context.Background(), cart))
}

func validCheckoutJSON() []byte {
	b, _ := json.Marshal(CheckoutRequest{
		Name:    "Dana Levi",
		Email:   "dana@example.com",
		Phone:   "050-1234567",
		Address: "HaYarkon 10",
		City:    "Tel Aviv",
	})
	return b
}

func sampleOrder(status string) *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		ID:    "order-001",
		Name:  "Dana Levi",
		Email: "dana@example.com",
		Items: []domain.OrderItem{
			{ProductID: "prod-001", Title: "Coral Reef One-Piece", Quantity: 2, UnitPrice: 14900},
		},
		TotalAmount: 29800,
		Currency:    domain.DefaultCurrency,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ============================================================================
// POST /api/v1/checkout
// ============================================================================

func TestCheckout_Success(t *testing.T) {
	orders := new(mockOrderRepository)
	handler, carts := testOrderHandler(t, orders)
	router := setupOrderRouter(handler)

	seedCart(t, carts, "sess-123")
	orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	req := sessionRequest(http.MethodPost, "/api/v1/checkout", validCheckoutJSON())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var order domain.Order
	raw, _ := json.Marshal(decodeResponse(t, rec).Data)
	require.NoError(t, json.Unmarshal(raw, &order))
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(29800), order.TotalAmount)

	// Order items carry both price snapshots from the cart line.
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(14900), order.Items[0].UnitPrice)
	assert.Equal(t, int64(19900), order.Items[0].OriginalPrice)

	// The cart is spent after checkout.
	cart, err := carts.Load(context.Background(), "sess-123")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	orders.AssertExpectations(t)
}

func TestCheckout_EmptyCart_Returns400(t *testing.T) {
	orders := new(mockOrderRepository)
	handler, _ := testOrderHandler(t, orders)
	router := setupOrderRouter(handler)

	req := sessionRequest(http.MethodPost, "/api/v1/checkout", validCheckoutJSON())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_MissingEmail_ValidationError(t *testing.T) {
	orders := new(mockOrderRepository)
	handler, carts := testOrderHandler(t, orders)
	router := setupOrderRouter(handler)

	seedCart(t, carts, "sess-123")

	b, _ := json.Marshal(CheckoutRequest{Name: "Dana Levi"})
	req := sessionRequest(http.MethodPost, "/api/v1/checkout", b)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestCheckout_MissingSession_Returns401(t *testing.T) {
	orders := new(mockOrderRepository)
	handler, _ := testOrderHandler(t, orders)
	router := setupOrderRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(validCheckoutJSON()))
	req.Header.Set("Content-Type", "application/json")
	// No X-Session-ID header.
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// Admin order endpoints
// ============================================================================

func TestListOrders_FilteredByStatus(t *testing.T) {
	orders := new(mockOrderRepository)
	handler, _ := testOrderHandler(t, orders)
	router := setupOrderRouter(handler)

	expected := repository.OrderFilter{Status: domain.OrderStatusPending, Limit: 20, Offset: 0}
	orders.On("List", mock.Anything, expected).
		Return([]domain.Order{*sampleOrder(domain.OrderStatusPending)}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?status=pending", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	orders.AssertExpectations(t)
}

func TestListOrders_UnknownStatus_Returns400(t *testing.T) {
	orders := new(mockOrderRepository)
	handler, _ := testOrderHandler(t, orders)
	router := setupOrderRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?status=teleported", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	orders.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestGetOrder_NotFound(t *testing.T) {
	orders := new(mockOrderRepository)
	handler, _ := testOrderHandler(t, orders)
	router := setupOrderRouter(handler)

	orders.On("GetByID", mock.Anything, "ghost").Return(nil, apperrors.NotFound("order", "ghost"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders/ghost", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOrderStatus_Success(t *testing.T) {
	orders := new(mockOrderRepository)
	handler, _ := testOrderHandler(t, orders)
	router := setupOrderRouter(handler)

	orders.On("GetByID", mock.Anything, "order-001").Return(sampleOrder(domain.OrderStatusPending), nil)
	orders.On("UpdateStatus", mock.Anything, "order-001", domain.OrderStatusShipped).Return(nil)

	b, _ := json.Marshal(UpdateOrderStatusRequest{Status: domain.OrderStatusShipped})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/orders/order-001/status", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var order domain.Order
	raw, _ := json.Marshal(decodeResponse(t, rec).Data)
	require.NoError(t, json.Unmarshal(raw, &order))
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
	orders.AssertExpectations(t)
}

func TestUpdateOrderStatus_UnknownStatus_ValidationError(t *testing.T) {
	orders := new(mockOrderRepository)
	handler, _ := testOrderHandler(t, orders)
	router := setupOrderRouter(handler)

	b, _ := json.Marshal(UpdateOrderStatusRequest{Status: "teleported"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/orders/order-001/status", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
