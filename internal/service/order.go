package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/event"
	"github.com/damkaswim/storefront/internal/repository"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

// OrderService implements checkout and order administration.
type OrderService struct {
	orders   repository.OrderRepository
	carts    repository.CartStore
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartStore,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		carts:    carts,
		producer: producer,
		logger:   logger,
	}
}

// CheckoutInput holds the customer details collected at checkout.
type CheckoutInput struct {
	CustomerID *string
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	Notes      string
}

// Checkout turns the session's cart into a pending order and clears the
// cart. An empty cart cannot be checked out.
func (s *OrderService) Checkout(ctx context.Context, sessionID string, input *CheckoutInput) (*domain.Order, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Lines) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	items := make([]domain.OrderItem, len(cart.Lines))
	for i, line := range cart.Lines {
		items[i] = domain.OrderItem{
			ProductID:     line.ProductID,
			Title:         line.Title,
			Color:         line.Color,
			Size:          line.Size,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			OriginalPrice: line.OriginalPrice,
		}
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:          uuid.New().String(),
		CustomerID:  input.CustomerID,
		Name:        strings.TrimSpace(input.Name),
		Email:       strings.TrimSpace(input.Email),
		Phone:       input.Phone,
		Address:     input.Address,
		City:        input.City,
		Notes:       input.Notes,
		Items:       items,
		TotalAmount: cart.TotalAmount(),
		Currency:    cart.Currency,
		Status:      domain.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The cart is spent once the order exists. A failed delete only means
	// the customer sees a cart they already paid for, so log and move on.
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("session_id", sessionID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.Int64("total_amount", order.TotalAmount),
		slog.Int("item_count", order.ItemCount()),
	)

	return order, nil
}

// GetOrder retrieves an order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// ListOrders returns orders matching the filter plus the total count.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if filter.Status != "" && !domain.IsValidOrderStatus(filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", filter.Status))
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateOrderStatus sets the status of an order.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", status))
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	oldStatus := order.Status
	if oldStatus == status {
		return order, nil
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = status

	if err := s.producer.PublishOrderStatusChanged(ctx, id, oldStatus, status); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", id),
		slog.String("old_status", oldStatus),
		slog.String("new_status", status),
	)

	return order, nil
}
