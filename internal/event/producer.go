package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/damkaswim/storefront/internal/domain"
	pkgkafka "github.com/damkaswim/storefront/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicProductCreated     = "storefront.product.created"
	TopicProductUpdated     = "storefront.product.updated"
	TopicProductDeleted     = "storefront.product.deleted"
	TopicCartUpdated        = "storefront.cart.updated"
	TopicOrderCreated       = "storefront.order.created"
	TopicOrderStatusChanged = "storefront.order.status_changed"
	TopicMessageReceived    = "storefront.message.received"
)

// Aggregate type constants.
const (
	AggregateTypeProduct = "product"
	AggregateTypeCart    = "cart"
	AggregateTypeOrder   = "order"
	AggregateTypeMessage = "message"
)

// Source identifier for events originating from the storefront API.
const SourceStorefront = "storefront-api"

// ProductEventData is the payload for product lifecycle events.
type ProductEventData struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
	Active   bool   `json:"active"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID   string `json:"session_id"`
	LineCount   int    `json:"line_count"`
	ItemCount   int    `json:"item_count"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
}

// OrderCreatedData is the payload for an order.created event (full snapshot).
type OrderCreatedData struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	Items       []domain.OrderItem `json:"items"`
	TotalAmount int64              `json:"total_amount"`
	Currency    string             `json:"currency"`
	Status      string             `json:"status"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// MessageReceivedData is the payload for a message.received event.
type MessageReceivedData struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Subject    string `json:"subject"`
	Newsletter bool   `json:"newsletter"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productData(p *domain.Product) ProductEventData {
	return ProductEventData{
		ID:       p.ID,
		Title:    p.Title,
		Category: p.Category,
		Price:    p.Price,
		Active:   p.Active,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publishProduct(ctx, TopicProductCreated, product)
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publishProduct(ctx, TopicProductUpdated, product)
}

func (p *Producer) publishProduct(ctx context.Context, topic string, product *domain.Product) error {
	event, err := pkgkafka.NewEvent(topic, product.ID, AggregateTypeProduct, SourceStorefront, productData(product))
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID string) error {
	data := struct {
		ID string `json:"id"`
	}{ID: productID}

	event, err := pkgkafka.NewEvent(TopicProductDeleted, productID, AggregateTypeProduct, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create product.deleted event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicProductDeleted, event); err != nil {
		return fmt.Errorf("publish product.deleted event: %w", err)
	}
	return nil
}

// PublishCartUpdated publishes a cart.updated event with cart totals.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	data := CartUpdatedData{
		SessionID:   cart.SessionID,
		LineCount:   len(cart.Lines),
		ItemCount:   cart.ItemCount(),
		TotalAmount: cart.TotalAmount(),
		Currency:    cart.Currency,
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cart.SessionID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", cart.SessionID),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		ID:          order.ID,
		Email:       order.Email,
		Items:       order.Items,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		Status:      order.Status,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.Int64("total_amount", order.TotalAmount),
	)
	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error {
	data := OrderStatusChangedData{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, orderID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}
	return nil
}

// PublishMessageReceived publishes a message.received event.
func (p *Producer) PublishMessageReceived(ctx context.Context, m *domain.ContactMessage) error {
	data := MessageReceivedData{
		ID:         m.ID,
		Email:      m.Email,
		Subject:    m.Subject,
		Newsletter: m.Newsletter,
	}

	event, err := pkgkafka.NewEvent(TopicMessageReceived, m.ID, AggregateTypeMessage, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create message.received event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicMessageReceived, event); err != nil {
		return fmt.Errorf("publish message.received event: %w", err)
	}
	return nil
}
