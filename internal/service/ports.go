package service

import (
	"context"
	"time"

	"storefront-service/internal/models"
)

// ProductReader is the read side of the catalog
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
}

// OrderRepository persists orders
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, allowedFrom ...models.OrderStatus) (*models.Order, error)
}

// EventPublisher publishes order lifecycle events
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusUpdated(ctx context.Context, event *models.OrderStatusUpdatedEvent) error
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
}

// IdempotencyStore remembers which order an idempotency key produced
type IdempotencyStore interface {
	LookupOrder(ctx context.Context, key string) (string, bool, error)
	RememberOrder(ctx context.Context, key, orderID string, ttl time.Duration) error
}
