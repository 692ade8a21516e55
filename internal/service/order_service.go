package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/auth"
	"storefront-service/internal/models"
	"storefront-service/internal/reconcile"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OrderService handles order business logic
type OrderService struct {
	orders         OrderRepository
	reconciler     *reconcile.Reconciler
	publisher      EventPublisher
	idempotency    IdempotencyStore
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewOrderService creates a new order service. idempotency may be nil, in
// which case Idempotency-Key headers are ignored.
func NewOrderService(
	orders OrderRepository,
	reconciler *reconcile.Reconciler,
	publisher EventPublisher,
	idempotency IdempotencyStore,
	idempotencyTTL time.Duration,
) *OrderService {
	return &OrderService{
		orders:         orders,
		reconciler:     reconciler,
		publisher:      publisher,
		idempotency:    idempotency,
		idempotencyTTL: idempotencyTTL,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	Items           []models.CartItem      `json:"items"`
	DeliveryDetails models.DeliveryDetails `json:"deliveryDetails"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod"`
	IdempotencyKey  string                 `json:"-"`
}

// CreateOrderResult is a created order. Replayed is set when the order was
// created by an earlier request with the same idempotency key.
type CreateOrderResult struct {
	Order    *models.Order
	Replayed bool
}

// CreateOrder validates the request, reconciles the items against the
// catalog and stores a pending order
func (s *OrderService) CreateOrder(ctx context.Context, requester *auth.Identity, req *CreateOrderRequest) (*CreateOrderResult, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder",
		attribute.String("user.id", requester.UserID),
		attribute.Int("order.items", len(req.Items)))
	defer span.End()

	if reason, err := validateCreateOrder(req); err != nil {
		util.OrdersRejectedTotal.WithLabelValues(reason).Inc()
		return nil, err
	}

	idemKey := ""
	if req.IdempotencyKey != "" && s.idempotency != nil {
		idemKey = requester.UserID + ":" + req.IdempotencyKey
		if existing := s.replay(ctx, idemKey); existing != nil {
			util.OrdersReplayedTotal.Inc()
			return &CreateOrderResult{Order: existing, Replayed: true}, nil
		}
	}

	// the total comes from the submitted lines, before reconciliation
	total := models.SumItems(req.Items)

	order := &models.Order{
		UserID:          requester.UserID,
		Items:           s.reconciler.Reconcile(ctx, req.Items),
		TotalAmount:     total,
		DeliveryDetails: req.DeliveryDetails,
		PaymentMethod:   req.PaymentMethod,
		Status:          models.OrderStatusPending,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("total_amount", order.TotalAmount.String()))

	if idemKey != "" {
		if err := s.idempotency.RememberOrder(ctx, idemKey, order.ID, s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to remember idempotency key",
				zap.String("order_id", order.ID),
				zap.Error(err))
		}
	}

	s.publishCreated(ctx, order, req.Items)

	return &CreateOrderResult{Order: order}, nil
}

// validateCreateOrder returns a metric reason along with the validation error
func validateCreateOrder(req *CreateOrderRequest) (string, error) {
	if len(req.Items) == 0 {
		return "empty_cart", apperr.Validation("Cart is empty")
	}
	if !req.DeliveryDetails.Complete() {
		return "delivery_details", apperr.Validation("Please provide all delivery details")
	}
	if req.PaymentMethod == "" {
		return "payment_method", apperr.Validation("Please select a payment method")
	}
	if !req.PaymentMethod.Valid() {
		return "payment_method", apperr.Validation("Invalid payment method")
	}
	for i, item := range req.Items {
		if item.Quantity < 1 || item.Price.IsNegative() || !models.AmountStorable(item.Price) {
			return "invalid_item", apperr.Validation(fmt.Sprintf("Invalid quantity or price for item %d", i+1))
		}
	}
	if !models.AmountStorable(models.SumItems(req.Items)) {
		return "invalid_total", apperr.Validation("Order total is too large")
	}
	return "", nil
}

// replay returns the order an idempotency key already produced, if any.
// Lookup failures are logged and treated as a first attempt.
func (s *OrderService) replay(ctx context.Context, key string) *models.Order {
	orderID, found, err := s.idempotency.LookupOrder(ctx, key)
	if err != nil {
		s.logger.Warn("Idempotency lookup failed", zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		s.logger.Warn("Order for idempotency key not readable",
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil
	}

	s.logger.Info("Duplicate order request detected", zap.String("order_id", order.ID))
	return order
}

// GetOrder returns an order its owner or an admin may see
func (s *OrderService) GetOrder(ctx context.Context, requester *auth.Identity, id string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder", attribute.String("order.id", id))
	defer span.End()

	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != requester.UserID && !requester.IsAdmin() {
		return nil, apperr.Forbidden("Not authorized to view this order")
	}
	return order, nil
}

// ListOrders returns every order for admins and the requester's own otherwise,
// newest first
func (s *OrderService) ListOrders(ctx context.Context, requester *auth.Identity) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	userID := requester.UserID
	if requester.IsAdmin() {
		userID = ""
	}

	orders, err := s.orders.ListOrders(ctx, userID)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets any known status on an order. Admin only. The lifecycle
// order is not enforced here.
func (s *OrderService) UpdateStatus(ctx context.Context, requester *auth.Identity, id string, status models.OrderStatus) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus",
		attribute.String("order.id", id),
		attribute.String("order.status", string(status)))
	defer span.End()

	if err := auth.Authorize(requester, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperr.Validation("Invalid status")
	}

	order, err := s.orders.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			util.RecordError(span, err)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(string(status)).Inc()
	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID),
		zap.String("status", string(status)),
		zap.String("admin_id", requester.UserID))

	s.publish(models.EventTypeOrderStatusUpdated, func(base models.BaseEvent) error {
		return s.publisher.PublishOrderStatusUpdated(ctx, &models.OrderStatusUpdatedEvent{
			BaseEvent: base,
			OrderID:   order.ID,
			UserID:    order.UserID,
			Status:    order.Status,
		})
	})

	return order, nil
}

// CancelOrder cancels a pending or confirmed order for its owner or an admin
func (s *OrderService) CancelOrder(ctx context.Context, requester *auth.Identity, id string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelOrder", attribute.String("order.id", id))
	defer span.End()

	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != requester.UserID && !requester.IsAdmin() {
		return nil, apperr.Forbidden("Not authorized to cancel this order")
	}
	if !order.Status.Cancellable() {
		return nil, apperr.Validation("Order cannot be cancelled at this stage")
	}

	// conditional on the status still being cancellable
	cancelled, err := s.orders.UpdateOrderStatus(ctx, id, models.OrderStatusCancelled, models.CancellableStatuses...)
	if errors.Is(err, models.ErrStatusConflict) {
		return nil, apperr.Validation("Order cannot be cancelled at this stage")
	}
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	util.OrdersCancelledTotal.Inc()
	s.logger.Info("Order cancelled",
		zap.String("order_id", cancelled.ID),
		zap.String("cancelled_by", requester.UserID))

	s.publish(models.EventTypeOrderCancelled, func(base models.BaseEvent) error {
		return s.publisher.PublishOrderCancelled(ctx, &models.OrderCancelledEvent{
			BaseEvent:   base,
			OrderID:     cancelled.ID,
			UserID:      cancelled.UserID,
			CancelledBy: requester.UserID,
		})
	})

	return cancelled, nil
}

// publishCreated announces order. submitted are the request lines the order
// items were reconciled from, index for index.
func (s *OrderService) publishCreated(ctx context.Context, order *models.Order, submitted []models.CartItem) {
	items := make([]models.OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = models.OrderItemData{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		}
		if i < len(submitted) {
			items[i].CartProductID = submitted[i].ProductID
		}
	}

	s.publish(models.EventTypeOrderCreated, func(base models.BaseEvent) error {
		return s.publisher.PublishOrderCreated(ctx, &models.OrderCreatedEvent{
			BaseEvent:     base,
			OrderID:       order.ID,
			UserID:        order.UserID,
			TotalAmount:   order.TotalAmount,
			PaymentMethod: order.PaymentMethod,
			Items:         items,
		})
	})
}

// publish sends an event. Failures never fail the request.
func (s *OrderService) publish(eventType string, send func(models.BaseEvent) error) {
	if s.publisher == nil {
		return
	}

	base := models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
	if err := send(base); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(eventType).Inc()
		s.logger.Error("Failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
