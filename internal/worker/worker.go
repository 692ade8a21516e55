package worker

import (
	"context"
	"fmt"

	"storefront-service/internal/broker"
	"storefront-service/internal/cart"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// CartWorker takes ordered items out of a user's cart once the order has been placed
type CartWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	carts        cart.Store
	logger       *zap.Logger
}

// NewCartWorker creates a new cart worker
func NewCartWorker(consumer *broker.Consumer, carts cart.Store) *CartWorker {
	w := &CartWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		carts:        carts,
		logger:       util.GetLogger(),
	}
	w.eventHandler.OnOrderCreated(w.HandleOrderCreated)
	return w
}

// Start consumes order events until ctx is cancelled
func (w *CartWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting cart worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CartWorker) Stop() error {
	w.logger.Info("Stopping cart worker")
	return w.consumer.Close()
}

// HandleOrderCreated removes the ordered lines from the user's cart. Lines
// the order did not include stay.
func (w *CartWorker) HandleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	ctx, span := util.StartSpan(ctx, "CartWorker.HandleOrderCreated")
	defer span.End()

	if event.UserID == "" {
		w.logger.Warn("OrderCreated event without user", zap.String("order_id", event.OrderID))
		return nil
	}

	removed := 0
	for _, item := range event.Items {
		if item.CartProductID == "" {
			continue
		}
		if _, err := w.carts.Remove(ctx, event.UserID, item.CartProductID); err != nil {
			util.CartOperationsTotal.WithLabelValues("remove_on_order", "error").Inc()
			util.RecordError(span, err)
			return fmt.Errorf("failed to remove ordered item from cart: %w", err)
		}
		removed++
	}

	util.CartOperationsTotal.WithLabelValues("remove_on_order", "ok").Inc()
	w.logger.Info("Ordered items removed from cart",
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.Int("removed", removed))
	return nil
}
