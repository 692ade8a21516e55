package service

import (
	"context"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/cart"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartView is a cart with its computed total
type CartView struct {
	Items []models.CartItem
	Total decimal.Decimal
}

// CartService applies cart rules on top of a cart.Store
type CartService struct {
	store  cart.Store
	logger *zap.Logger
}

func NewCartService(store cart.Store) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// GetCart returns the user's items and their total
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	items, err := s.store.Get(ctx, userID)
	s.observe("get", err)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &CartView{Items: items, Total: models.SumItems(items)}, nil
}

// AddItem adds item to the cart, merging quantities for a known product id.
// A zero quantity means one.
func (s *CartService) AddItem(ctx context.Context, userID string, item models.CartItem) ([]models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	if item.Quantity < 0 {
		err := apperr.Validation("Quantity must be at least 1")
		s.observe("add", err)
		return nil, err
	}
	if item.Price.IsNegative() {
		err := apperr.Validation("Price must not be negative")
		s.observe("add", err)
		return nil, err
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	items, err := s.store.Add(ctx, userID, item)
	s.observe("add", err)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.logger.Debug("Cart item added",
		zap.String("user_id", userID),
		zap.String("product_id", item.ProductID),
		zap.Int("quantity", item.Quantity))
	return items, nil
}

// UpdateQuantity sets an item's quantity; zero or less removes it
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) ([]models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateQuantity")
	defer span.End()

	items, err := s.store.UpdateQuantity(ctx, userID, productID, quantity)
	s.observe("update", err)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return items, nil
}

// RemoveItem drops an item; removing something absent is not an error
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) ([]models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveItem")
	defer span.End()

	items, err := s.store.Remove(ctx, userID, productID)
	s.observe("remove", err)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return items, nil
}

// Clear empties the user's cart
func (s *CartService) Clear(ctx context.Context, userID string) error {
	ctx, span := util.StartSpan(ctx, "CartService.Clear")
	defer span.End()

	err := s.store.Clear(ctx, userID)
	s.observe("clear", err)
	if err != nil {
		util.RecordError(span, err)
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *CartService) observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = apperr.KindOf(err).String()
	}
	util.CartOperationsTotal.WithLabelValues(operation, result).Inc()
}
