package cart

import (
	"context"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
)

// RedisStore keeps carts in Redis so every instance sees the same cart.
// Mutations run as Lua scripts, which Redis executes one at a time.
type RedisStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed cart store; idle carts expire after ttl
func NewRedisStore(client *redisclient.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.client.GetCart(ctx, userID)
}

func (s *RedisStore) Add(ctx context.Context, userID string, item models.CartItem) ([]models.CartItem, error) {
	return s.client.AddCartItem(ctx, userID, item, s.ttl)
}

func (s *RedisStore) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) ([]models.CartItem, error) {
	return s.client.UpdateCartItem(ctx, userID, productID, quantity, s.ttl)
}

func (s *RedisStore) Remove(ctx context.Context, userID, productID string) ([]models.CartItem, error) {
	return s.client.RemoveCartItem(ctx, userID, productID, s.ttl)
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	return s.client.ClearCart(ctx, userID, s.ttl)
}
