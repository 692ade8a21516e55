package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

//go:embed scripts/cart_add.lua
var cartAddScript string

//go:embed scripts/cart_update.lua
var cartUpdateScript string

//go:embed scripts/cart_remove.lua
var cartRemoveScript string

const (
	cartStatusOK = iota
	cartStatusNoCart
	cartStatusNoItem
)

type Client struct {
	rdb          *redis.Client
	addScript    *redis.Script
	updateScript *redis.Script
	removeScript *redis.Script
}

// NewClient creates a new Redis client and verifies the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewFromRedis(rdb), nil
}

// NewFromRedis wraps an existing go-redis client
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{
		rdb:          rdb,
		addScript:    redis.NewScript(cartAddScript),
		updateScript: redis.NewScript(cartUpdateScript),
		removeScript: redis.NewScript(cartRemoveScript),
	}
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// cartEntry is the stored form of a line item. The price is kept as a string
// so it survives the Lua round trip without float rounding.
type cartEntry struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func ttlSeconds(ttl time.Duration) int64 {
	if s := int64(ttl / time.Second); s > 0 {
		return s
	}
	return 1
}

// GetCart returns the user's cart, empty when none is stored
func (c *Client) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	raw, err := c.rdb.Get(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, apperr.Transient("failed to read cart", err)
	}
	return decodeCart(raw)
}

// AddCartItem atomically merges item into the user's cart
func (c *Client) AddCartItem(ctx context.Context, userID string, item models.CartItem, ttl time.Duration) ([]models.CartItem, error) {
	payload, err := json.Marshal(toEntry(item))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart item: %w", err)
	}

	raw, err := c.addScript.Run(ctx, c.rdb, []string{cartKey(userID)}, string(payload), ttlSeconds(ttl)).Text()
	if err != nil {
		return nil, apperr.Transient("cart add script failed", err)
	}
	return decodeCart(raw)
}

// UpdateCartItem atomically sets or removes a line item's quantity
func (c *Client) UpdateCartItem(ctx context.Context, userID, productID string, quantity int, ttl time.Duration) ([]models.CartItem, error) {
	result, err := c.updateScript.Run(ctx, c.rdb, []string{cartKey(userID)}, productID, quantity, ttlSeconds(ttl)).Slice()
	if err != nil {
		return nil, apperr.Transient("cart update script failed", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected cart update result: %v", result)
	}

	status, ok := result[0].(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected cart update status type %T", result[0])
	}
	switch status {
	case cartStatusNoCart:
		return nil, apperr.NotFound("Cart not found")
	case cartStatusNoItem:
		return nil, apperr.NotFound("Item not found in cart")
	}

	raw, _ := result[1].(string)
	return decodeCart(raw)
}

// RemoveCartItem atomically drops a line item
func (c *Client) RemoveCartItem(ctx context.Context, userID, productID string, ttl time.Duration) ([]models.CartItem, error) {
	raw, err := c.removeScript.Run(ctx, c.rdb, []string{cartKey(userID)}, productID, ttlSeconds(ttl)).Text()
	if err != nil {
		return nil, apperr.Transient("cart remove script failed", err)
	}
	return decodeCart(raw)
}

// ClearCart stores an empty cart for the user
func (c *Client) ClearCart(ctx context.Context, userID string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, cartKey(userID), "[]", ttl).Err(); err != nil {
		return apperr.Transient("failed to clear cart", err)
	}
	return nil
}

func toEntry(item models.CartItem) cartEntry {
	return cartEntry{
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.Price.String(),
		Image:     item.Image,
		Quantity:  item.Quantity,
	}
}

func decodeCart(raw string) ([]models.CartItem, error) {
	if raw == "" || raw == "{}" {
		return []models.CartItem{}, nil
	}

	var entries []cartEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	items := make([]models.CartItem, 0, len(entries))
	for _, e := range entries {
		price, err := decimal.NewFromString(e.Price)
		if err != nil {
			price = decimal.Zero
		}
		items = append(items, models.CartItem{
			ProductID: e.ProductID,
			Name:      e.Name,
			Price:     price,
			Image:     e.Image,
			Quantity:  e.Quantity,
		})
	}
	return items, nil
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:order:%s", key)
}

// LookupOrder returns the order id remembered for an idempotency key
func (c *Client) LookupOrder(ctx context.Context, key string) (string, bool, error) {
	orderID, err := c.rdb.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperr.Transient("failed to read idempotency key", err)
	}
	return orderID, true, nil
}

// RememberOrder stores the order id for an idempotency key unless one is already set
func (c *Client) RememberOrder(ctx context.Context, key, orderID string, ttl time.Duration) error {
	if err := c.rdb.SetNX(ctx, idempotencyKey(key), orderID, ttl).Err(); err != nil {
		return apperr.Transient("failed to store idempotency key", err)
	}
	return nil
}
