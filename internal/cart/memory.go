package cart

import (
	"context"
	"sync"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
)

// MemoryStore keeps carts in process memory. Each user's cart has its own
// mutex; the map lock is held only to find or create an entry.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]*userCart
}

type userCart struct {
	mu    sync.Mutex
	items []models.CartItem
}

// NewMemoryStore creates an empty in-memory cart store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*userCart)}
}

func (s *MemoryStore) lookup(userID string) (*userCart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	return c, ok
}

func (s *MemoryStore) entry(userID string) *userCart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		c = &userCart{items: []models.CartItem{}}
		s.carts[userID] = c
	}
	return c
}

func (s *MemoryStore) Get(ctx context.Context, userID string) ([]models.CartItem, error) {
	c, ok := s.lookup(userID)
	if !ok {
		return []models.CartItem{}, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items), nil
}

func (s *MemoryStore) Add(ctx context.Context, userID string, item models.CartItem) ([]models.CartItem, error) {
	c := s.entry(userID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = addItem(c.items, item)
	return cloneItems(c.items), nil
}

func (s *MemoryStore) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) ([]models.CartItem, error) {
	c, ok := s.lookup(userID)
	if !ok {
		return nil, apperr.NotFound("Cart not found")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.items, productID)
	if i < 0 {
		return nil, apperr.NotFound("Item not found in cart")
	}
	if quantity <= 0 {
		c.items = removeItem(c.items, productID)
	} else {
		c.items[i].Quantity = quantity
	}
	return cloneItems(c.items), nil
}

func (s *MemoryStore) Remove(ctx context.Context, userID, productID string) ([]models.CartItem, error) {
	c, ok := s.lookup(userID)
	if !ok {
		return []models.CartItem{}, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = removeItem(c.items, productID)
	return cloneItems(c.items), nil
}

func (s *MemoryStore) Clear(ctx context.Context, userID string) error {
	c := s.entry(userID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []models.CartItem{}
	return nil
}
