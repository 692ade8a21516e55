package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
)

type fakeCatalog struct {
	products map[string]*models.Product
	listErr  error
}

func newFakeCatalog(products ...*models.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[string]*models.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) ValidProductID(id string) bool {
	return strings.HasPrefix(id, "prod-")
}

func (c *fakeCatalog) GetProduct(_ context.Context, id string) (*models.Product, error) {
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("Product not found")
}

func (c *fakeCatalog) FindProductByName(_ context.Context, name string) (*models.Product, error) {
	for _, p := range c.products {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, apperr.NotFound("Product not found")
}

func (c *fakeCatalog) ListProducts(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	out := []models.Product{}
	for _, p := range c.products {
		if !filter.IncludeInactive && !p.IsActive {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*models.Order
	seq       int
	createErr error
	updateErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*models.Order)}
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	order.ID = fmt.Sprintf("order-%d", r.seq)
	order.CreatedAt = time.Unix(int64(r.seq), 0)
	order.UpdatedAt = order.CreatedAt
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) put(order models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = &order
}

func (r *fakeOrderRepo) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, apperr.NotFound("Order not found")
	}
	out := *o
	return &out, nil
}

func (r *fakeOrderRepo) ListOrders(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Order{}
	for _, o := range r.orders {
		if userID == "" || o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(_ context.Context, id string, status models.OrderStatus, allowedFrom ...models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	o, ok := r.orders[id]
	if !ok {
		return nil, apperr.NotFound("Order not found")
	}
	if len(allowedFrom) > 0 {
		allowed := false
		for _, st := range allowedFrom {
			if o.Status == st {
				allowed = true
			}
		}
		if !allowed {
			return nil, models.ErrStatusConflict
		}
	}
	o.Status = status
	out := *o
	return &out, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	created   []*models.OrderCreatedEvent
	updated   []*models.OrderStatusUpdatedEvent
	cancelled []*models.OrderCancelledEvent
	err       error
}

func (p *fakePublisher) PublishOrderCreated(_ context.Context, e *models.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, e)
	return p.err
}

func (p *fakePublisher) PublishOrderStatusUpdated(_ context.Context, e *models.OrderStatusUpdatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, e)
	return p.err
}

func (p *fakePublisher) PublishOrderCancelled(_ context.Context, e *models.OrderCancelledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, e)
	return p.err
}

type fakeIdempotency struct {
	mu        sync.Mutex
	keys      map[string]string
	lookupErr error
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{keys: make(map[string]string)}
}

func (f *fakeIdempotency) LookupOrder(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return "", false, f.lookupErr
	}
	id, ok := f.keys[key]
	return id, ok, nil
}

func (f *fakeIdempotency) RememberOrder(_ context.Context, key, orderID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.keys[key]; !ok {
		f.keys[key] = orderID
	}
	return nil
}

var errStoreDown = errors.New("connection refused")
