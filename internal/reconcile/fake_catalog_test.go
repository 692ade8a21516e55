package reconcile

import (
	"context"
	"regexp"
	"sync"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
)

var hexID = regexp.MustCompile(`^[0-9a-f]{24}$`)

type fakeCatalog struct {
	mu        sync.Mutex
	byID      map[string]*models.Product
	byName    map[string]*models.Product
	idErr     error
	nameErr   error
	idCalls   int
	nameCalls int
}

func newFakeCatalog(products ...*models.Product) *fakeCatalog {
	c := &fakeCatalog{
		byID:   make(map[string]*models.Product),
		byName: make(map[string]*models.Product),
	}
	for _, p := range products {
		c.byID[p.ID] = p
		c.byName[p.Name] = p
	}
	return c
}

func (c *fakeCatalog) ValidProductID(id string) bool {
	return hexID.MatchString(id)
}

func (c *fakeCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idCalls++
	if c.idErr != nil {
		return nil, c.idErr
	}
	if p, ok := c.byID[id]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("Product not found")
}

func (c *fakeCatalog) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nameCalls++
	if c.nameErr != nil {
		return nil, c.nameErr
	}
	if p, ok := c.byName[name]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("Product not found")
}
