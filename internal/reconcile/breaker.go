package reconcile

import (
	"context"
	"errors"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"

	"github.com/sony/gobreaker"
)

// BreakerCatalog guards catalog lookups with a circuit breaker.
// A not-found answer counts as a successful call.
type BreakerCatalog struct {
	catalog Catalog
	cb      *gobreaker.CircuitBreaker
}

// NewBreakerCatalog wraps catalog with cb
func NewBreakerCatalog(catalog Catalog, cb *gobreaker.CircuitBreaker) *BreakerCatalog {
	return &BreakerCatalog{catalog: catalog, cb: cb}
}

func (b *BreakerCatalog) ValidProductID(id string) bool {
	return b.catalog.ValidProductID(id)
}

func (b *BreakerCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return b.lookup(func() (*models.Product, error) {
		return b.catalog.GetProduct(ctx, id)
	})
}

func (b *BreakerCatalog) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	return b.lookup(func() (*models.Product, error) {
		return b.catalog.FindProductByName(ctx, name)
	})
}

func (b *BreakerCatalog) lookup(fn func() (*models.Product, error)) (*models.Product, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		product, err := fn()
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return product, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperr.Transient("catalog unavailable", err)
		}
		return nil, err
	}
	if res == nil {
		return nil, apperr.NotFound("Product not found")
	}
	return res.(*models.Product), nil
}
