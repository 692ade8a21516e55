package service

import (
	"context"
	"testing"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogFixture() *fakeCatalog {
	return newFakeCatalog(
		&models.Product{ID: "prod-1", Name: "Sugar 2kg", Price: decimal.NewFromInt(310), Category: models.CategoryGrocery, IsActive: true},
		&models.Product{ID: "prod-2", Name: "Apple", Price: decimal.NewFromInt(90), Category: models.CategoryFruits, IsActive: true},
		&models.Product{ID: "prod-3", Name: "Old Sugar", Price: decimal.NewFromInt(1), Category: models.CategoryGrocery, IsActive: false},
	)
}

func TestCatalogListProducts(t *testing.T) {
	svc := NewCatalogService(catalogFixture())
	ctx := context.Background()

	all, err := svc.ListProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Apple", all[0].Name)

	grocery, err := svc.ListProducts(ctx, models.ProductFilter{Category: " Grocery "})
	require.NoError(t, err)
	require.Len(t, grocery, 1)
	assert.Equal(t, "prod-1", grocery[0].ID)

	sugar, err := svc.ListProducts(ctx, models.ProductFilter{Search: "sugar", IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, sugar, 2)

	_, err = svc.ListProducts(ctx, models.ProductFilter{Category: "toys"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCatalogListProductsStoreFailure(t *testing.T) {
	catalog := catalogFixture()
	catalog.listErr = apperr.Transient("failed to list products", errStoreDown)
	svc := NewCatalogService(catalog)

	_, err := svc.ListProducts(context.Background(), models.ProductFilter{})
	assert.Equal(t, apperr.KindTransient, apperr.KindOf(err))
}

func TestCatalogGetProduct(t *testing.T) {
	svc := NewCatalogService(catalogFixture())

	p, err := svc.GetProduct(context.Background(), "prod-2")
	require.NoError(t, err)
	assert.Equal(t, "Apple", p.Name)

	_, err = svc.GetProduct(context.Background(), "nope")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
