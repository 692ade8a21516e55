package service

import (
	"context"
	"testing"

	"storefront-service/internal/apperr"
	"storefront-service/internal/cart"
	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartServiceAddDefaultsQuantity(t *testing.T) {
	svc := NewCartService(cart.NewMemoryStore())
	ctx := context.Background()

	items, err := svc.AddItem(ctx, "u1", models.CartItem{ProductID: "p1", Name: "Tea", Price: decimal.NewFromInt(5)})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)

	items, err = svc.AddItem(ctx, "u1", models.CartItem{ProductID: "p1", Name: "Tea", Price: decimal.NewFromInt(5), Quantity: 3})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestCartServiceRejectsNegativeQuantity(t *testing.T) {
	svc := NewCartService(cart.NewMemoryStore())

	_, err := svc.AddItem(context.Background(), "u1", models.CartItem{ProductID: "p1", Quantity: -2})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	view, err := svc.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartServiceRejectsNegativePrice(t *testing.T) {
	svc := NewCartService(cart.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", models.CartItem{ProductID: "p1", Name: "Tea", Price: decimal.NewFromInt(-5), Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "Price must not be negative", apperr.Message(err))

	view, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.False(t, view.Total.IsNegative())
}

func TestCartServiceTotals(t *testing.T) {
	svc := NewCartService(cart.NewMemoryStore())
	ctx := context.Background()

	view, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, decimal.Zero.Equal(view.Total))

	_, err = svc.AddItem(ctx, "u1", models.CartItem{ProductID: "p1", Price: decimal.NewFromInt(310), Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", models.CartItem{ProductID: "p2", Price: decimal.RequireFromString("0.10"), Quantity: 3})
	require.NoError(t, err)

	view, err = svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("620.30").Equal(view.Total))
}

func TestCartServiceUpdateRemoveClear(t *testing.T) {
	svc := NewCartService(cart.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.UpdateQuantity(ctx, "u1", "p1", 2)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "Cart not found", apperr.Message(err))

	_, err = svc.AddItem(ctx, "u1", models.CartItem{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", models.CartItem{ProductID: "p2", Quantity: 1})
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, "u1", "p9", 2)
	assert.Equal(t, "Item not found in cart", apperr.Message(err))

	items, err := svc.UpdateQuantity(ctx, "u1", "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, items[0].Quantity)

	items, err = svc.UpdateQuantity(ctx, "u1", "p1", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)

	items, err = svc.RemoveItem(ctx, "u1", "p9")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = svc.RemoveItem(ctx, "nobody", "p1")
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, svc.Clear(ctx, "u1"))
	view, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
