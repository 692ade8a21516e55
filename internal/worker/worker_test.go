package worker

import (
	"context"
	"errors"
	"testing"

	"storefront-service/internal/cart"
	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	cart.Store
}

func (failingStore) Remove(context.Context, string, string) ([]models.CartItem, error) {
	return nil, errors.New("redis down")
}

func orderedEvent(userID string, productIDs ...string) *models.OrderCreatedEvent {
	event := &models.OrderCreatedEvent{OrderID: "o1", UserID: userID}
	for _, id := range productIDs {
		event.Items = append(event.Items, models.OrderItemData{CartProductID: id, Quantity: 1})
	}
	return event
}

func TestHandleOrderCreatedRemovesOrderedItems(t *testing.T) {
	store := cart.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Add(ctx, "u1", models.CartItem{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	_, err = store.Add(ctx, "u1", models.CartItem{ProductID: "p2", Quantity: 1})
	require.NoError(t, err)
	_, err = store.Add(ctx, "u2", models.CartItem{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	w := NewCartWorker(nil, store)
	require.NoError(t, w.HandleOrderCreated(ctx, orderedEvent("u1", "p1")))

	items, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)

	items, err = store.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestHandleOrderCreatedKeepsItemsAddedLater(t *testing.T) {
	store := cart.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Add(ctx, "u1", models.CartItem{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)
	// added after the order for p1 was placed
	_, err = store.Add(ctx, "u1", models.CartItem{ProductID: "p3", Quantity: 4})
	require.NoError(t, err)

	w := NewCartWorker(nil, store)
	require.NoError(t, w.HandleOrderCreated(ctx, orderedEvent("u1", "p1", "")))

	items, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p3", items[0].ProductID)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestHandleOrderCreatedWithoutUser(t *testing.T) {
	w := NewCartWorker(nil, failingStore{})
	assert.NoError(t, w.HandleOrderCreated(context.Background(), orderedEvent("", "p1")))
}

func TestHandleOrderCreatedPropagatesStoreError(t *testing.T) {
	w := NewCartWorker(nil, failingStore{})
	assert.Error(t, w.HandleOrderCreated(context.Background(), orderedEvent("u1", "p1")))
}
