// Package cart keeps each user's shopping cart.
package cart

import (
	"context"

	"storefront-service/internal/models"
)

// Store holds one ordered list of line items per user. Implementations must
// serialize read-modify-write cycles on the same user's cart.
type Store interface {
	// Get returns the user's items, empty when the user has no cart
	Get(ctx context.Context, userID string) ([]models.CartItem, error)
	// Add appends item or, when an item with the same product id exists,
	// adds item.Quantity to it
	Add(ctx context.Context, userID string, item models.CartItem) ([]models.CartItem, error)
	// UpdateQuantity sets the quantity of productID, removing it when quantity <= 0.
	// It fails with NotFound when the cart or the item is absent.
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) ([]models.CartItem, error)
	// Remove drops productID; an absent cart or item is not an error
	Remove(ctx context.Context, userID, productID string) ([]models.CartItem, error)
	// Clear resets the user's cart to empty
	Clear(ctx context.Context, userID string) error
}

func addItem(items []models.CartItem, item models.CartItem) []models.CartItem {
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}

func indexOf(items []models.CartItem, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func removeItem(items []models.CartItem, productID string) []models.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

func cloneItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}
