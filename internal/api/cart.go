package api

import (
	"net/http"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"

	"github.com/gin-gonic/gin"
)

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// getCart handles GET /api/cart
func (h *Handler) getCart(c *gin.Context) {
	view, err := h.carts.GetCart(c.Request.Context(), identity(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"data":  view.Items,
		"total": view.Total,
	})
}

// addCartItem handles POST /api/cart
func (h *Handler) addCartItem(c *gin.Context) {
	var item models.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		respondError(c, apperr.Validation("Invalid request body"))
		return
	}

	items, err := h.carts.AddItem(c.Request.Context(), identity(c).UserID, item)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"data":    items,
		"message": "Item added to cart",
	})
}

// updateCartItem handles PUT /api/cart/:productId
func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("Invalid request body"))
		return
	}
	if req.Quantity == nil {
		respondError(c, apperr.Validation("Quantity is required"))
		return
	}

	items, err := h.carts.UpdateQuantity(c.Request.Context(), identity(c).UserID, c.Param("productId"), *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"data": items})
}

// removeCartItem handles DELETE /api/cart/:productId
func (h *Handler) removeCartItem(c *gin.Context) {
	items, err := h.carts.RemoveItem(c.Request.Context(), identity(c).UserID, c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"data":    items,
		"message": "Item removed from cart",
	})
}

// clearCart handles DELETE /api/cart
func (h *Handler) clearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), identity(c).UserID); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "Cart cleared"})
}
