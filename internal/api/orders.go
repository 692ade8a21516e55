package api

import (
	"net/http"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
)

const idempotencyKeyHeader = "Idempotency-Key"

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// listOrders handles GET /api/orders
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), identity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"count": len(orders),
		"data":  orders,
	})
}

// getOrder handles GET /api/orders/:id
func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"data": order})
}

// createOrder handles POST /api/orders
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("Invalid request body"))
		return
	}
	req.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)

	res, err := h.orders.CreateOrder(c.Request.Context(), identity(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if res.Replayed {
		c.Header("Idempotent-Replayed", "true")
	}
	respond(c, http.StatusCreated, gin.H{
		"data":    res.Order,
		"message": "Order placed successfully",
	})
}

// updateOrderStatus handles PUT /api/orders/:id/status
func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("Invalid request body"))
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), identity(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"data":    order,
		"message": "Order status updated",
	})
}

// cancelOrder handles DELETE /api/orders/:id
func (h *Handler) cancelOrder(c *gin.Context) {
	if _, err := h.orders.CancelOrder(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "Order cancelled successfully"})
}
