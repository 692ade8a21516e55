package api

import (
	"net/http"
	"strconv"

	"storefront-service/internal/models"

	"github.com/gin-gonic/gin"
)

// listProducts handles GET /api/products
func (h *Handler) listProducts(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("includeInactive"))
	filter := models.ProductFilter{
		Category:        models.Category(c.Query("category")),
		Search:          c.Query("search"),
		IncludeInactive: includeInactive,
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"count": len(products),
		"data":  products,
	})
}

// getProduct handles GET /api/products/:id
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"data": product})
}
