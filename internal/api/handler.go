package api

import (
	"context"
	"net/http"
	"time"

	"storefront-service/internal/auth"
	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ReadinessCheck is a dependency probed by /ready
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	catalog     *service.CatalogService
	carts       *service.CartService
	orders      *service.OrderService
	auth        auth.Provider
	checks      []ReadinessCheck
	corsOrigins []string
	logger      *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *service.CatalogService,
	carts *service.CartService,
	orders *service.OrderService,
	provider auth.Provider,
	corsOrigins []string,
	checks ...ReadinessCheck,
) *Handler {
	return &Handler{
		catalog:     catalog,
		carts:       carts,
		orders:      orders,
		auth:        provider,
		checks:      checks,
		corsOrigins: corsOrigins,
		logger:      util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(recovery())
	router.Use(requestID())
	router.Use(corsMiddleware(h.corsOrigins))
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))

	router.GET("/api/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	products := router.Group("/api/products")
	{
		products.GET("", h.listProducts)
		products.GET("/:id", h.getProduct)
	}

	cart := router.Group("/api/cart", protect(h.auth))
	{
		cart.GET("", h.getCart)
		cart.POST("", h.addCartItem)
		cart.PUT("/:productId", h.updateCartItem)
		cart.DELETE("/:productId", h.removeCartItem)
		cart.DELETE("", h.clearCart)
	}

	orders := router.Group("/api/orders", protect(h.auth))
	{
		orders.GET("", h.listOrders)
		orders.GET("/:id", h.getOrder)
		orders.POST("", h.createOrder)
		orders.PUT("/:id/status", authorize(auth.RoleAdmin), h.updateOrderStatus)
		orders.DELETE("/:id", h.cancelOrder)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "FreshMart API is running",
	})
}

// readinessCheck pings every dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := gin.H{}
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", check.Name), zap.Error(err))
			results[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.Name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": results,
		"time":   time.Now().Unix(),
	})
}
