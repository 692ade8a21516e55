package reconcile

import (
	"context"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// ByID links an item through its submitted product id
type ByID struct {
	catalog Catalog
	logger  *zap.Logger
}

// NewByID creates the product-id strategy
func NewByID(catalog Catalog) *ByID {
	return &ByID{catalog: catalog, logger: util.GetLogger()}
}

func (s *ByID) Method() Method { return MethodByID }

func (s *ByID) Resolve(ctx context.Context, item models.CartItem) (string, bool) {
	if item.ProductID == "" {
		return "", false
	}
	if !s.catalog.ValidProductID(item.ProductID) {
		s.logger.Warn("Invalid productId format", zap.String("product_id", item.ProductID))
		return "", false
	}

	product, err := s.catalog.GetProduct(ctx, item.ProductID)
	if err != nil {
		logLookupMiss(s.logger, MethodByID, err, zap.String("product_id", item.ProductID))
		return "", false
	}
	return product.ID, true
}

// ByName links an item through an exact match on its name
type ByName struct {
	catalog Catalog
	logger  *zap.Logger
}

// NewByName creates the exact-name strategy
func NewByName(catalog Catalog) *ByName {
	return &ByName{catalog: catalog, logger: util.GetLogger()}
}

func (s *ByName) Method() Method { return MethodByName }

func (s *ByName) Resolve(ctx context.Context, item models.CartItem) (string, bool) {
	if item.Name == "" {
		return "", false
	}

	product, err := s.catalog.FindProductByName(ctx, item.Name)
	if err != nil {
		logLookupMiss(s.logger, MethodByName, err, zap.String("name", item.Name))
		return "", false
	}
	return product.ID, true
}

func logLookupMiss(logger *zap.Logger, method Method, err error, field zap.Field) {
	if apperr.Is(err, apperr.KindNotFound) {
		logger.Warn("Product not found", zap.String("strategy", string(method)), field)
		return
	}
	util.CatalogLookupFailuresTotal.WithLabelValues(string(method)).Inc()
	logger.Warn("Catalog lookup failed, falling through",
		zap.String("strategy", string(method)),
		field,
		zap.Error(err))
}
