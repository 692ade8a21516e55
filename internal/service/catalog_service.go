package service

import (
	"context"
	"fmt"
	"strings"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// CatalogService serves product browsing
type CatalogService struct {
	products ProductReader
	logger   *zap.Logger
}

func NewCatalogService(products ProductReader) *CatalogService {
	return &CatalogService{
		products: products,
		logger:   util.GetLogger(),
	}
}

// ListProducts returns products matching filter, active only unless asked otherwise
func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	filter.Category = models.Category(strings.ToLower(strings.TrimSpace(string(filter.Category))))
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, apperr.Validation("Invalid category")
	}
	filter.Search = strings.TrimSpace(filter.Search)

	products, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns a single product
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			util.RecordError(span, err)
			s.logger.Error("Failed to get product", zap.String("product_id", id), zap.Error(err))
		}
		return nil, err
	}
	return product, nil
}
