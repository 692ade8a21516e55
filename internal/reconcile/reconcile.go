// Package reconcile links client-submitted line items to catalog products.
//
// A submitted item may carry a product id the client made up, a stale id, or
// none at all. Each item is offered to an ordered list of strategies and the
// first one that finds a product supplies the link. Items no strategy can
// resolve keep a nil product reference. Lookup failures never fail an order.
package reconcile

import (
	"context"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Catalog is the read side of the product catalog used for reconciliation
type Catalog interface {
	// ValidProductID reports whether id is well formed for the catalog's key space
	ValidProductID(id string) bool
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	FindProductByName(ctx context.Context, name string) (*models.Product, error)
}

// Method names how an order item was linked to the catalog
type Method string

const (
	MethodByID       Method = "by_id"
	MethodByName     Method = "by_name"
	MethodUnresolved Method = "unresolved"
)

// Strategy resolves one line item to a catalog product id
type Strategy interface {
	Method() Method
	Resolve(ctx context.Context, item models.CartItem) (string, bool)
}

// Resolution is the outcome for one line item
type Resolution struct {
	Method    Method
	ProductID *string
}

// Reconciler evaluates strategies in order for each line item
type Reconciler struct {
	strategies []Strategy
	logger     *zap.Logger
}

// New creates a reconciler trying the item's product id, then its name
func New(catalog Catalog) *Reconciler {
	return NewWithStrategies(NewByID(catalog), NewByName(catalog))
}

// NewWithStrategies creates a reconciler with an explicit strategy chain
func NewWithStrategies(strategies ...Strategy) *Reconciler {
	return &Reconciler{
		strategies: strategies,
		logger:     util.GetLogger(),
	}
}

// Resolve runs the strategy chain for a single item
func (r *Reconciler) Resolve(ctx context.Context, item models.CartItem) Resolution {
	for _, s := range r.strategies {
		if id, ok := s.Resolve(ctx, item); ok {
			return Resolution{Method: s.Method(), ProductID: &id}
		}
	}
	return Resolution{Method: MethodUnresolved}
}

// Reconcile converts submitted items into order items, one-to-one and in order.
// Name, price, image and quantity are copied from the submitted item as is.
func (r *Reconciler) Reconcile(ctx context.Context, items []models.CartItem) []models.OrderItem {
	ctx, span := util.StartSpan(ctx, "Reconciler.Reconcile")
	defer span.End()

	out := make([]models.OrderItem, len(items))
	for i, item := range items {
		res := r.Resolve(ctx, item)
		util.ReconciliationOutcomesTotal.WithLabelValues(string(res.Method)).Inc()

		if res.Method == MethodUnresolved {
			r.logger.Warn("Order item left without product link",
				zap.Int("index", i),
				zap.String("product_id", item.ProductID),
				zap.String("name", item.Name))
		}

		out[i] = models.OrderItem{
			ProductID: res.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		}
	}
	return out
}
