package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, total_amount, delivery_full_name, delivery_phone, delivery_address,
	payment_method, status, created_at, updated_at`

type orderRow struct {
	ID            string          `db:"id"`
	UserID        string          `db:"user_id"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	FullName      string          `db:"delivery_full_name"`
	Phone         string          `db:"delivery_phone"`
	Address       string          `db:"delivery_address"`
	PaymentMethod string          `db:"payment_method"`
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type orderItemRow struct {
	OrderID   string          `db:"order_id"`
	Position  int             `db:"position"`
	ProductID sql.NullString  `db:"product_id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Quantity  int             `db:"quantity"`
	Image     string          `db:"image"`
}

func (r orderRow) toModel(items []models.OrderItem) models.Order {
	if items == nil {
		items = []models.OrderItem{}
	}
	return models.Order{
		ID:          r.ID,
		UserID:      r.UserID,
		Items:       items,
		TotalAmount: r.TotalAmount,
		DeliveryDetails: models.DeliveryDetails{
			FullName: r.FullName,
			Phone:    r.Phone,
			Address:  r.Address,
		},
		PaymentMethod: models.PaymentMethod(r.PaymentMethod),
		Status:        models.OrderStatus(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (r orderItemRow) toModel() models.OrderItem {
	item := models.OrderItem{
		Name:     r.Name,
		Price:    r.Price,
		Quantity: r.Quantity,
		Image:    r.Image,
	}
	if r.ProductID.Valid {
		id := r.ProductID.String
		item.ProductID = &id
	}
	return item
}

// CreateOrder inserts an order and its items in one transaction and fills the
// generated fields on order
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Transient("failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (user_id, total_amount, delivery_full_name, delivery_phone, delivery_address,
			payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	row := tx.QueryRowxContext(ctx, query,
		order.UserID, order.TotalAmount,
		order.DeliveryDetails.FullName, order.DeliveryDetails.Phone, order.DeliveryDetails.Address,
		string(order.PaymentMethod), string(order.Status))
	if err := row.Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return apperr.Transient("failed to create order", err)
	}

	for i, item := range order.Items {
		var productID sql.NullString
		if item.ProductID != nil && validID(*item.ProductID) {
			productID = sql.NullString{String: *item.ProductID, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, name, price, quantity, image)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			order.ID, i, productID, item.Name, item.Price, item.Quantity, item.Image)
		if err != nil {
			return apperr.Transient("failed to create order item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Transient("failed to commit order", err)
	}
	return nil
}

// GetOrderByID retrieves an order with its items
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	if !validID(id) {
		return nil, apperr.NotFound("Order not found")
	}

	var row orderRow
	err := s.db.GetContext(ctx, &row, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Transient("failed to get order", err)
	}

	orders, err := s.attachItems(ctx, []orderRow{row})
	if err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListOrders retrieves orders newest first. An empty userID lists every order.
func (s *Store) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var (
		rows []orderRow
		err  error
	)
	if userID == "" {
		err = s.db.SelectContext(ctx, &rows,
			"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, id DESC")
	} else {
		err = s.db.SelectContext(ctx, &rows,
			"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC", userID)
	}
	if err != nil {
		return nil, apperr.Transient("failed to list orders", err)
	}
	return s.attachItems(ctx, rows)
}

// UpdateOrderStatus sets the status of an order. When allowedFrom is not
// empty the update only applies if the current status is one of them, and
// models.ErrStatusConflict is returned otherwise.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, allowedFrom ...models.OrderStatus) (*models.Order, error) {
	if !validID(id) {
		return nil, apperr.NotFound("Order not found")
	}

	query := "UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2"
	args := []interface{}{string(status), id}
	if len(allowedFrom) > 0 {
		from := make([]string, len(allowedFrom))
		for i, st := range allowedFrom {
			from[i] = string(st)
		}
		query += " AND status = ANY($3)"
		args = append(args, pq.Array(from))
	}
	query += " RETURNING " + orderColumns

	var row orderRow
	err := s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := s.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)", id); err != nil {
			return nil, apperr.Transient("failed to check order", err)
		}
		if exists {
			return nil, models.ErrStatusConflict
		}
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Transient("failed to update order status", err)
	}

	orders, err := s.attachItems(ctx, []orderRow{row})
	if err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (s *Store) attachItems(ctx context.Context, rows []orderRow) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(rows))
	if len(rows) == 0 {
		return orders, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	query, args, err := sqlx.In(
		"SELECT order_id, position, product_id, name, price, quantity, image FROM order_items WHERE order_id IN (?) ORDER BY order_id, position",
		ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build items query: %w", err)
	}
	query = s.db.Rebind(query)

	var itemRows []orderItemRow
	if err := s.db.SelectContext(ctx, &itemRows, query, args...); err != nil {
		return nil, apperr.Transient("failed to get order items", err)
	}

	byOrder := make(map[string][]models.OrderItem, len(rows))
	for _, ir := range itemRows {
		byOrder[ir.OrderID] = append(byOrder[ir.OrderID], ir.toModel())
	}
	for _, r := range rows {
		orders = append(orders, r.toModel(byOrder[r.ID]))
	}
	return orders, nil
}
