package mongostore

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateOrder inserts an order and fills its generated fields
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	order.CreatedAt = now
	order.UpdatedAt = now

	doc := newOrderDoc(order)
	doc.ID = primitive.NewObjectID()

	// a single document insert is atomic, items included
	if _, err := s.orders.InsertOne(ctx, doc); err != nil {
		return apperr.Transient("failed to create order", err)
	}
	order.ID = doc.ID.Hex()
	return nil
}

// GetOrderByID retrieves an order
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("Order not found")
	}

	var doc orderDoc
	err = s.orders.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Transient("failed to get order", err)
	}

	order := doc.toModel()
	return &order, nil
}

// ListOrders retrieves orders newest first. An empty userID lists every order.
func (s *Store) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user"] = userID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Transient("failed to list orders", err)
	}

	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.Transient("failed to read orders", err)
	}

	orders := make([]models.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, d.toModel())
	}
	return orders, nil
}

// UpdateOrderStatus sets the status of an order. When allowedFrom is not
// empty the update only applies if the current status is one of them, and
// models.ErrStatusConflict is returned otherwise.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, allowedFrom ...models.OrderStatus) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("Order not found")
	}

	filter := bson.M{"_id": oid}
	if len(allowedFrom) > 0 {
		from := make([]string, len(allowedFrom))
		for i, st := range allowedFrom {
			from[i] = string(st)
		}
		filter["status"] = bson.M{"$in": from}
	}
	update := bson.M{"$set": bson.M{
		"status":    string(status),
		"updatedAt": time.Now().UTC().Truncate(time.Millisecond),
	}}

	var doc orderDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = s.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, err := s.orders.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return nil, apperr.Transient("failed to check order", err)
		}
		if n > 0 {
			return nil, models.ErrStatusConflict
		}
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Transient("failed to update order status", err)
	}

	order := doc.toModel()
	return &order, nil
}
