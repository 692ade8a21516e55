package mongostore

import (
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// money is written as Decimal128. Reads also accept the numeric and string
// encodings older documents were written with.
type money struct {
	decimal.Decimal
}

func (m money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, err := primitive.ParseDecimal128(m.String())
	if err != nil {
		return 0, nil, fmt.Errorf("encode amount %s: %w", m.String(), err)
	}
	return bson.MarshalValue(d)
}

func (m *money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	var err error
	switch t {
	case bsontype.Decimal128:
		m.Decimal, err = decimal.NewFromString(rv.Decimal128().String())
	case bsontype.Double:
		m.Decimal = decimal.NewFromFloat(rv.Double())
	case bsontype.Int32:
		m.Decimal = decimal.NewFromInt32(rv.Int32())
	case bsontype.Int64:
		m.Decimal = decimal.NewFromInt(rv.Int64())
	case bsontype.String:
		m.Decimal, err = decimal.NewFromString(rv.StringValue())
	case bsontype.Null, bsontype.Undefined:
		m.Decimal = decimal.Zero
	default:
		return fmt.Errorf("cannot decode %s into amount", t)
	}
	return err
}

type productDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Price       money              `bson:"price"`
	Category    string             `bson:"category"`
	Image       string             `bson:"image"`
	Description string             `bson:"description"`
	Stock       int                `bson:"stock"`
	IsActive    bool               `bson:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d productDoc) toModel() *models.Product {
	return &models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Price:       d.Price.Decimal,
		Category:    models.Category(d.Category),
		Image:       d.Image,
		Description: d.Description,
		Stock:       d.Stock,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type deliveryDoc struct {
	FullName string `bson:"fullName"`
	Phone    string `bson:"phone"`
	Address  string `bson:"address"`
}

type orderItemDoc struct {
	Product  *primitive.ObjectID `bson:"product"`
	Name     string              `bson:"name"`
	Price    money               `bson:"price"`
	Quantity int                 `bson:"quantity"`
	Image    string              `bson:"image"`
}

type orderDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	User            string             `bson:"user"`
	Items           []orderItemDoc     `bson:"items"`
	TotalAmount     money              `bson:"totalAmount"`
	DeliveryDetails deliveryDoc        `bson:"deliveryDetails"`
	PaymentMethod   string             `bson:"paymentMethod"`
	Status          string             `bson:"status"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func newOrderDoc(o *models.Order) orderDoc {
	items := make([]orderItemDoc, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemDoc{
			Name:     item.Name,
			Price:    money{item.Price},
			Quantity: item.Quantity,
			Image:    item.Image,
		}
		if item.ProductID != nil {
			if oid, err := primitive.ObjectIDFromHex(*item.ProductID); err == nil {
				items[i].Product = &oid
			}
		}
	}
	return orderDoc{
		User:        o.UserID,
		Items:       items,
		TotalAmount: money{o.TotalAmount},
		DeliveryDetails: deliveryDoc{
			FullName: o.DeliveryDetails.FullName,
			Phone:    o.DeliveryDetails.Phone,
			Address:  o.DeliveryDetails.Address,
		},
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (d orderDoc) toModel() models.Order {
	items := make([]models.OrderItem, len(d.Items))
	for i, item := range d.Items {
		items[i] = models.OrderItem{
			Name:     item.Name,
			Price:    item.Price.Decimal,
			Quantity: item.Quantity,
			Image:    item.Image,
		}
		if item.Product != nil {
			id := item.Product.Hex()
			items[i].ProductID = &id
		}
	}
	return models.Order{
		ID:          d.ID.Hex(),
		UserID:      d.User,
		Items:       items,
		TotalAmount: d.TotalAmount.Decimal,
		DeliveryDetails: models.DeliveryDetails{
			FullName: d.DeliveryDetails.FullName,
			Phone:    d.DeliveryDetails.Phone,
			Address:  d.DeliveryDetails.Address,
		},
		PaymentMethod: models.PaymentMethod(d.PaymentMethod),
		Status:        models.OrderStatus(d.Status),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
