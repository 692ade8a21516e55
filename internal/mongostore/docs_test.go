package mongostore

import (
	"testing"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMoneyDecodesLegacyEncodings(t *testing.T) {
	d128, err := primitive.ParseDecimal128("199.50")
	require.NoError(t, err)

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"decimal128", d128, "199.5"},
		{"double", 199.5, "199.5"},
		{"int32", int32(310), "310"},
		{"int64", int64(310), "310"},
		{"string", "12.75", "12.75"},
		{"null", nil, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"price": tt.value})
			require.NoError(t, err)

			var out struct {
				Price money `bson:"price"`
			}
			require.NoError(t, bson.Unmarshal(raw, &out))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(out.Price.Decimal), "got %s", out.Price.String())
		})
	}
}

func TestMoneyRejectsNonNumeric(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"price": true})
	require.NoError(t, err)

	var out struct {
		Price money `bson:"price"`
	}
	assert.Error(t, bson.Unmarshal(raw, &out))
}

func TestMoneyIsStoredAsDecimal128(t *testing.T) {
	raw, err := bson.Marshal(struct {
		Price money `bson:"price"`
	}{money{decimal.RequireFromString("1234567.89")}})
	require.NoError(t, err)

	v := bson.Raw(raw).Lookup("price")
	d, ok := v.Decimal128OK()
	require.True(t, ok)
	assert.Equal(t, "1234567.89", d.String())
}

func TestOrderDocKeepsUnresolvedItems(t *testing.T) {
	productID := primitive.NewObjectID().Hex()
	bogus := "cart-item-7"
	order := &models.Order{
		UserID: "user-1",
		Items: []models.OrderItem{
			{ProductID: &productID, Name: "Sugar 2kg", Price: decimal.NewFromInt(310), Quantity: 2},
			{ProductID: nil, Name: "Mystery", Price: decimal.NewFromInt(1), Quantity: 1},
			{ProductID: &bogus, Name: "Odd", Price: decimal.NewFromInt(1), Quantity: 1},
		},
		TotalAmount:   decimal.NewFromInt(622),
		PaymentMethod: models.PaymentCOD,
		Status:        models.OrderStatusPending,
	}

	doc := newOrderDoc(order)
	doc.ID = primitive.NewObjectID()
	got := doc.toModel()

	require.Len(t, got.Items, 3)
	require.NotNil(t, got.Items[0].ProductID)
	assert.Equal(t, productID, *got.Items[0].ProductID)
	assert.Nil(t, got.Items[1].ProductID)
	assert.Nil(t, got.Items[2].ProductID)
	assert.Equal(t, doc.ID.Hex(), got.ID)
	assert.True(t, order.TotalAmount.Equal(got.TotalAmount))
}
