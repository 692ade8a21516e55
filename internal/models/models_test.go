package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumItems(t *testing.T) {
	items := []CartItem{
		{Name: "Sugar 2kg", Price: decimal.NewFromInt(310), Quantity: 2},
		{Name: "Milk 1L", Price: decimal.RequireFromString("199.50"), Quantity: 1},
	}

	assert.True(t, decimal.RequireFromString("819.50").Equal(SumItems(items)))
	assert.True(t, decimal.Zero.Equal(SumItems(nil)))
}

func TestOrderStatusCancellable(t *testing.T) {
	assert.True(t, OrderStatusPending.Cancellable())
	assert.True(t, OrderStatusConfirmed.Cancellable())
	assert.False(t, OrderStatusProcessing.Cancellable())
	assert.False(t, OrderStatusShipped.Cancellable())
	assert.False(t, OrderStatusDelivered.Cancellable())
	assert.False(t, OrderStatusCancelled.Cancellable())
	assert.False(t, OrderStatus("lost").Valid())
}

func TestEnumerations(t *testing.T) {
	assert.True(t, PaymentMethod("jazzcash").Valid())
	assert.False(t, PaymentMethod("card").Valid())
	assert.True(t, Category("fruits").Valid())
	assert.False(t, Category("Fruits").Valid())
}

func TestCartItemPriceIsJSONNumber(t *testing.T) {
	var item CartItem
	require.NoError(t, json.Unmarshal([]byte(`{"productId":"p1","name":"Tea","price":12.5,"quantity":3}`), &item))
	assert.True(t, decimal.RequireFromString("37.5").Equal(item.LineTotal()))

	out, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"price":12.5`)
}

func TestDeliveryDetailsComplete(t *testing.T) {
	assert.True(t, DeliveryDetails{FullName: "A", Phone: "1", Address: "X"}.Complete())
	assert.False(t, DeliveryDetails{FullName: "A", Address: "X"}.Complete())
}

func TestAmountStorable(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"0", true},
		{"310", true},
		{"199.50", true},
		{"-12.5", true},
		{"9999999999999999999999999999999999", true},
		{"99999999999999999999999999999999999", false},
		{"0.12345678901234567890123456789012345678", false},
		{"100000000000000000000000000000000000000000", true},
		{"1e6144", true},
		{"1e6145", false},
		{"1e-6176", true},
		{"1e-6177", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, AmountStorable(decimal.RequireFromString(tt.amount)))
		})
	}
}
