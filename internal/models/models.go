package models

import (
	"errors"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, as clients send them.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category is a product category
type Category string

const (
	CategoryGrocery    Category = "grocery"
	CategoryCleaning   Category = "cleaning"
	CategoryOil        Category = "oil"
	CategoryBeverages  Category = "beverages"
	CategoryVegetables Category = "vegetables"
	CategoryFruits     Category = "fruits"
)

// Categories lists every valid category
var Categories = []Category{
	CategoryGrocery,
	CategoryCleaning,
	CategoryOil,
	CategoryBeverages,
	CategoryVegetables,
	CategoryFruits,
}

// Valid reports whether c is one of Categories
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Product represents a product in the catalog
type Product struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Category    Category        `db:"category" json:"category"`
	Image       string          `db:"image" json:"image"`
	Description string          `db:"description" json:"description,omitempty"`
	Stock       int             `db:"stock" json:"stock"`
	IsActive    bool            `db:"is_active" json:"isActive"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// ProductFilter narrows a catalog listing
type ProductFilter struct {
	Category        Category
	Search          string
	IncludeInactive bool
}

// CartItem is a client-submitted line item. ProductID is whatever the client
// sent and may not reference any catalog product.
type CartItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns price × quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumItems returns Σ price × quantity
func SumItems(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// MaxAmountDigits is the most significant digits a stored amount may carry
const MaxAmountDigits = 34

// Exponent bounds of a stored amount
const (
	minAmountExp = -6176
	maxAmountExp = 6111
)

// AmountStorable reports whether d can be stored exactly in a 128-bit
// decimal: at most MaxAmountDigits significant digits once trailing zeros
// are dropped, within the decimal128 exponent range.
func AmountStorable(d decimal.Decimal) bool {
	if d.IsZero() {
		return true
	}
	coef := new(big.Int).Abs(d.Coefficient())
	exp := int(d.Exponent())
	ten := big.NewInt(10)
	q, r := new(big.Int), new(big.Int)
	for {
		q.QuoRem(coef, ten, r)
		if r.Sign() != 0 {
			break
		}
		coef.Set(q)
		exp++
	}
	digits := len(coef.String())
	if digits > MaxAmountDigits {
		return false
	}
	// an exponent above the range is lowered by padding the coefficient with zeros
	return exp >= minAmountExp && exp+digits-1 <= maxAmountExp+MaxAmountDigits-1
}

// OrderItem is a line of an order. Name, price and image are snapshots taken
// when the order was placed; ProductID is an advisory catalog link.
type OrderItem struct {
	ProductID *string         `json:"product"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// DeliveryDetails is where an order is shipped
type DeliveryDetails struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Complete reports whether every field is present
func (d DeliveryDetails) Complete() bool {
	return d.FullName != "" && d.Phone != "" && d.Address != ""
}

// PaymentMethod is how an order is paid
type PaymentMethod string

const (
	PaymentCOD       PaymentMethod = "cod"
	PaymentEasypaisa PaymentMethod = "easypaisa"
	PaymentJazzcash  PaymentMethod = "jazzcash"
	PaymentBank      PaymentMethod = "bank"
)

// Valid reports whether m is a supported payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentEasypaisa, PaymentJazzcash, PaymentBank:
		return true
	}
	return false
}

// OrderStatus is a step of the order lifecycle
type OrderStatus string

// Order statuses
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// CancellableStatuses are the statuses an order may be cancelled from
var CancellableStatuses = []OrderStatus{OrderStatusPending, OrderStatusConfirmed}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in status s may be cancelled
func (s OrderStatus) Cancellable() bool {
	for _, v := range CancellableStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order represents a customer order
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	DeliveryDetails DeliveryDetails `json:"deliveryDetails"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ErrStatusConflict is returned by a conditional status update when the
// order exists but is not in one of the expected statuses
var ErrStatusConflict = errors.New("order status does not allow this transition")
