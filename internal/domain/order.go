package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=120"`
	Address string `json:"address" validate:"required,max=255"`
	City    string `json:"city" validate:"required,max=100"`
	Zip     string `json:"zip" validate:"required,max=20"`
}

// OrderItem is written once at checkout. PriceAtPurchase is the catalog price at
// that moment and is never recomputed.
type OrderItem struct {
	ProductID       string         `json:"product_id"`
	ProductName     string         `json:"product_name"`
	Quantity        int            `json:"quantity"`
	PriceAtPurchase float64        `json:"price_at_purchase"`
	Specs           map[string]any `json:"specs,omitempty"`
}

func (i OrderItem) Subtotal() float64 {
	return RoundMoney(i.PriceAtPurchase * float64(i.Quantity))
}

// RoundMoney rounds to whole cents, matching the NUMERIC(12,2) columns.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

type Order struct {
	ID          uuid.UUID   `json:"id"`
	CheckoutID  uuid.UUID   `json:"checkout_id"`
	SessionID   string      `json:"-"`
	Customer    Customer    `json:"customer"`
	TotalAmount float64     `json:"total_amount"`
	Currency    string      `json:"currency"`
	Status      OrderStatus `json:"status"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (o *Order) ComputeTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return RoundMoney(total)
}

type StatusChange struct {
	From      *OrderStatus `json:"from,omitempty"`
	To        OrderStatus  `json:"to"`
	ChangedAt time.Time    `json:"changed_at"`
}

// OrderItemDetail is an order line enriched with what the catalog currently
// knows about the product. The price stays the snapshot.
type OrderItemDetail struct {
	OrderItem
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url"`
	Subtotal float64 `json:"subtotal"`
	Archived bool    `json:"archived,omitempty"`
}

type OrderDetails struct {
	Order
	Items   []OrderItemDetail `json:"items"`
	History []StatusChange    `json:"history"`
}

// OrderPlacedEvent is published through the outbox once an order commits.
type OrderPlacedEvent struct {
	OrderID     uuid.UUID   `json:"order_id"`
	CheckoutID  uuid.UUID   `json:"checkout_id"`
	SessionID   string      `json:"session_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	Currency    string      `json:"currency"`
	PlacedAt    time.Time   `json:"placed_at"`
}

const EventTypeOrderPlaced = "order.placed"
