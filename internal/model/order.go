// Package model defines domain models and data structures.
package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderView represents the materialized projection of an order.
// It is owned by the view builder; this service only reads it.
type OrderView struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"orderId"`
	CustomerID string    `json:"customerId"`
	Item       string    `json:"item"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReceiptStatus reports how far a placed order got through confirmation.
type ReceiptStatus string

const (
	// ReceiptStatusConfirmed means the view showed the write before the deadline.
	ReceiptStatusConfirmed ReceiptStatus = "confirmed"
	// ReceiptStatusAccepted means the log acknowledged the write but the view did not show it in time.
	ReceiptStatusAccepted ReceiptStatus = "accepted"
)

// OrderReceipt is returned to the caller of PlaceOrder.
type OrderReceipt struct {
	ID         uuid.UUID     `json:"id"`
	OrderID    uuid.UUID     `json:"orderId"`
	CustomerID string        `json:"customerId"`
	Item       string        `json:"item"`
	CreatedAt  time.Time     `json:"createdAt"`
	Status     ReceiptStatus `json:"status"`
}

// PlaceOrderParams represents parameters for placing a new order.
type PlaceOrderParams struct {
	CustomerID string `json:"customerId"`
	Item       string `json:"item"`
}

// Validate validates the place order parameters.
func (p *PlaceOrderParams) Validate() error {
	if p.CustomerID == "" {
		return ErrCustomerIDRequired
	}

	if p.Item == "" {
		return ErrItemRequired
	}

	return nil
}
