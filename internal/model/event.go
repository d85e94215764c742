package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderPlacedEvent is the payload appended to the order command stream.
// ID identifies this write; OrderID identifies the order aggregate and is the partition key.
type OrderPlacedEvent struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"orderId"`
	CustomerID string    `json:"customerId"`
	Item       string    `json:"item"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewOrderPlacedEvent builds an event with fresh identifiers.
// createdAt is truncated to milliseconds, the precision of log record timestamps.
func NewOrderPlacedEvent(customerID, item string, createdAt time.Time) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		ID:         uuid.New(),
		OrderID:    uuid.New(),
		CustomerID: customerID,
		Item:       item,
		CreatedAt:  createdAt.UTC().Truncate(time.Millisecond),
	}
}

// PartitionKey returns the key the event is routed by.
func (e *OrderPlacedEvent) PartitionKey() string {
	return e.OrderID.String()
}

// Receipt maps the event to the caller-facing receipt.
func (e *OrderPlacedEvent) Receipt(status ReceiptStatus) *OrderReceipt {
	return &OrderReceipt{
		ID:         e.ID,
		OrderID:    e.OrderID,
		CustomerID: e.CustomerID,
		Item:       e.Item,
		CreatedAt:  e.CreatedAt,
		Status:     status,
	}
}

// View returns the projection a view builder derives from the event.
func (e *OrderPlacedEvent) View() *OrderView {
	return &OrderView{
		ID:         e.ID,
		OrderID:    e.OrderID,
		CustomerID: e.CustomerID,
		Item:       e.Item,
		CreatedAt:  e.CreatedAt,
	}
}
