// Package service provides business logic layer implementations.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jnst/order-processor/internal/eventlog"
	"github.com/jnst/order-processor/internal/model"
)

// OrderService defines business logic methods for order placement and queries.
type OrderService interface {
	PlaceOrder(ctx context.Context, params *model.PlaceOrderParams) (*model.OrderReceipt, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*model.OrderView, error)
	ListOrders(ctx context.Context) ([]*model.OrderView, error)
}

// WriteConfirmation waits for a written event to show up in the order view.
type WriteConfirmation interface {
	AwaitVisible(ctx context.Context, eventID, orderID uuid.UUID, deadline time.Duration) bool
}

// EventAppender appends records to the command log.
type EventAppender interface {
	Append(ctx context.Context, stream, key string, ts time.Time, payload []byte) (eventlog.Ack, error)
}
