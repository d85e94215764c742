// Package repository provides data access interfaces and implementations.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jnst/order-processor/internal/model"
)

// OrderViewRepository reads the materialized order view.
// Lookup returns (nil, nil) when the view has no entry for orderID.
type OrderViewRepository interface {
	Lookup(ctx context.Context, orderID uuid.UUID) (*model.OrderView, error)
	ListAll(ctx context.Context) ([]*model.OrderView, error)
}

// OrderViewWriter stores projections. Only view builders write.
type OrderViewWriter interface {
	Upsert(ctx context.Context, view *model.OrderView) error
}
