package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"github.com/jnst/order-processor/internal/model"
)

// OrderViewRepositoryRedis keeps the order view in one Redis hash:
// field = order id, value = JSON-encoded OrderView.
type OrderViewRepositoryRedis struct {
	client rueidis.Client
	key    string
}

// NewOrderViewRepositoryRedis creates a new Redis-backed view repository on hash key.
func NewOrderViewRepositoryRedis(client rueidis.Client, key string) *OrderViewRepositoryRedis {
	return &OrderViewRepositoryRedis{
		client: client,
		key:    key,
	}
}

// Lookup retrieves the view of one order.
func (r *OrderViewRepositoryRedis) Lookup(ctx context.Context, orderID uuid.UUID) (*model.OrderView, error) {
	cmd := r.client.B().Hget().Key(r.key).Field(orderID.String()).Build()

	raw, err := r.client.Do(ctx, cmd).ToString()
	if rueidis.IsRedisNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up order view %s: %w", orderID, err)
	}

	return decodeOrderView(raw)
}

// ListAll retrieves every order view, oldest first.
func (r *OrderViewRepositoryRedis) ListAll(ctx context.Context) ([]*model.OrderView, error) {
	cmd := r.client.B().Hvals().Key(r.key).Build()

	values, err := r.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to list order views: %w", err)
	}

	views := make([]*model.OrderView, 0, len(values))
	for _, raw := range values {
		view, err := decodeOrderView(raw)
		if err != nil {
			return nil, err
		}

		views = append(views, view)
	}

	sort.Slice(views, func(i, j int) bool {
		if views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].OrderID.String() < views[j].OrderID.String()
		}

		return views[i].CreatedAt.Before(views[j].CreatedAt)
	})

	return views, nil
}

// Upsert replaces the view of view.OrderID.
func (r *OrderViewRepositoryRedis) Upsert(ctx context.Context, view *model.OrderView) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal order view: %w", err)
	}

	cmd := r.client.B().Hset().Key(r.key).FieldValue().
		FieldValue(view.OrderID.String(), string(payload)).
		Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to store order view %s: %w", view.OrderID, err)
	}

	return nil
}

func decodeOrderView(raw string) (*model.OrderView, error) {
	var view model.OrderView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		return nil, fmt.Errorf("failed to decode order view: %w", err)
	}

	return &view, nil
}
