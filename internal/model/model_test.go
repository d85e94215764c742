package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderParams_Validate(t *testing.T) {
	cases := []struct {
		name   string
		params PlaceOrderParams
		want   error
	}{
		{"valid", PlaceOrderParams{CustomerID: "cust-1", Item: "Latte"}, nil},
		{"missing customer", PlaceOrderParams{Item: "Latte"}, ErrCustomerIDRequired},
		{"missing item", PlaceOrderParams{CustomerID: "cust-1"}, ErrItemRequired},
		{"missing both", PlaceOrderParams{}, ErrCustomerIDRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.Validate()
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestNewOrderPlacedEvent(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 123_456_789, time.FixedZone("X", 3600))
	e := NewOrderPlacedEvent("cust-1", "Latte", now)

	assert.Equal(t, 4, int(e.ID.Version()))
	assert.Equal(t, 4, int(e.OrderID.Version()))
	assert.NotEqual(t, e.ID, e.OrderID)
	assert.Equal(t, e.OrderID.String(), e.PartitionKey())
	assert.Equal(t, time.UTC, e.CreatedAt.Location())
	assert.Equal(t, 123_000_000, e.CreatedAt.Nanosecond())
	assert.True(t, e.CreatedAt.Equal(now.Truncate(time.Millisecond)))
}

func TestNewOrderPlacedEvent_FreshIdentifiers(t *testing.T) {
	seen := map[uuid.UUID]bool{}
	for range 50 {
		e := NewOrderPlacedEvent("c", "i", time.Now())
		require.False(t, seen[e.ID])
		require.False(t, seen[e.OrderID])
		seen[e.ID] = true
		seen[e.OrderID] = true
	}
}

func TestOrderPlacedEvent_WireShape(t *testing.T) {
	e := NewOrderPlacedEvent("cust-1", "Latte", time.UnixMilli(1_700_000_000_000))

	b, err := json.Marshal(e)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.ElementsMatch(t, []string{"id", "orderId", "customerId", "item", "createdAt"}, keys(fields))
}

func TestOrderPlacedEvent_ReceiptAndView(t *testing.T) {
	e := NewOrderPlacedEvent("cust-1", "Latte", time.Now())

	r := e.Receipt(ReceiptStatusConfirmed)
	assert.Equal(t, e.ID, r.ID)
	assert.Equal(t, e.OrderID, r.OrderID)
	assert.Equal(t, "cust-1", r.CustomerID)
	assert.Equal(t, "Latte", r.Item)
	assert.Equal(t, e.CreatedAt, r.CreatedAt)
	assert.Equal(t, ReceiptStatusConfirmed, r.Status)

	v := e.View()
	assert.Equal(t, e.ID, v.ID)
	assert.Equal(t, e.OrderID, v.OrderID)
}

func TestErrors_AreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrWriteFailed, ErrInvalidArgument))
	assert.False(t, errors.Is(ErrVisibilityTimeout, ErrWriteFailed))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
