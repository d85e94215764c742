package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnst/order-processor/internal/model"
)

type stubOrderService struct {
	receipt *model.OrderReceipt
	err     error
	orders  []*model.OrderView
}

func (s *stubOrderService) PlaceOrder(_ context.Context, params *model.PlaceOrderParams) (*model.OrderReceipt, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.receipt, s.err
}

func (s *stubOrderService) GetOrder(_ context.Context, orderID uuid.UUID) (*model.OrderView, error) {
	for _, o := range s.orders {
		if o.OrderID == orderID {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", model.ErrOrderNotFound, orderID)
}

func (s *stubOrderService) ListOrders(context.Context) ([]*model.OrderView, error) {
	return s.orders, nil
}

func newReceipt(status model.ReceiptStatus) *model.OrderReceipt {
	return &model.OrderReceipt{
		ID:         uuid.New(),
		OrderID:    uuid.New(),
		CustomerID: "cust-1",
		Item:       "Latte",
		CreatedAt:  time.UnixMilli(1_700_000_000_000).UTC(),
		Status:     status,
	}
}

func do(t *testing.T, svc *stubOrderService, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	NewAPIServer(svc).Routes().ServeHTTP(rec, req)
	return rec
}

func TestPlaceOrder_StatusCodes(t *testing.T) {
	cases := []struct {
		name string
		svc  *stubOrderService
		body string
		want int
	}{
		{"confirmed", &stubOrderService{receipt: newReceipt(model.ReceiptStatusConfirmed)}, `{"customerId":"cust-1","item":"Latte"}`, http.StatusCreated},
		{"accepted", &stubOrderService{receipt: newReceipt(model.ReceiptStatusAccepted)}, `{"customerId":"cust-1","item":"Latte"}`, http.StatusAccepted},
		{"invalid json", &stubOrderService{}, `{`, http.StatusBadRequest},
		{"missing item", &stubOrderService{}, `{"customerId":"cust-1"}`, http.StatusBadRequest},
		{"write failed", &stubOrderService{err: fmt.Errorf("append: %w", model.ErrWriteFailed)}, `{"customerId":"c","item":"i"}`, http.StatusBadGateway},
		{"strict timeout", &stubOrderService{receipt: newReceipt(model.ReceiptStatusAccepted), err: model.ErrVisibilityTimeout}, `{"customerId":"c","item":"i"}`, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, tc.svc, http.MethodPost, "/orders", tc.body)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestPlaceOrder_ReturnsReceipt(t *testing.T) {
	receipt := newReceipt(model.ReceiptStatusConfirmed)
	rec := do(t, &stubOrderService{receipt: receipt}, http.MethodPost, "/orders", `{"customerId":"cust-1","item":"Latte"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, applicationJSON, rec.Header().Get(contentTypeJSON))

	var got model.OrderReceipt
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, *receipt, got)
}

func TestGetOrder(t *testing.T) {
	view := &model.OrderView{ID: uuid.New(), OrderID: uuid.New(), CustomerID: "c", Item: "Tea"}
	svc := &stubOrderService{orders: []*model.OrderView{view}}

	rec := do(t, svc, http.MethodGet, "/orders/"+view.OrderID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, do(t, svc, http.MethodGet, "/orders/"+uuid.NewString(), "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, svc, http.MethodGet, "/orders/not-a-uuid", "").Code)
}

func TestListOrders(t *testing.T) {
	svc := &stubOrderService{orders: []*model.OrderView{
		{ID: uuid.New(), OrderID: uuid.New(), CustomerID: "a", Item: "Tea"},
		{ID: uuid.New(), OrderID: uuid.New(), CustomerID: "b", Item: "Mocha"},
	}}

	rec := do(t, svc, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []model.OrderView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, 2)
}

func TestHealthCheck(t *testing.T) {
	rec := do(t, &stubOrderService{}, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
