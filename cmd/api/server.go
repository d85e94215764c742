package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jnst/order-processor/internal/model"
	"github.com/jnst/order-processor/internal/service"
)

const (
	contentTypeJSON        = "Content-Type"
	applicationJSON        = "application/json"
	failedToEncodeResponse = "failed to encode response"
)

// APIServer handles HTTP requests for order placement and queries.
type APIServer struct {
	orderService service.OrderService
}

// NewAPIServer creates a new API server instance.
func NewAPIServer(orderService service.OrderService) *APIServer {
	return &APIServer{
		orderService: orderService,
	}
}

// Routes registers the API handlers.
func (s *APIServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", s.PlaceOrder)
	mux.HandleFunc("GET /orders", s.ListOrders)
	mux.HandleFunc("GET /orders/{orderId}", s.GetOrder)
	mux.HandleFunc("GET /health", s.HealthCheck)

	return mux
}

// PlaceOrder handles POST /orders.
// 201 when the order is visible in the view, 202 when only the log acknowledged it.
func (s *APIServer) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var params model.PlaceOrderParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	receipt, err := s.orderService.PlaceOrder(r.Context(), &params)
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, model.ErrWriteFailed):
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	case errors.Is(err, model.ErrVisibilityTimeout):
		writeJSON(w, http.StatusGatewayTimeout, receipt)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusCreated
	if receipt.Status == model.ReceiptStatusAccepted {
		status = http.StatusAccepted
	}

	writeJSON(w, status, receipt)
}

// ListOrders handles GET /orders.
func (s *APIServer) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orderService.ListOrders(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /orders/{orderId}.
func (s *APIServer) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("orderId"))
	if err != nil {
		http.Error(w, "Invalid orderId", http.StatusBadRequest)
		return
	}

	order, err := s.orderService.GetOrder(r.Context(), orderID)
	if errors.Is(err, model.ErrOrderNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// HealthCheck handles GET /health endpoint for service health check.
func (*APIServer) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(contentTypeJSON, applicationJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error(failedToEncodeResponse, slog.String("error", err.Error()))
	}
}
