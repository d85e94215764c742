// Package client is an HTTP client for the order API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/jnst/order-processor/internal/model"
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// HTTPClient talks to the order API over HTTP/JSON.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// PlaceOrder places an order. A 504 response from the API still carries the
// accepted receipt, which is returned alongside the *APIError. A 504 without a
// receipt (e.g. from a proxy) is an ordinary error with no receipt.
func (c *HTTPClient) PlaceOrder(ctx context.Context, params *model.PlaceOrderParams) (*model.OrderReceipt, error) {
	var receipt model.OrderReceipt
	status, err := c.doJSON(ctx, http.MethodPost, "/orders", params, &receipt)
	if status == http.StatusGatewayTimeout {
		if err != nil || receipt.OrderID == uuid.Nil {
			return nil, &APIError{StatusCode: status, Message: "gateway timeout without order receipt"}
		}
		return &receipt, &APIError{StatusCode: status, Message: "order accepted but not yet visible"}
	}
	if err != nil {
		return nil, err
	}

	return &receipt, nil
}

// GetOrder fetches one order from the view.
func (c *HTTPClient) GetOrder(ctx context.Context, orderID string) (*model.OrderView, error) {
	var order model.OrderView
	if _, err := c.doJSON(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

// ListOrders fetches every order in the view.
func (c *HTTPClient) ListOrders(ctx context.Context) ([]*model.OrderView, error) {
	var orders []*model.OrderView
	if _, err := c.doJSON(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// Health reports whether the API answered its health check.
func (c *HTTPClient) Health(ctx context.Context) error {
	_, err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil)
	return err
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, result any) (int, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	// 504 carries a receipt body, so decode before reporting the status.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusGatewayTimeout {
		return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}

	return resp.StatusCode, nil
}
