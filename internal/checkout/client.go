package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client implements OrderService, PaymentGateway and CartStore against the
// storefront REST API, so a Coordinator can drive a real backend.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type createOrderRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
	CartSessionID   string `json:"cart_session_id"`
}

func (c *Client) CreateOrder(ctx context.Context, info CustomerInfo, cartSessionID, bearerToken string) (string, error) {
	req := createOrderRequest{
		CustomerName:    info.Name,
		CustomerEmail:   info.Email,
		CustomerPhone:   info.Phone,
		CustomerAddress: info.Address,
		CartSessionID:   cartSessionID,
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, bearerToken, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

type createSessionRequest struct {
	OrderID   string `json:"order_id"`
	OriginURL string `json:"origin_url"`
}

func (c *Client) CreateSession(ctx context.Context, orderID, originURL string) (PaymentSession, error) {
	req := createSessionRequest{OrderID: orderID, OriginURL: originURL}

	var session PaymentSession
	if err := c.do(ctx, http.MethodPost, "/api/checkout/session", req, "", &session); err != nil {
		return PaymentSession{}, err
	}
	return session, nil
}

func (c *Client) SessionStatus(ctx context.Context, sessionID string) (SessionStatus, error) {
	var status SessionStatus
	if err := c.do(ctx, http.MethodGet, "/api/checkout/status/"+sessionID, nil, "", &status); err != nil {
		return SessionStatus{}, err
	}
	return status, nil
}

func (c *Client) Snapshot(ctx context.Context, sessionID string) (CartSnapshot, error) {
	var resp struct {
		SessionID string `json:"session_id"`
		Lines     []struct {
			ProductID string  `json:"product_id"`
			Name      string  `json:"name"`
			Quantity  int     `json:"quantity"`
			UnitPrice float64 `json:"unit_price"`
		} `json:"lines"`
		Total float64 `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/cart/"+sessionID, nil, "", &resp); err != nil {
		return CartSnapshot{}, err
	}

	snapshot := CartSnapshot{SessionID: sessionID, Total: resp.Total}
	for _, l := range resp.Lines {
		snapshot.Lines = append(snapshot.Lines, CartLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return snapshot, nil
}

func (c *Client) Clear(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/cart/"+sessionID, nil, "", nil)
}

// do sends one JSON request and decodes the response into out (if non-nil).
// Non-2xx responses are turned into errors carrying the backend's message.
func (c *Client) do(ctx context.Context, method, path string, body any, bearerToken string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %s", method, path, readAPIError(resp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) string {
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return fmt.Sprintf("%s (%s)", apiErr.Error, resp.Status)
	}
	return resp.Status
}
