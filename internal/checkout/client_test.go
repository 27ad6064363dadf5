package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ayşe Yılmaz", req.CustomerName)
		assert.Equal(t, "cart-abc", req.CartSessionID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "o42"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	id, err := client.CreateOrder(context.Background(), validCustomer(), "cart-abc", "tok-1")

	require.NoError(t, err)
	assert.Equal(t, "o42", id)
}

func TestClient_CreateOrder_NoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"id": "o1"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).CreateOrder(context.Background(), validCustomer(), "cart-abc", "")
	require.NoError(t, err)
}

func TestClient_CreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/checkout/session", r.URL.Path)

		var req createSessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "o42", req.OrderID)
		assert.Equal(t, "https://shop.example", req.OriginURL)

		json.NewEncoder(w).Encode(map[string]string{
			"session_id": "cs_test_1",
			"url":        "https://pay.example/cs_test_1",
		})
	}))
	defer srv.Close()

	session, err := NewClient(srv.URL).CreateSession(context.Background(), "o42", "https://shop.example")

	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.SessionID)
	assert.Equal(t, "https://pay.example/cs_test_1", session.RedirectURL)
}

func TestClient_SessionStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/checkout/status/cs_test_1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"payment_status": "paid", "status": "complete"})
	}))
	defer srv.Close()

	status, err := NewClient(srv.URL).SessionStatus(context.Background(), "cs_test_1")

	require.NoError(t, err)
	assert.Equal(t, "paid", status.PaymentStatus)
	assert.Equal(t, "complete", status.Status)
}

func TestClient_SnapshotAndClear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/api/cart/cart-abc", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"session_id": "cart-abc",
				"lines": []map[string]any{
					{"product_id": "p1", "name": "Oak sideboard", "quantity": 2, "unit_price": 49.90},
				},
				"total": 99.80,
			})
		case http.MethodDelete:
			assert.Equal(t, "/api/cart/cart-abc", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	snapshot, err := client.Snapshot(context.Background(), "cart-abc")
	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, "p1", snapshot.Lines[0].ProductID)
	assert.InDelta(t, 99.80, snapshot.Total, 1e-9)

	require.NoError(t, client.Clear(context.Background(), "cart-abc"))
}

func TestClient_BackendErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "order not found"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SessionStatus(context.Background(), "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "order not found")
	assert.Contains(t, err.Error(), "404")
}
