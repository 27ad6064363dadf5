package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_1", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "https://shop.example/order-success?session_id={CHECKOUT_SESSION_ID}", r.PostForm.Get("success_url"))
		assert.Equal(t, "https://shop.example/checkout", r.PostForm.Get("cancel_url"))
		assert.Equal(t, "o1", r.PostForm.Get("metadata[order_id]"))
		assert.Equal(t, "eur", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "Buffet en chêne", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "4990", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "2", r.PostForm.Get("line_items[0][quantity]"))

		json.NewEncoder(w).Encode(map[string]string{
			"id":  "cs_test_1",
			"url": "https://checkout.stripe.com/pay/cs_test_1",
		})
	}))
	defer srv.Close()

	provider := NewStripeProvider("sk_test_1").WithBaseURL(srv.URL)

	session, err := provider.CreateSession(context.Background(), SessionRequest{
		OrderID: "o1",
		LineItems: []LineItem{
			{Name: "Buffet en chêne", UnitAmount: 4990, Quantity: 2},
		},
		SuccessURL: "https://shop.example/order-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://shop.example/checkout",
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_1", session.URL)
}

func TestSessionStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"id":             "cs_test_1",
			"status":         "complete",
			"payment_status": "paid",
		})
	}))
	defer srv.Close()

	provider := NewStripeProvider("sk_test_1").WithBaseURL(srv.URL)

	status, err := provider.SessionStatus(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, "complete", status.Status)
	assert.Equal(t, "paid", status.PaymentStatus)
}

func TestStripeErrorMessageSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Your card was declined."},
		})
	}))
	defer srv.Close()

	provider := NewStripeProvider("sk_test_1").WithBaseURL(srv.URL)

	_, err := provider.SessionStatus(context.Background(), "cs_test_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Your card was declined.")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	provider := NewStripeProvider("sk_test_1").WithBaseURL(srv.URL)

	for i := 0; i < 6; i++ {
		_, err := provider.SessionStatus(context.Background(), "cs_test_1")
		require.Error(t, err)
	}

	_, err := provider.SessionStatus(context.Background(), "cs_test_1")
	assert.ErrorIs(t, err, ErrUnavailable)
}
