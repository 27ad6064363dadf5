package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

const defaultStripeBaseURL = "https://api.stripe.com"

// StripeProvider drives Stripe Checkout over its form-encoded REST API.
// All calls go through one circuit breaker: a flapping provider trips it
// and callers get ErrUnavailable until the cool-down passes.
type StripeProvider struct {
	apiKey  string
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewStripeProvider(apiKey string) *StripeProvider {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &StripeProvider{
		apiKey:  apiKey,
		baseURL: defaultStripeBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		breaker: breaker,
	}
}

// WithBaseURL points the provider at a different API host. Tests use it
// to stand in a local server for api.stripe.com.
func (p *StripeProvider) WithBaseURL(baseURL string) *StripeProvider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

type stripeSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

func (p *StripeProvider) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("metadata[order_id]", req.OrderID)

	currency := req.Currency
	if currency == "" {
		currency = "eur"
	}
	for i, item := range req.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	body, err := p.call(ctx, http.MethodPost, "/v1/checkout/sessions", form)
	if err != nil {
		return Session{}, err
	}

	var session stripeSession
	if err := json.Unmarshal(body, &session); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return Session{ID: session.ID, URL: session.URL}, nil
}

func (p *StripeProvider) SessionStatus(ctx context.Context, sessionID string) (SessionStatus, error) {
	body, err := p.call(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return SessionStatus{}, err
	}

	var session stripeSession
	if err := json.Unmarshal(body, &session); err != nil {
		return SessionStatus{}, fmt.Errorf("decode session: %w", err)
	}
	return SessionStatus{Status: session.Status, PaymentStatus: session.PaymentStatus}, nil
}

func (p *StripeProvider) call(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	body, err := p.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader
		if form != nil {
			reader = strings.NewReader(form.Encode())
		}

		req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		resp, err := p.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, stripeError(resp.StatusCode, data)
		}
		return data, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return body, err
}

func stripeError(status int, body []byte) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return fmt.Errorf("stripe: %s (status %d)", payload.Error.Message, status)
	}
	return fmt.Errorf("stripe: unexpected status %d", status)
}
