package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrders struct {
	orderID string
	err     error

	calls     int
	gotInfo   CustomerInfo
	gotCartID string
	gotToken  string
}

func (m *mockOrders) CreateOrder(_ context.Context, info CustomerInfo, cartSessionID, bearerToken string) (string, error) {
	m.calls++
	m.gotInfo = info
	m.gotCartID = cartSessionID
	m.gotToken = bearerToken
	return m.orderID, m.err
}

// scriptedGateway replays one SessionStatus result per poll attempt; the
// last entry repeats if the coordinator polls past the script.
type scriptedGateway struct {
	session   PaymentSession
	createErr error

	statuses  []SessionStatus
	statusErr error
	polled    chan struct{} // signaled after each status query when set

	createCalls int
	statusCalls int
	gotOrderID  string
	gotOrigin   string
}

func (g *scriptedGateway) CreateSession(_ context.Context, orderID, originURL string) (PaymentSession, error) {
	g.createCalls++
	g.gotOrderID = orderID
	g.gotOrigin = originURL
	if g.createErr != nil {
		return PaymentSession{}, g.createErr
	}
	return g.session, nil
}

func (g *scriptedGateway) SessionStatus(context.Context, string) (SessionStatus, error) {
	g.statusCalls++
	if g.polled != nil {
		g.polled <- struct{}{}
	}
	if g.statusErr != nil {
		return SessionStatus{}, g.statusErr
	}
	i := g.statusCalls - 1
	if i >= len(g.statuses) {
		i = len(g.statuses) - 1
	}
	return g.statuses[i], nil
}

type mockCart struct {
	snapshot CartSnapshot
	clearErr error

	clearCalls int
	clearedID  string
}

func (m *mockCart) Snapshot(context.Context, string) (CartSnapshot, error) {
	return m.snapshot, nil
}

func (m *mockCart) Clear(_ context.Context, sessionID string) error {
	m.clearCalls++
	m.clearedID = sessionID
	return m.clearErr
}

// fakeClock fires every wait immediately and counts them, so ten polling
// rounds finish in microseconds of real time.
type fakeClock struct{ waits int }

func (f *fakeClock) After(time.Duration) <-chan time.Time {
	f.waits++
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

// stuckClock never fires; used to park the loop between polls.
type stuckClock struct{}

func (stuckClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

func newTestCoordinator(orders OrderService, gateway PaymentGateway, cart CartStore, clock Clock) *Coordinator {
	return &Coordinator{
		orders:      orders,
		gateway:     gateway,
		cart:        cart,
		originURL:   "https://shop.example",
		clock:       clock,
		interval:    2 * time.Second,
		maxAttempts: 10,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func oneLineSnapshot() CartSnapshot {
	return CartSnapshot{
		SessionID: "cart-abc",
		Lines: []CartLine{
			{ProductID: "p1", Name: "Oak sideboard", Quantity: 2, UnitPrice: 49.90},
		},
		Total: 99.80,
	}
}

func validCustomer() CustomerInfo {
	return CustomerInfo{
		Name:    "Ayşe Yılmaz",
		Email:   "ayse@example.com",
		Phone:   "+33 6 12 34 56 78",
		Address: "12 rue de la Paix, Paris",
	}
}

func TestStartCheckout_OrderThenSession(t *testing.T) {
	orders := &mockOrders{orderID: "o1"}
	gateway := &scriptedGateway{session: PaymentSession{SessionID: "s1", RedirectURL: "https://pay.example/s1"}}
	c := newTestCoordinator(orders, gateway, &mockCart{}, &fakeClock{})

	session, err := c.StartCheckout(context.Background(), oneLineSnapshot(), validCustomer(), "")

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/s1", session.RedirectURL)
	assert.Equal(t, "s1", session.SessionID)
	assert.Equal(t, 1, orders.calls)
	assert.Equal(t, 1, gateway.createCalls)
	assert.Equal(t, "o1", gateway.gotOrderID)
	assert.Equal(t, "https://shop.example", gateway.gotOrigin)
	// The order service gets the cart session reference, not the lines.
	assert.Equal(t, "cart-abc", orders.gotCartID)
}

func TestStartCheckout_BearerTokenForwarded(t *testing.T) {
	orders := &mockOrders{orderID: "o1"}
	gateway := &scriptedGateway{session: PaymentSession{SessionID: "s1", RedirectURL: "https://pay.example/s1"}}
	c := newTestCoordinator(orders, gateway, &mockCart{}, &fakeClock{})

	_, err := c.StartCheckout(context.Background(), oneLineSnapshot(), validCustomer(), "tok-123")

	require.NoError(t, err)
	assert.Equal(t, "tok-123", orders.gotToken)
}

func TestStartCheckout_EmptyCart(t *testing.T) {
	orders := &mockOrders{orderID: "o1"}
	gateway := &scriptedGateway{}
	c := newTestCoordinator(orders, gateway, &mockCart{}, &fakeClock{})

	_, err := c.StartCheckout(context.Background(), CartSnapshot{SessionID: "cart-abc"}, validCustomer(), "")

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, orders.calls)
	assert.Equal(t, 0, gateway.createCalls)
}

func TestStartCheckout_InvalidCustomer(t *testing.T) {
	cases := []struct {
		name string
		info CustomerInfo
	}{
		{"missing name", CustomerInfo{Email: "a@b.com", Phone: "1", Address: "x"}},
		{"missing phone", CustomerInfo{Name: "A", Email: "a@b.com", Address: "x"}},
		{"implausible email", CustomerInfo{Name: "A", Email: "not-an-email", Phone: "1", Address: "x"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := &mockOrders{}
			c := newTestCoordinator(orders, &scriptedGateway{}, &mockCart{}, &fakeClock{})

			_, err := c.StartCheckout(context.Background(), oneLineSnapshot(), tc.info, "")

			var initErr *InitiationError
			require.ErrorAs(t, err, &initErr)
			assert.Equal(t, "validate", initErr.Step)
			assert.Equal(t, 0, orders.calls)
		})
	}
}

func TestStartCheckout_OrderFailureSkipsSession(t *testing.T) {
	orders := &mockOrders{err: errors.New("orders down")}
	gateway := &scriptedGateway{}
	c := newTestCoordinator(orders, gateway, &mockCart{}, &fakeClock{})

	_, err := c.StartCheckout(context.Background(), oneLineSnapshot(), validCustomer(), "")

	var initErr *InitiationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "order", initErr.Step)
	assert.Equal(t, 1, orders.calls)
	assert.Equal(t, 0, gateway.createCalls, "session must never be requested when order creation failed")
}

func TestStartCheckout_SessionFailure(t *testing.T) {
	orders := &mockOrders{orderID: "o1"}
	gateway := &scriptedGateway{createErr: errors.New("gateway down")}
	c := newTestCoordinator(orders, gateway, &mockCart{}, &fakeClock{})

	_, err := c.StartCheckout(context.Background(), oneLineSnapshot(), validCustomer(), "")

	var initErr *InitiationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "session", initErr.Step)
	assert.Equal(t, 1, orders.calls)
}

func TestConfirm_MissingSessionID(t *testing.T) {
	gateway := &scriptedGateway{statuses: []SessionStatus{{PaymentStatus: "paid"}}}
	cart := &mockCart{}
	c := newTestCoordinator(&mockOrders{}, gateway, cart, &fakeClock{})

	outcome, err := c.Confirm(context.Background(), "", "cart-abc")

	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, ErrMissingSession)
	assert.Equal(t, 0, gateway.statusCalls, "no network calls for a malformed return URL")
	assert.Equal(t, 0, cart.clearCalls)
}

func TestConfirm_PaidOnFirstPoll(t *testing.T) {
	gateway := &scriptedGateway{statuses: []SessionStatus{{PaymentStatus: "paid", Status: "complete"}}}
	cart := &mockCart{}
	clock := &fakeClock{}
	c := newTestCoordinator(&mockOrders{}, gateway, cart, clock)

	outcome, err := c.Confirm(context.Background(), "s1", "cart-abc")

	require.NoError(t, err)
	assert.Equal(t, OutcomePaid, outcome)
	assert.Equal(t, 1, gateway.statusCalls)
	assert.Equal(t, 1, cart.clearCalls)
	assert.Equal(t, "cart-abc", cart.clearedID)
	assert.Equal(t, 0, clock.waits)
}

func TestConfirm_PaidOnTenthPoll(t *testing.T) {
	statuses := make([]SessionStatus, 9)
	for i := range statuses {
		statuses[i] = SessionStatus{PaymentStatus: "unpaid", Status: "open"}
	}
	statuses = append(statuses, SessionStatus{PaymentStatus: "paid", Status: "complete"})

	gateway := &scriptedGateway{statuses: statuses}
	cart := &mockCart{}
	clock := &fakeClock{}
	c := newTestCoordinator(&mockOrders{}, gateway, cart, clock)

	outcome, err := c.Confirm(context.Background(), "s1", "cart-abc")

	require.NoError(t, err)
	assert.Equal(t, OutcomePaid, outcome)
	assert.Equal(t, 10, gateway.statusCalls, "the tenth query is still within budget")
	assert.Equal(t, 1, cart.clearCalls, "cart cleared exactly once")
	assert.Equal(t, 9, clock.waits)
}

func TestConfirm_TimesOutAfterTenPolls(t *testing.T) {
	gateway := &scriptedGateway{statuses: []SessionStatus{{PaymentStatus: "unpaid", Status: "open"}}}
	cart := &mockCart{}
	clock := &fakeClock{}
	c := newTestCoordinator(&mockOrders{}, gateway, cart, clock)

	outcome, err := c.Confirm(context.Background(), "s1", "cart-abc")

	require.NoError(t, err)
	assert.Equal(t, OutcomeTimedOut, outcome)
	assert.Equal(t, 10, gateway.statusCalls, "no eleventh query")
	assert.Equal(t, 0, cart.clearCalls, "cart untouched while payment is unconfirmed")
	assert.Equal(t, 9, clock.waits, "no sleep scheduled after the final query")
}

func TestConfirm_ExpiredOnThirdPoll(t *testing.T) {
	gateway := &scriptedGateway{statuses: []SessionStatus{
		{PaymentStatus: "unpaid", Status: "open"},
		{PaymentStatus: "unpaid", Status: "open"},
		{PaymentStatus: "unpaid", Status: "expired"},
	}}
	cart := &mockCart{}
	c := newTestCoordinator(&mockOrders{}, gateway, cart, &fakeClock{})

	outcome, err := c.Confirm(context.Background(), "s1", "cart-abc")

	require.NoError(t, err)
	assert.Equal(t, OutcomeExpired, outcome)
	assert.Equal(t, 3, gateway.statusCalls)
	assert.Equal(t, 0, cart.clearCalls)
}

func TestConfirm_TransportErrorIsTerminal(t *testing.T) {
	cause := errors.New("connection reset")
	gateway := &scriptedGateway{statusErr: cause}
	cart := &mockCart{}
	c := newTestCoordinator(&mockOrders{}, gateway, cart, &fakeClock{})

	outcome, err := c.Confirm(context.Background(), "s1", "cart-abc")

	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, gateway.statusCalls, "a failed query is not retried")
	assert.Equal(t, 0, cart.clearCalls)
}

func TestConfirm_CancelledBetweenPolls(t *testing.T) {
	gateway := &scriptedGateway{
		statuses: []SessionStatus{{PaymentStatus: "unpaid", Status: "open"}},
		polled:   make(chan struct{}, 1),
	}
	c := newTestCoordinator(&mockOrders{}, gateway, &mockCart{}, stuckClock{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	var outcome Outcome
	var err error
	go func() {
		outcome, err = c.Confirm(ctx, "s1", "cart-abc")
		close(done)
	}()

	// Let the first poll land, then walk away from the page.
	<-gateway.polled
	cancel()
	<-done

	assert.Equal(t, OutcomeChecking, outcome)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gateway.statusCalls, "no poll scheduled after cancellation")
}

func TestConfirm_CartClearFailureKeepsPaidOutcome(t *testing.T) {
	gateway := &scriptedGateway{statuses: []SessionStatus{{PaymentStatus: "paid", Status: "complete"}}}
	cart := &mockCart{clearErr: errors.New("store unavailable")}
	c := newTestCoordinator(&mockOrders{}, gateway, cart, &fakeClock{})

	outcome, err := c.Confirm(context.Background(), "s1", "cart-abc")

	require.NoError(t, err)
	assert.Equal(t, OutcomePaid, outcome, "a confirmed payment is not downgraded over a cart-clear failure")
	assert.Equal(t, 1, cart.clearCalls)
}

func TestOutcome_Terminal(t *testing.T) {
	assert.False(t, OutcomeChecking.Terminal())
	for _, o := range []Outcome{OutcomePaid, OutcomeExpired, OutcomeFailed, OutcomeTimedOut} {
		assert.True(t, o.Terminal(), o.String())
	}
}
