package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultMaxAttempts  = 10
)

// Coordinator owns the client-side lifecycle of one purchase attempt:
// order creation, handoff to the hosted payment page, and status polling
// after the gateway redirects back. It holds no state across attempts;
// attempt counters live on the stack of a single Confirm call.
type Coordinator struct {
	orders  OrderService
	gateway PaymentGateway
	cart    CartStore

	originURL string

	clock       Clock
	interval    time.Duration
	maxAttempts int
	log         *slog.Logger
}

func NewCoordinator(orders OrderService, gateway PaymentGateway, cart CartStore, originURL string, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		orders:      orders,
		gateway:     gateway,
		cart:        cart,
		originURL:   originURL,
		clock:       systemClock{},
		interval:    defaultPollInterval,
		maxAttempts: defaultMaxAttempts,
		log:         log,
	}
}

// StartCheckout turns the captured cart into an order and requests a
// hosted-payment session for it. Exactly one order-creation call is made,
// then exactly one session-creation call; if the first fails the second is
// never attempted. The caller navigates to the returned RedirectURL; the
// coordinator is not involved again until the gateway redirects back.
func (c *Coordinator) StartCheckout(ctx context.Context, snapshot CartSnapshot, info CustomerInfo, bearerToken string) (PaymentSession, error) {
	if len(snapshot.Lines) == 0 {
		return PaymentSession{}, ErrEmptyCart
	}
	if err := info.validate(); err != nil {
		return PaymentSession{}, &InitiationError{Step: "validate", Err: err}
	}

	orderID, err := c.orders.CreateOrder(ctx, info, snapshot.SessionID, bearerToken)
	if err != nil {
		return PaymentSession{}, &InitiationError{Step: "order", Err: err}
	}
	c.log.Info("order created", "order_id", orderID, "total", snapshot.Total)

	session, err := c.gateway.CreateSession(ctx, orderID, c.originURL)
	if err != nil {
		return PaymentSession{}, &InitiationError{Step: "session", Err: err}
	}
	c.log.Info("payment session created", "order_id", orderID, "session_id", session.SessionID)

	return session, nil
}

// Confirm runs the confirmation state machine for the session id found in
// the return URL. It issues at most maxAttempts status queries, one in
// flight at a time, sleeping interval between them on the injected clock.
//
//   - paid           -> OutcomePaid, cart cleared exactly once
//   - expired        -> OutcomeExpired
//   - transport err  -> OutcomeFailed with the cause (the failed request is
//     not retried; only pending results are)
//   - budget spent   -> OutcomeTimedOut (payment may still complete later;
//     callers should point the buyer at email confirmation, not report a
//     payment failure)
//
// Cancelling ctx between polls stops the chain with no further queries and
// returns the non-terminal OutcomeChecking alongside ctx.Err().
func (c *Coordinator) Confirm(ctx context.Context, sessionID, cartSessionID string) (Outcome, error) {
	if sessionID == "" {
		return OutcomeFailed, ErrMissingSession
	}

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		status, err := c.gateway.SessionStatus(ctx, sessionID)
		if err != nil {
			c.log.Error("payment status query failed", "session_id", sessionID, "attempt", attempt, "err", err)
			return OutcomeFailed, fmt.Errorf("payment status query: %w", err)
		}

		switch {
		case status.PaymentStatus == statusPaid:
			c.clearCart(ctx, cartSessionID)
			return OutcomePaid, nil
		case status.Status == statusExpired:
			return OutcomeExpired, nil
		}

		if attempt == c.maxAttempts {
			break
		}

		select {
		case <-c.clock.After(c.interval):
		case <-ctx.Done():
			return OutcomeChecking, ctx.Err()
		}
	}

	c.log.Warn("payment confirmation timed out", "session_id", sessionID, "attempts", c.maxAttempts)
	return OutcomeTimedOut, nil
}

// clearCart empties the session cart after a confirmed payment. The store
// is idempotent, so a failure here is logged and left for the next cart
// read; the payment outcome is not downgraded over it.
func (c *Coordinator) clearCart(ctx context.Context, cartSessionID string) {
	if cartSessionID == "" {
		return
	}
	if err := c.cart.Clear(ctx, cartSessionID); err != nil {
		c.log.Warn("cart clear after payment failed", "cart_session_id", cartSessionID, "err", err)
	}
}
