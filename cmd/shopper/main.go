package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/checkout"
	"github.com/cancoskuner690-cmd/gulum-mobilya/pkg/logger"
)

// shopper drives a purchase against a running storefront API the way the
// web checkout page does: create the order, print the payment URL, then
// poll for confirmation once the buyer is redirected back.
func main() {
	var (
		apiURL    = flag.String("api", "http://localhost:8080", "storefront API base URL")
		origin    = flag.String("origin", "http://localhost:3000", "storefront origin for redirect URLs")
		cartID    = flag.String("cart", "", "cart session id")
		sessionID = flag.String("session", "", "payment session id to confirm (skips checkout)")
		name      = flag.String("name", "", "customer name")
		email     = flag.String("email", "", "customer email")
		phone     = flag.String("phone", "", "customer phone")
		address   = flag.String("address", "", "customer address")
		token     = flag.String("token", "", "optional bearer token to link the order to an account")
	)
	flag.Parse()

	log := logger.New(logger.Options{Service: "shopper", Level: "warn"})
	client := checkout.NewClient(*apiURL)
	coordinator := checkout.NewCoordinator(client, client, client, *origin, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *sessionID != "" {
		confirm(ctx, coordinator, *sessionID, *cartID)
		return
	}

	if *cartID == "" {
		fmt.Fprintln(os.Stderr, "either -cart or -session is required")
		os.Exit(2)
	}

	snapshot, err := client.Snapshot(ctx, *cartID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load cart: %v\n", err)
		os.Exit(1)
	}

	info := checkout.CustomerInfo{Name: *name, Email: *email, Phone: *phone, Address: *address}
	session, err := coordinator.StartCheckout(ctx, snapshot, info, *token)
	if err != nil {
		var initErr *checkout.InitiationError
		if errors.As(err, &initErr) {
			fmt.Fprintf(os.Stderr, "checkout failed (%s): %v\n", initErr.Step, initErr.Err)
		} else {
			fmt.Fprintf(os.Stderr, "checkout failed: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("order total: %.2f EUR (%d lines)\n", snapshot.Total, len(snapshot.Lines))
	fmt.Printf("pay at: %s\n", session.RedirectURL)
	fmt.Printf("after paying, run again with -session %s -cart %s\n", session.SessionID, *cartID)
}

func confirm(ctx context.Context, coordinator *checkout.Coordinator, sessionID, cartID string) {
	fmt.Println("checking payment status...")

	outcome, err := coordinator.Confirm(ctx, sessionID, cartID)
	switch outcome {
	case checkout.OutcomePaid:
		fmt.Println("payment confirmed, thank you for your order")
	case checkout.OutcomeExpired:
		fmt.Println("the payment session expired; your cart is untouched, please try again")
	case checkout.OutcomeTimedOut:
		fmt.Println("we could not confirm the payment yet; you will receive an email confirmation once it completes")
	case checkout.OutcomeFailed:
		fmt.Fprintf(os.Stderr, "payment status check failed: %v\n", err)
		os.Exit(1)
	default:
		// interrupted mid-poll
		if err != nil {
			fmt.Fprintf(os.Stderr, "confirmation interrupted: %v\n", err)
		}
		os.Exit(1)
	}
}
