// Package payment is the adapter to the hosted checkout provider: it opens
// checkout sessions and verifies the webhook events that report their outcome.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

var (
	// ErrUnavailable covers timeouts, transport and provider errors. The
	// operation can be retried.
	ErrUnavailable = errors.New("payment gateway unavailable")
	// ErrAuthentication means a webhook signature did not verify.
	ErrAuthentication = errors.New("webhook signature verification failed")
)

type LineItem struct {
	Name       string
	UnitAmount int64 // minor units
	Quantity   int64
}

type SessionRequest struct {
	OrderID       string
	OrderNumber   string
	CustomerEmail string
	Items         []LineItem
	SuccessURL    string
	CancelURL     string
}

type Session struct {
	ID  string
	URL string
}

type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

type StripeConfig struct {
	SecretKey string
	Currency  string
	Timeout   time.Duration
	// APIBase overrides the API endpoint. Empty means the public Stripe API.
	APIBase string
}

type StripeGateway struct {
	client   session.Client
	currency string
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	bc := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.APIBase != "" {
		bc.URL = stripe.String(cfg.APIBase)
	}
	return &StripeGateway{
		client:   session.Client{B: stripe.GetBackendWithConfig(stripe.APIBackend, bc), Key: cfg.SecretKey},
		currency: cfg.Currency,
	}
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		ClientReferenceID:  stripe.String(req.OrderID),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for _, it := range req.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.currency),
				UnitAmount: stripe.Int64(it.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}
	params.AddMetadata("order_id", req.OrderID)
	if req.OrderNumber != "" {
		params.AddMetadata("order_number", req.OrderNumber)
	}
	params.Context = ctx

	s, err := g.client.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

// Unconfigured is used when no provider key is set. Every session request
// fails as unavailable, so orders stay pending and can be paid later.
type Unconfigured struct{}

func (Unconfigured) CreateSession(context.Context, SessionRequest) (*Session, error) {
	return nil, fmt.Errorf("%w: no provider configured", ErrUnavailable)
}
