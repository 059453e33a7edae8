package stripegw

import (
	"context"
	"errors"
	"fmt"

	cfgpkg "github.com/ronsystem/fcpdigital-backend/pkg/config"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

// ErrCustomerDeleted is returned when Stripe reports the customer behind a
// subscription as deleted; the event cannot be tied to a usable tenant.
var ErrCustomerDeleted = errors.New("stripe customer deleted")

// Gateway wraps the Stripe SDK behind an explicitly constructed, injectable
// dependency so handlers and services never touch SDK package globals.
type Gateway struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
	log           *zap.SugaredLogger
}

func New(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Gateway {
	api := &client.API{}
	api.Init(cfg.Stripe.SecretKey, nil)
	return &Gateway{
		api:           api,
		webhookSecret: cfg.Stripe.WebhookSecret,
		successURL:    cfg.Stripe.SuccessURL,
		cancelURL:     cfg.Stripe.CancelURL,
		log:           log,
	}
}

// ConstructEvent authenticates the raw webhook body against the signature
// header. It must run on the exact bytes as transmitted, before any parsing.
func (g *Gateway) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

func (g *Gateway) GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error) {
	cust, err := g.api.Customers.Get(customerID, &stripe.CustomerParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stripe customer %s: %w", customerID, err)
	}
	if cust.Deleted {
		return nil, ErrCustomerDeleted
	}
	return cust, nil
}

// FindOrCreateCustomer looks up a customer by email and creates one when no
// match exists. Metadata is only applied on creation.
func (g *Gateway) FindOrCreateCustomer(ctx context.Context, email string, metadata map[string]string) (*stripe.Customer, error) {
	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(1)
	it := g.api.Customers.List(listParams)
	for it.Next() {
		return it.Customer(), nil
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("failed to list stripe customers: %w", err)
	}

	createParams := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
	}
	for k, v := range metadata {
		createParams.AddMetadata(k, v)
	}
	cust, err := g.api.Customers.New(createParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe customer: %w", err)
	}
	g.log.Infow("stripe_customer_created", "customer_id", cust.ID, "email", email)
	return cust, nil
}

// CreateCheckoutSession starts a subscription checkout for one price.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, customerID, priceID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
	}
	if g.successURL != "" {
		params.SuccessURL = stripe.String(g.successURL)
	}
	if g.cancelURL != "" {
		params.CancelURL = stripe.String(g.cancelURL)
	}
	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess, nil
}
