package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

// StripeConfig configures the Stripe gateway.
type StripeConfig struct {
	SecretKey  string
	SiteDomain string // public origin for the success and cancel redirects
	// BaseURL overrides the API endpoint. Tests point it at httptest.
	BaseURL string
}

// Stripe is the Gateway backed by Stripe Checkout.
type Stripe struct {
	sc         *session.Client
	successURL string
	cancelURL  string
	now        func() time.Time
}

// NewStripe returns a Stripe gateway.
func NewStripe(cfg StripeConfig) *Stripe {
	bc := &stripe.BackendConfig{MaxNetworkRetries: stripe.Int64(0)}
	if cfg.BaseURL != "" {
		bc.URL = stripe.String(cfg.BaseURL)
	}
	return &Stripe{
		sc: &session.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, bc),
			Key: cfg.SecretKey,
		},
		successURL: cfg.SiteDomain + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  cfg.SiteDomain + "/payment-cancelled",
		now:        time.Now,
	}
}

// CreateCheckout opens a one-item payment session for a club membership.
func (g *Stripe) CreateCheckout(ctx context.Context, req CheckoutRequest) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(g.successURL),
		CancelURL:     stripe.String(g.cancelURL),
		CustomerEmail: stripe.String(req.UserEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(req.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.ClubName + " membership"),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		Metadata: map[string]string{
			MetaClubID:    req.ClubID,
			MetaClubName:  req.ClubName,
			MetaUserEmail: req.UserEmail,
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(IdempotencyKey(req, g.now()))

	cs, err := g.sc.New(params)
	if err != nil {
		return Session{}, classify(err)
	}
	return fromStripe(cs), nil
}

// Retrieve fetches a session with its payment intent expanded.
func (g *Stripe) Retrieve(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("session_id: %w", apperr.ErrMissingField)
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	cs, err := g.sc.Get(sessionID, params)
	if err != nil {
		return Session{}, classify(err)
	}
	return fromStripe(cs), nil
}

func fromStripe(cs *stripe.CheckoutSession) Session {
	s := Session{
		ID:             cs.ID,
		URL:            cs.URL,
		PaymentStatus:  string(cs.PaymentStatus),
		AmountSubtotal: cs.AmountSubtotal,
		Currency:       string(cs.Currency),
		CustomerEmail:  cs.CustomerEmail,
		Metadata:       cs.Metadata,
	}
	if s.CustomerEmail == "" && cs.CustomerDetails != nil {
		s.CustomerEmail = cs.CustomerDetails.Email
	}
	if cs.PaymentIntent != nil {
		s.PaymentIntentID = cs.PaymentIntent.ID
	}
	if s.Metadata == nil {
		s.Metadata = map[string]string{}
	}
	return s
}

// classify maps provider errors: an unknown session is ErrNotFound, a
// rejected request is a validation error, everything else is
// ErrGatewayUnavailable.
func classify(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch {
		case se.HTTPStatusCode == http.StatusNotFound || se.Code == stripe.ErrorCodeResourceMissing:
			return fmt.Errorf("checkout session: %w", apperr.ErrNotFound)
		case se.HTTPStatusCode == http.StatusBadRequest:
			return fmt.Errorf("%w: %s", apperr.ErrInvalidField, se.Msg)
		}
	}
	return fmt.Errorf("%w: %v", apperr.ErrGatewayUnavailable, err)
}
