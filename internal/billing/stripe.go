package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

// StripeProvider implements CheckoutProvider against Stripe hosted checkout.
type StripeProvider struct {
	sc            *client.API
	webhookSecret string
	timeout       time.Duration
}

func NewStripeProvider(apiKey, webhookSecret string, timeout time.Duration) *StripeProvider {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeProvider{sc: sc, webhookSecret: webhookSecret, timeout: timeout}
}

func (p *StripeProvider) CreateSession(ctx context.Context, tenantID, packageID, packageName, currency string, amount float64, successURL, cancelURL string) (*CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(currency)),
				UnitAmount: stripe.Int64(int64(math.Round(amount * 100))),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(packageName),
				},
			},
		}},
	}
	params.Context = ctx
	params.AddMetadata("tenant_id", tenantID)
	params.AddMetadata("package_id", packageID)

	sess, err := p.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create session: %v", ErrProviderUnavailable, err)
	}
	return &CheckoutSession{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

func (p *StripeProvider) GetSessionState(ctx context.Context, sessionID string) (*SessionState, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := p.sc.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: get session: %v", ErrProviderUnavailable, err)
	}

	state := &SessionState{
		PaymentStatus: mapPaymentStatus(sess.PaymentStatus),
		SessionStatus: mapSessionStatus(sess.Status),
	}
	if sess.PaymentIntent != nil {
		state.PaymentID = stripe.String(sess.PaymentIntent.ID)
	}
	return state, nil
}

func (p *StripeProvider) VerifyWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	// checkout.session.* events carry the session itself; payment_intent.*
	// events carry the intent, and the session has to be looked up through it.
	if strings.HasPrefix(string(event.Type), "payment_intent.") {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("parse webhook payload: %w", err)
		}
		sess, err := p.sessionForIntent(ctx, pi.ID)
		if err != nil {
			return nil, err
		}
		return &WebhookEvent{
			Type:          string(event.Type),
			SessionID:     sess.ID,
			PaymentStatus: mapPaymentStatus(sess.PaymentStatus),
			PaymentID:     stripe.String(pi.ID),
		}, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("parse webhook payload: %w", err)
	}

	ev := &WebhookEvent{
		Type:          string(event.Type),
		SessionID:     sess.ID,
		PaymentStatus: mapPaymentStatus(sess.PaymentStatus),
	}
	if sess.PaymentIntent != nil {
		ev.PaymentID = stripe.String(sess.PaymentIntent.ID)
	}
	return ev, nil
}

func (p *StripeProvider) sessionForIntent(ctx context.Context, intentID string) (*stripe.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionListParams{PaymentIntent: stripe.String(intentID)}
	params.Context = ctx

	it := p.sc.CheckoutSessions.List(params)
	if it.Next() {
		return it.CheckoutSession(), nil
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("%w: list sessions for intent: %v", ErrProviderUnavailable, err)
	}
	return nil, fmt.Errorf("%w: no checkout session for intent %s", ErrProviderUnavailable, intentID)
}

func mapPaymentStatus(s stripe.CheckoutSessionPaymentStatus) PaymentStatus {
	switch s {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return PaymentPaid
	default:
		return PaymentPending
	}
}

func mapSessionStatus(s stripe.CheckoutSessionStatus) SessionStatus {
	switch s {
	case stripe.CheckoutSessionStatusComplete:
		return SessionCompleted
	case stripe.CheckoutSessionStatusExpired:
		return SessionExpired
	default:
		return SessionInitiated
	}
}
