package billing

import (
	"context"
	"errors"
)

var ErrProviderUnavailable = errors.New("payment provider unavailable")

// CheckoutSession is what the provider hands back when a session is created.
type CheckoutSession struct {
	SessionID   string
	CheckoutURL string
}

// SessionState is the provider's answer when asked about a session. The
// provider is the trusted source for payment state; redirect query params
// from the browser never are.
type SessionState struct {
	PaymentStatus PaymentStatus
	SessionStatus SessionStatus
	PaymentID     *string
}

// WebhookEvent is a verified provider notification, resolved to the checkout
// session it concerns. PaymentStatus carries the provider's view of the
// session's payment at the time of the event; the handler must not settle
// on an event that is not paid.
type WebhookEvent struct {
	Type          string
	SessionID     string
	PaymentStatus PaymentStatus
	PaymentID     *string
}

// CheckoutProvider abstracts the hosted-checkout payment provider.
type CheckoutProvider interface {
	// CreateSession opens a hosted checkout for the given amount (in the
	// currency's major unit) and returns the session id plus the URL to
	// send the customer to.
	CreateSession(ctx context.Context, tenantID, packageID, packageName, currency string, amount float64, successURL, cancelURL string) (*CheckoutSession, error)

	// GetSessionState fetches the authoritative state of a session.
	GetSessionState(ctx context.Context, sessionID string) (*SessionState, error)

	// VerifyWebhook checks the signature of a raw webhook payload and
	// returns the parsed event, resolved to its checkout session. An
	// invalid signature is an error; the caller must discard the event.
	VerifyWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}
