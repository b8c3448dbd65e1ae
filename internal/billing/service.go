package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/daylane/booking-api/internal/monitoring"
	"github.com/daylane/booking-api/internal/plan"
	"github.com/daylane/booking-api/internal/tenant"
)

var (
	ErrUnknownPackage   = errors.New("unknown package")
	ErrAlreadyOnPlan    = errors.New("tenant already on this plan or higher")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// PlanUpgrader is the slice of the tenant service billing needs once a
// payment settles.
type PlanUpgrader interface {
	UpgradePlan(ctx context.Context, tenantID uuid.UUID, p plan.Type) error
}

type Service struct {
	repo     Repository
	provider CheckoutProvider
	tenants  PlanUpgrader
	now      func() time.Time
}

func NewService(repo Repository, provider CheckoutProvider, tenants PlanUpgrader) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		tenants:  tenants,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateCheckout opens a hosted checkout session for a plan package. The
// amount always comes from the server-side price table; clients only name the
// package.
func (s *Service) CreateCheckout(ctx context.Context, t *tenant.Tenant, packageID, successURL, cancelURL string) (*Transaction, string, error) {
	pkg, ok := plan.PackageByID(packageID)
	if !ok {
		return nil, "", ErrUnknownPackage
	}
	if plan.AtLeast(t.Plan, pkg.Plan) {
		return nil, "", ErrAlreadyOnPlan
	}

	sess, err := s.provider.CreateSession(ctx, t.ID.String(), pkg.ID, pkg.Name, pkg.Currency, pkg.Amount, successURL, cancelURL)
	if err != nil {
		return nil, "", err
	}

	upgradeTo := pkg.Plan
	tx := &Transaction{
		ID:            uuid.New(),
		TenantID:      t.ID,
		SessionID:     sess.SessionID,
		Amount:        pkg.Amount,
		Currency:      pkg.Currency,
		PlanUpgradeTo: &upgradeTo,
		PaymentStatus: PaymentPending,
		SessionStatus: SessionInitiated,
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, "", err
	}

	log.Info().
		Str("tenant_id", t.ID.String()).
		Str("session_id", sess.SessionID).
		Str("package", pkg.ID).
		Msg("checkout session created")

	return tx, sess.CheckoutURL, nil
}

// GetStatus returns the current state of a tenant's checkout session,
// reconciling with the provider when the local record is still pending. The
// post-payment redirect lands here, so this path must settle the payment
// even if the webhook never arrives.
func (s *Service) GetStatus(ctx context.Context, tenantID uuid.UUID, sessionID string) (*Transaction, error) {
	tx, err := s.repo.GetBySession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if tx.Paid() {
		return tx, nil
	}

	state, err := s.provider.GetSessionState(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch {
	case state.PaymentStatus == PaymentPaid:
		if err := s.settle(ctx, tx, state.PaymentID); err != nil {
			return nil, err
		}
	case state.SessionStatus == SessionExpired:
		if err := s.repo.MarkClosed(ctx, sessionID, PaymentExpired, SessionExpired); err != nil && !errors.Is(err, ErrAlreadyPaid) {
			return nil, err
		}
	case state.SessionStatus == SessionCancelled:
		if err := s.repo.MarkClosed(ctx, sessionID, PaymentFailed, SessionCancelled); err != nil && !errors.Is(err, ErrAlreadyPaid) {
			return nil, err
		}
	}

	return s.repo.GetBySession(ctx, tenantID, sessionID)
}

// HandleWebhook verifies and applies a provider notification. Events with a
// bad signature are rejected outright. Unknown event types are acknowledged
// and dropped.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.VerifyWebhook(ctx, payload, signature)
	if err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			return err
		}
		monitoring.WebhookEventsTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	monitoring.WebhookEventsTotal.WithLabelValues(event.Type).Inc()

	switch event.Type {
	case "checkout.session.completed", "payment_intent.succeeded":
		tx, err := s.repo.GetBySessionAnyTenant(ctx, event.SessionID)
		if err != nil {
			// A session we never opened; acknowledge so the provider
			// stops retrying.
			if errors.Is(err, ErrTransactionNotFound) {
				log.Warn().Str("session_id", event.SessionID).Msg("webhook for unknown session")
				return nil
			}
			return err
		}
		if event.PaymentStatus != PaymentPaid {
			// A completed session with an asynchronous payment method is
			// not paid yet; the paid event follows, or the status poll
			// reconciles.
			log.Info().Str("session_id", event.SessionID).Str("event", event.Type).Msg("webhook session not paid yet")
			return nil
		}
		return s.settle(ctx, tx, event.PaymentID)
	case "checkout.session.expired":
		err := s.repo.MarkClosed(ctx, event.SessionID, PaymentExpired, SessionExpired)
		if errors.Is(err, ErrAlreadyPaid) || errors.Is(err, ErrTransactionNotFound) {
			return nil
		}
		return err
	default:
		return nil
	}
}

// settle marks the transaction paid and applies the plan upgrade. MarkPaid
// is the arbitration point: with the redirect poll and the webhook racing,
// only the caller whose UPDATE lands applies the upgrade, so it happens
// exactly once.
func (s *Service) settle(ctx context.Context, tx *Transaction, paymentID *string) error {
	err := s.repo.MarkPaid(ctx, tx.SessionID, paymentID)
	if errors.Is(err, ErrAlreadyPaid) {
		return nil
	}
	if err != nil {
		return err
	}

	if tx.PlanUpgradeTo != nil {
		if err := s.tenants.UpgradePlan(ctx, tx.TenantID, *tx.PlanUpgradeTo); err != nil {
			return fmt.Errorf("apply plan upgrade: %w", err)
		}
		monitoring.PlanUpgradesTotal.WithLabelValues(string(*tx.PlanUpgradeTo)).Inc()
	}

	log.Info().
		Str("tenant_id", tx.TenantID.String()).
		Str("session_id", tx.SessionID).
		Msg("payment settled")
	return nil
}
