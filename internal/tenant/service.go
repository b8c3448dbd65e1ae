package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/daylane/booking-api/internal/auth"
	"github.com/daylane/booking-api/internal/plan"
)

const (
	registerTrialDays = 14
	cancelTrialDays   = 30

	cancelReasonUserRequested = "user_requested"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNothingToCancel    = errors.New("no active subscription to cancel")
)

type Service struct {
	repo   Repository
	tokens *auth.TokenManager
	now    func() time.Time
}

func NewService(repo Repository, tokens *auth.TokenManager) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Name     string
	Slug     string
	Email    string
	Password string
	Phone    *string
}

// Register creates a tenant on a fresh 14-day trial and returns it together
// with a bearer token bound to the new tenant id.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Tenant, string, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	trialEnd := now.Add(registerTrialDays * 24 * time.Hour)

	t := &Tenant{
		ID:           uuid.New(),
		Name:         in.Name,
		Slug:         in.Slug,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Locale:       "de-CH",
		Currency:     "CHF",
		Plan:         plan.Trial,
		TrialStart:   &now,
		TrialEnd:     &trialEnd,
		Active:       true,
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, "", ErrDuplicate
		}
		return nil, "", fmt.Errorf("create tenant: %w", err)
	}

	token, err := s.tokens.Issue(t.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	log.Info().Str("tenant_id", t.ID.String()).Str("slug", t.Slug).Msg("tenant registered")
	return t, token, nil
}

// Authenticate verifies credentials and returns a fresh bearer token. An
// unknown email and a wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Tenant, string, error) {
	t, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("load tenant: %w", err)
	}

	if !auth.VerifyPassword(password, t.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(t.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return t, token, nil
}

// CancelSubscription moves a paid tenant back to trial with a fresh 30-day
// window and appends an audit record. Cancelling a trial tenant is a policy
// error regardless of call count.
func (s *Service) CancelSubscription(ctx context.Context, tenantID uuid.UUID) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant: %w", err)
	}

	if t.Plan == plan.Trial {
		return nil, ErrNothingToCancel
	}

	now := s.now()
	trialEnd := now.Add(cancelTrialDays * 24 * time.Hour)

	previous, err := s.repo.ResetToTrial(ctx, tenantID, now, trialEnd)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			// Lost the race against another cancellation.
			return nil, ErrNothingToCancel
		}
		return nil, fmt.Errorf("reset to trial: %w", err)
	}

	record := Cancellation{
		ID:           uuid.New(),
		TenantID:     tenantID,
		PreviousPlan: previous,
		CancelledAt:  now,
		Reason:       cancelReasonUserRequested,
	}
	if err := s.repo.InsertCancellation(ctx, record); err != nil {
		return nil, fmt.Errorf("insert cancellation record: %w", err)
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("previous_plan", string(previous)).
		Msg("subscription cancelled")

	return s.repo.GetByID(ctx, tenantID)
}

// UpgradePlan writes the plan field unconditionally. Only the billing bridge
// calls this, after a payment has been reconciled.
func (s *Service) UpgradePlan(ctx context.Context, tenantID uuid.UUID, p plan.Type) error {
	if !p.Valid() {
		return fmt.Errorf("unknown plan %q", p)
	}
	if err := s.repo.UpdatePlan(ctx, tenantID, p); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	log.Info().Str("tenant_id", tenantID.String()).Str("plan", string(p)).Msg("plan upgraded")
	return nil
}

// GetByID resolves a tenant for the authenticated surface.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// ResolveActiveSlug resolves a tenant for the public surface. Inactive
// tenants are indistinguishable from missing ones.
func (s *Service) ResolveActiveSlug(ctx context.Context, slug string) (*Tenant, error) {
	t, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, ErrTenantNotFound
	}
	return t, nil
}
