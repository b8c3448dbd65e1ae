package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/daylane/booking-api/internal/plan"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrDuplicate      = errors.New("slug or email already taken")
)

// Repository contains all DB interactions needed by the tenant service.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetByEmail(ctx context.Context, email string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)

	// UpdatePlan unconditionally writes the plan field. Invoked only by the
	// billing bridge on confirmed payment.
	UpdatePlan(ctx context.Context, id uuid.UUID, p plan.Type) error

	// ResetToTrial moves a tenant off a paid plan back to trial with a fresh
	// trial window. The update is conditional on the tenant currently being
	// on a paid plan; it returns the plan that was replaced, or
	// ErrTenantNotFound when the tenant is absent or already on trial.
	ResetToTrial(ctx context.Context, id uuid.UUID, trialStart, trialEnd time.Time) (plan.Type, error)

	InsertCancellation(ctx context.Context, c Cancellation) error
}
