package tenant

import (
	"time"

	"github.com/google/uuid"

	"github.com/daylane/booking-api/internal/plan"
)

// Tenant is a salon account and the multi-tenancy root. Every other record
// in the system carries a reference to exactly one tenant.
type Tenant struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	Email        string
	Phone        *string
	PasswordHash string
	Locale       string
	Currency     string
	Plan         plan.Type
	TrialStart   *time.Time
	TrialEnd     *time.Time
	Active       bool
	CreatedAt    time.Time
}

// TrialExpired reports whether the trial window has lapsed at the given time.
// Only meaningful while Plan is trial.
func (t *Tenant) TrialExpired(now time.Time) bool {
	return t.Plan == plan.Trial && t.TrialEnd != nil && now.After(*t.TrialEnd)
}

// Cancellation is the audit record appended when a paid subscription is
// cancelled back to trial.
type Cancellation struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	PreviousPlan plan.Type
	CancelledAt  time.Time
	Reason       string
}
