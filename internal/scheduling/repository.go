package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrNotAdmitted is returned by CreateConfirmed when the conditional
	// insert found an overlap or an exhausted quota at commit time. The
	// caller re-reads to decide which gate actually failed.
	ErrNotAdmitted = errors.New("appointment not admitted")
)

// Repository contains all DB interactions needed by the scheduling engine.
type Repository interface {
	// CreateConfirmed inserts a confirmed appointment iff, at commit time, no
	// confirmed appointment for the same (tenant, staff) overlaps it AND the
	// tenant's confirmed count within [monthStart, monthEnd) is below
	// ceiling. Both conditions are evaluated server-side in the same
	// statement so the check cannot race the write.
	CreateConfirmed(ctx context.Context, a *Appointment, monthStart, monthEnd time.Time, ceiling int) error

	HasOverlap(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) (bool, error)
	CountConfirmedInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int, error)

	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	ListDetails(ctx context.Context, tenantID uuid.UUID) ([]Detail, error)
	ListDayDetails(ctx context.Context, tenantID uuid.UUID, dayStart, dayEnd time.Time, staffID *uuid.UUID) ([]Detail, error)
	CountDistinctCustomers(ctx context.Context, tenantID uuid.UUID) (int, error)
}
