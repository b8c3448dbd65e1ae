package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/daylane/booking-api/internal/catalog"
	"github.com/daylane/booking-api/internal/monitoring"
	"github.com/daylane/booking-api/internal/plan"
	redisclient "github.com/daylane/booking-api/internal/redis"
	"github.com/daylane/booking-api/internal/tenant"
)

var (
	ErrTimeConflict     = errors.New("time slot already taken")
	ErrQuotaExceeded    = errors.New("monthly appointment limit reached")
	ErrTrialExpired     = errors.New("trial period has expired")
	ErrBookingContended = errors.New("slot is currently being booked, please retry")
	ErrEmptyUpdate      = errors.New("no update fields provided")
	ErrBadDate          = errors.New("date must be YYYY-MM-DD")
)

// CatalogReader is the slice of the catalog the scheduling engine needs.
type CatalogReader interface {
	GetService(ctx context.Context, tenantID, serviceID uuid.UUID) (*catalog.Service, error)
	CountActiveStaff(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type Service struct {
	repo    Repository
	locker  redisclient.Locker
	catalog CatalogReader
	now     func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, cat CatalogReader) *Service {
	return &Service{
		repo:    repo,
		locker:  locker,
		catalog: cat,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type BookingRequest struct {
	ServiceID     uuid.UUID
	StaffID       uuid.UUID
	StartAt       time.Time
	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string
	Notes         *string
}

// Book validates and commits an appointment. Both the public and the
// authenticated surface call this one function, so the gates run in the same
// order everywhere: resolve service, quota, trial expiry, conflict, commit.
//
// The check-and-commit section runs under a per-(tenant, staff) lock, and
// the insert itself re-validates both the overlap and the quota server-side,
// so concurrent requests cannot double-book a staff member or exceed the
// monthly ceiling even if the lock is lost.
func (s *Service) Book(ctx context.Context, t *tenant.Tenant, req BookingRequest) (*Appointment, error) {
	svc, err := s.catalog.GetService(ctx, t.ID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load service: %w", err)
	}

	startAt := req.StartAt.UTC()
	endAt := startAt.Add(svc.SlotLength())

	started := time.Now()
	var booked *Appointment

	err = s.locker.WithBookingLock(ctx, t.ID, req.StaffID, func(lockCtx context.Context) error {
		now := s.now()
		monthStart, monthEnd := plan.MonthWindow(now)
		limits := plan.LimitsFor(t.Plan)

		count, err := s.repo.CountConfirmedInRange(lockCtx, t.ID, monthStart, monthEnd)
		if err != nil {
			return fmt.Errorf("count monthly appointments: %w", err)
		}
		if count >= limits.MaxAppointmentsPerMonth {
			return ErrQuotaExceeded
		}

		if t.TrialExpired(now) {
			return ErrTrialExpired
		}

		overlap, err := s.repo.HasOverlap(lockCtx, t.ID, req.StaffID, startAt, endAt)
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if overlap {
			return ErrTimeConflict
		}

		a := &Appointment{
			ID:            uuid.New(),
			TenantID:      t.ID,
			ServiceID:     req.ServiceID,
			StaffID:       req.StaffID,
			StartAt:       startAt,
			EndAt:         endAt,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
			Notes:         req.Notes,
			Status:        StatusConfirmed,
			CreatedAt:     now,
		}

		err = s.repo.CreateConfirmed(lockCtx, a, monthStart, monthEnd, limits.MaxAppointmentsPerMonth)
		if errors.Is(err, ErrNotAdmitted) {
			// Someone slipped in between our read and the write; re-read to
			// report the gate that actually failed.
			return s.diagnoseRejection(lockCtx, t.ID, req.StaffID, startAt, endAt, monthStart, monthEnd, limits.MaxAppointmentsPerMonth)
		}
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		booked = a
		return nil
	})

	monitoring.BookingDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		monitoring.BookingsTotal.WithLabelValues(bookingOutcome(err)).Inc()
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrBookingContended
		}
		return nil, err
	}

	monitoring.BookingsTotal.WithLabelValues(monitoring.OutcomeBooked).Inc()
	log.Info().
		Str("tenant_id", t.ID.String()).
		Str("staff_id", req.StaffID.String()).
		Time("start_at", startAt).
		Msg("appointment booked")

	return booked, nil
}

func (s *Service) diagnoseRejection(ctx context.Context, tenantID, staffID uuid.UUID, start, end, monthStart, monthEnd time.Time, ceiling int) error {
	overlap, err := s.repo.HasOverlap(ctx, tenantID, staffID, start, end)
	if err == nil && overlap {
		return ErrTimeConflict
	}
	count, err := s.repo.CountConfirmedInRange(ctx, tenantID, monthStart, monthEnd)
	if err == nil && count >= ceiling {
		return ErrQuotaExceeded
	}
	// Nothing conclusive; treat as conflict, the safer answer for a retry.
	return ErrTimeConflict
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, ErrTimeConflict):
		return monitoring.OutcomeConflict
	case errors.Is(err, ErrQuotaExceeded):
		return monitoring.OutcomeQuota
	case errors.Is(err, ErrTrialExpired):
		return monitoring.OutcomeTrial
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		return monitoring.OutcomeContended
	default:
		return monitoring.OutcomeError
	}
}

type UpdatePatch struct {
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	Notes         *string
	Status        *Status
}

func (p UpdatePatch) empty() bool {
	return p.CustomerName == nil && p.CustomerEmail == nil && p.CustomerPhone == nil &&
		p.Notes == nil && p.Status == nil
}

// Update applies a partial update to customer fields and/or status. The
// start time is immutable after booking; re-confirming a cancelled
// appointment re-validates the interval through the storage constraint.
func (s *Service) Update(ctx context.Context, tenantID, appointmentID uuid.UUID, patch UpdatePatch) (*Appointment, error) {
	if patch.empty() {
		return nil, ErrEmptyUpdate
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrEmptyUpdate, *patch.Status)
	}

	a, err := s.repo.GetByID(ctx, tenantID, appointmentID)
	if err != nil {
		return nil, err
	}

	if patch.CustomerName != nil {
		a.CustomerName = *patch.CustomerName
	}
	if patch.CustomerEmail != nil {
		a.CustomerEmail = patch.CustomerEmail
	}
	if patch.CustomerPhone != nil {
		a.CustomerPhone = patch.CustomerPhone
	}
	if patch.Notes != nil {
		a.Notes = patch.Notes
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}

	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, ErrNotAdmitted) {
			return nil, ErrTimeConflict
		}
		return nil, err
	}
	return a, nil
}

// Delete removes an appointment outright; this is a hard delete, not a
// cancellation.
func (s *Service) Delete(ctx context.Context, tenantID, appointmentID uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, appointmentID)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]Detail, error) {
	return s.repo.ListDetails(ctx, tenantID)
}

// ListForDate returns the slots already taken on a calendar date, optionally
// for one staff member. This feeds the public booking page's conflict
// display, so it exposes no customer contact details.
func (s *Service) ListForDate(ctx context.Context, tenantID uuid.UUID, date string, staffID *uuid.UUID) ([]PublicSlot, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrBadDate
	}

	dayStart := day.UTC()
	dayEnd := dayStart.Add(24 * time.Hour)

	details, err := s.repo.ListDayDetails(ctx, tenantID, dayStart, dayEnd, staffID)
	if err != nil {
		return nil, fmt.Errorf("list day appointments: %w", err)
	}

	slots := make([]PublicSlot, 0, len(details))
	for _, d := range details {
		slot := PublicSlot{
			ID:           d.ID,
			StaffID:      d.StaffID,
			StartAt:      d.StartAt,
			EndAt:        d.EndAt,
			CustomerName: d.CustomerName,
		}
		if d.ServiceName != nil {
			slot.ServiceName = *d.ServiceName
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// Overview aggregates the dashboard numbers for a tenant.
type Overview struct {
	AppointmentsToday     int
	AppointmentsThisMonth int
	ActiveStaff           int
	TotalCustomers        int
	NextAppointments      []Detail
	Plan                  plan.Type
	TrialEnd              *time.Time
	TenantName            string
	TenantSlug            string
}

const overviewAppointmentLimit = 10

func (s *Service) DashboardOverview(ctx context.Context, t *tenant.Tenant) (*Overview, error) {
	now := s.now()
	monthStart, monthEnd := plan.MonthWindow(now)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	monthCount, err := s.repo.CountConfirmedInRange(ctx, t.ID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("count month appointments: %w", err)
	}

	todayCount, err := s.repo.CountConfirmedInRange(ctx, t.ID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("count today appointments: %w", err)
	}

	staffCount, err := s.catalog.CountActiveStaff(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("count active staff: %w", err)
	}

	customers, err := s.repo.CountDistinctCustomers(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	todays, err := s.repo.ListDayDetails(ctx, t.ID, dayStart, dayEnd, nil)
	if err != nil {
		return nil, fmt.Errorf("list today appointments: %w", err)
	}
	next := make([]Detail, 0, overviewAppointmentLimit)
	for _, d := range todays {
		if d.Status != StatusConfirmed {
			continue
		}
		next = append(next, d)
		if len(next) == overviewAppointmentLimit {
			break
		}
	}

	return &Overview{
		AppointmentsToday:     todayCount,
		AppointmentsThisMonth: monthCount,
		ActiveStaff:           staffCount,
		TotalCustomers:        customers,
		NextAppointments:      next,
		Plan:                  t.Plan,
		TrialEnd:              t.TrialEnd,
		TenantName:            t.Name,
		TenantSlug:            t.Slug,
	}, nil
}
