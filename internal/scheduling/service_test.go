package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daylane/booking-api/internal/catalog"
	"github.com/daylane/booking-api/internal/plan"
	"github.com/daylane/booking-api/internal/tenant"
)

type fakeRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*Appointment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{appointments: map[uuid.UUID]*Appointment{}}
}

func (r *fakeRepo) hasOverlapLocked(tenantID, staffID uuid.UUID, start, end time.Time) bool {
	for _, a := range r.appointments {
		if a.TenantID != tenantID || a.StaffID != staffID || a.Status != StatusConfirmed {
			continue
		}
		if Overlaps(a.StartAt, a.EndAt, start, end) {
			return true
		}
	}
	return false
}

func (r *fakeRepo) countLocked(tenantID uuid.UUID, start, end time.Time) int {
	n := 0
	for _, a := range r.appointments {
		if a.TenantID == tenantID && a.Status == StatusConfirmed &&
			!a.StartAt.Before(start) && a.StartAt.Before(end) {
			n++
		}
	}
	return n
}

func (r *fakeRepo) CreateConfirmed(_ context.Context, a *Appointment, monthStart, monthEnd time.Time, ceiling int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasOverlapLocked(a.TenantID, a.StaffID, a.StartAt, a.EndAt) {
		return ErrNotAdmitted
	}
	if r.countLocked(a.TenantID, monthStart, monthEnd) >= ceiling {
		return ErrNotAdmitted
	}
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *fakeRepo) HasOverlap(_ context.Context, tenantID, staffID uuid.UUID, start, end time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasOverlapLocked(tenantID, staffID, start, end), nil
}

func (r *fakeRepo) CountConfirmedInRange(_ context.Context, tenantID uuid.UUID, start, end time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked(tenantID, start, end), nil
}

func (r *fakeRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.TenantID != tenantID {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) Update(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.appointments[a.ID]
	if !ok || cur.TenantID != a.TenantID {
		return ErrAppointmentNotFound
	}
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.TenantID != tenantID {
		return ErrAppointmentNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeRepo) ListDetails(_ context.Context, tenantID uuid.UUID) ([]Detail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Detail
	for _, a := range r.appointments {
		if a.TenantID == tenantID {
			out = append(out, Detail{Appointment: *a})
		}
	}
	return out, nil
}

func (r *fakeRepo) ListDayDetails(_ context.Context, tenantID uuid.UUID, dayStart, dayEnd time.Time, staffID *uuid.UUID) ([]Detail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Detail
	for _, a := range r.appointments {
		if a.TenantID != tenantID {
			continue
		}
		if staffID != nil && a.StaffID != *staffID {
			continue
		}
		if a.StartAt.Before(dayStart) || !a.StartAt.Before(dayEnd) {
			continue
		}
		name := "Haircut"
		out = append(out, Detail{Appointment: *a, ServiceName: &name})
	}
	return out, nil
}

func (r *fakeRepo) CountDistinctCustomers(_ context.Context, tenantID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]struct{}{}
	for _, a := range r.appointments {
		if a.TenantID == tenantID {
			seen[a.CustomerName] = struct{}{}
		}
	}
	return len(seen), nil
}

// fakeLocker serializes per tenant/staff pair, like the redis lock does.
type fakeLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{locks: map[string]*sync.Mutex{}}
}

func (l *fakeLocker) WithBookingLock(ctx context.Context, tenantID, staffID uuid.UUID, fn func(context.Context) error) error {
	key := tenantID.String() + ":" + staffID.String()
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

type fakeCatalog struct {
	services map[uuid.UUID]*catalog.Service
	staff    int
}

func (c *fakeCatalog) GetService(_ context.Context, tenantID, serviceID uuid.UUID) (*catalog.Service, error) {
	svc, ok := c.services[serviceID]
	if !ok || svc.TenantID != tenantID {
		return nil, catalog.ErrServiceNotFound
	}
	return svc, nil
}

func (c *fakeCatalog) CountActiveStaff(context.Context, uuid.UUID) (int, error) {
	return c.staff, nil
}

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	tenant    *tenant.Tenant
	serviceID uuid.UUID
	staffID   uuid.UUID
	now       time.Time
}

func newFixture(t *testing.T, planType plan.Type) *fixture {
	t.Helper()

	now := time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC)
	trialEnd := now.Add(14 * 24 * time.Hour)
	ten := &tenant.Tenant{
		ID:       uuid.New(),
		Name:     "Salon Bern",
		Slug:     "salon-bern",
		Plan:     planType,
		TrialEnd: &trialEnd,
		Active: true,
	}

	serviceID := uuid.New()
	staffID := uuid.New()
	cat := &fakeCatalog{
		staff: 1,
		services: map[uuid.UUID]*catalog.Service{
			serviceID: {
				ID:              serviceID,
				TenantID:        ten.ID,
				Name:            "Haircut",
				DurationMinutes: 30,
				BufferMinutes:   0,
				Active:          true,
			},
		},
	}

	repo := newFakeRepo()
	svc := NewService(repo, newFakeLocker(), cat)
	svc.now = func() time.Time { return now }

	return &fixture{svc: svc, repo: repo, tenant: ten, serviceID: serviceID, staffID: staffID, now: now}
}

func (f *fixture) request(start time.Time, customer string) BookingRequest {
	return BookingRequest{
		ServiceID:    f.serviceID,
		StaffID:      f.staffID,
		StartAt:      start,
		CustomerName: customer,
	}
}

func TestBookComputesEndFromServiceLength(t *testing.T) {
	f := newFixture(t, plan.Pro)

	start := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	a, err := f.svc.Book(context.Background(), f.tenant, f.request(start, "Anna Keller"))
	require.NoError(t, err)
	assert.Equal(t, start, a.StartAt)
	assert.Equal(t, start.Add(30*time.Minute), a.EndAt)
	assert.Equal(t, StatusConfirmed, a.Status)
}

func TestBookRejectsOverlap(t *testing.T) {
	f := newFixture(t, plan.Pro)
	ctx := context.Background()

	start := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	_, err := f.svc.Book(ctx, f.tenant, f.request(start, "Anna Keller"))
	require.NoError(t, err)

	// 09:15 overlaps the 09:00-09:30 slot.
	_, err = f.svc.Book(ctx, f.tenant, f.request(start.Add(15*time.Minute), "Lars Meier"))
	assert.ErrorIs(t, err, ErrTimeConflict)

	// Back-to-back at 09:30 is fine.
	_, err = f.svc.Book(ctx, f.tenant, f.request(start.Add(30*time.Minute), "Lars Meier"))
	assert.NoError(t, err)
}

func TestBookUnknownService(t *testing.T) {
	f := newFixture(t, plan.Pro)

	req := f.request(time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC), "Anna Keller")
	req.ServiceID = uuid.New()
	_, err := f.svc.Book(context.Background(), f.tenant, req)
	assert.ErrorIs(t, err, catalog.ErrServiceNotFound)
}

func TestBookMonthlyQuota(t *testing.T) {
	f := newFixture(t, plan.Trial) // ceiling 30
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		_, err := f.svc.Book(ctx, f.tenant, f.request(start.Add(time.Duration(i)*time.Hour), "Customer"))
		require.NoError(t, err, "booking %d", i+1)
	}

	_, err := f.svc.Book(ctx, f.tenant, f.request(start.Add(31*24*time.Hour-time.Hour), "Customer"))
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestBookQuotaIsPerTenantNotPerStaff(t *testing.T) {
	f := newFixture(t, plan.Trial)
	ctx := context.Background()

	otherStaff := uuid.New()
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		req := f.request(start.Add(time.Duration(i)*time.Hour), "Customer")
		if i%2 == 1 {
			req.StaffID = otherStaff
		}
		_, err := f.svc.Book(ctx, f.tenant, req)
		require.NoError(t, err)
	}

	req := f.request(start.Add(40*time.Hour), "Customer")
	req.StaffID = otherStaff
	_, err := f.svc.Book(ctx, f.tenant, req)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestBookTrialExpired(t *testing.T) {
	f := newFixture(t, plan.Trial)
	expired := f.now.Add(-time.Minute)
	f.tenant.TrialEnd = &expired

	_, err := f.svc.Book(context.Background(), f.tenant, f.request(f.now.Add(time.Hour), "Anna Keller"))
	assert.ErrorIs(t, err, ErrTrialExpired)
}

func TestBookPaidPlanIgnoresTrialEnd(t *testing.T) {
	f := newFixture(t, plan.Starter)
	expired := f.now.Add(-time.Minute)
	f.tenant.TrialEnd = &expired

	_, err := f.svc.Book(context.Background(), f.tenant, f.request(f.now.Add(time.Hour), "Anna Keller"))
	assert.NoError(t, err)
}

func TestBookTenantIsolation(t *testing.T) {
	f := newFixture(t, plan.Pro)
	ctx := context.Background()

	start := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	_, err := f.svc.Book(ctx, f.tenant, f.request(start, "Anna Keller"))
	require.NoError(t, err)

	// A second salon booking the same staff UUID and slot must not collide.
	g := newFixture(t, plan.Pro)
	g.staffID = f.staffID
	_, err = g.svc.Book(ctx, g.tenant, g.request(start, "Lars Meier"))
	assert.NoError(t, err)
}

func TestBookConcurrentSameSlot(t *testing.T) {
	f := newFixture(t, plan.Pro)
	start := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Book(context.Background(), f.tenant, f.request(start, "Racer"))
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrTimeConflict)
		}
	}
	assert.Equal(t, 1, won, "exactly one concurrent booking must win")
	assert.Len(t, f.repo.appointments, 1)
}

func TestBookConcurrentQuotaCeiling(t *testing.T) {
	f := newFixture(t, plan.Trial)
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	// 40 disjoint slots race for 30 monthly places.
	const attempts = 40
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := f.request(start.Add(time.Duration(i)*time.Hour), "Racer")
			req.StaffID = uuid.New() // separate staff, so only the quota gate applies
			_, errs[i] = f.svc.Book(context.Background(), f.tenant, req)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrQuotaExceeded)
		}
	}
	assert.Equal(t, 30, won)
}

func TestUpdatePatchAndImmutableStart(t *testing.T) {
	f := newFixture(t, plan.Pro)
	ctx := context.Background()

	start := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	a, err := f.svc.Book(ctx, f.tenant, f.request(start, "Anna Keller"))
	require.NoError(t, err)

	name := "Anna K. Keller"
	status := StatusCancelled
	updated, err := f.svc.Update(ctx, f.tenant.ID, a.ID, UpdatePatch{CustomerName: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Anna K. Keller", updated.CustomerName)
	assert.Equal(t, StatusCancelled, updated.Status)
	assert.Equal(t, start, updated.StartAt)

	_, err = f.svc.Update(ctx, f.tenant.ID, a.ID, UpdatePatch{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	_, err = f.svc.Update(ctx, uuid.New(), a.ID, UpdatePatch{CustomerName: &name})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCancelledSlotIsFreed(t *testing.T) {
	f := newFixture(t, plan.Pro)
	ctx := context.Background()

	start := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	a, err := f.svc.Book(ctx, f.tenant, f.request(start, "Anna Keller"))
	require.NoError(t, err)

	status := StatusCancelled
	_, err = f.svc.Update(ctx, f.tenant.ID, a.ID, UpdatePatch{Status: &status})
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, f.tenant, f.request(start, "Lars Meier"))
	assert.NoError(t, err)
}

func TestDeleteAppointment(t *testing.T) {
	f := newFixture(t, plan.Pro)
	ctx := context.Background()

	a, err := f.svc.Book(ctx, f.tenant, f.request(time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC), "Anna Keller"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.tenant.ID, a.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, f.tenant.ID, a.ID), ErrAppointmentNotFound)
}

func TestListForDate(t *testing.T) {
	f := newFixture(t, plan.Pro)
	ctx := context.Background()

	day := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	_, err := f.svc.Book(ctx, f.tenant, f.request(day.Add(9*time.Hour), "Anna Keller"))
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, f.tenant, f.request(day.Add(33*time.Hour), "Lars Meier")) // next day
	require.NoError(t, err)

	slots, err := f.svc.ListForDate(ctx, f.tenant.ID, "2025-06-16", nil)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "Anna Keller", slots[0].CustomerName)
	assert.Equal(t, "Haircut", slots[0].ServiceName)

	other := uuid.New()
	slots, err = f.svc.ListForDate(ctx, f.tenant.ID, "2025-06-16", &other)
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = f.svc.ListForDate(ctx, f.tenant.ID, "16.06.2025", nil)
	assert.ErrorIs(t, err, ErrBadDate)
}

func TestDashboardOverview(t *testing.T) {
	f := newFixture(t, plan.Trial)
	ctx := context.Background()

	// Two today, one later this month, two distinct customers.
	today := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	_, err := f.svc.Book(ctx, f.tenant, f.request(today.Add(9*time.Hour), "Anna Keller"))
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, f.tenant, f.request(today.Add(10*time.Hour), "Anna Keller"))
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, f.tenant, f.request(today.Add(72*time.Hour), "Lars Meier"))
	require.NoError(t, err)

	ov, err := f.svc.DashboardOverview(ctx, f.tenant)
	require.NoError(t, err)
	assert.Equal(t, 2, ov.AppointmentsToday)
	assert.Equal(t, 3, ov.AppointmentsThisMonth)
	assert.Equal(t, 1, ov.ActiveStaff)
	assert.Equal(t, 2, ov.TotalCustomers)
	assert.Len(t, ov.NextAppointments, 2)
	assert.Equal(t, plan.Trial, ov.Plan)
	assert.Equal(t, "salon-bern", ov.TenantSlug)
}
