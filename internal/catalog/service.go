package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/daylane/booking-api/internal/plan"
)

var (
	ErrStaffLimitReached = errors.New("staff limit for current plan reached")
	ErrEmptyUpdate       = errors.New("no update fields provided")
	ErrBadClosureDate    = errors.New("closure date must be YYYY-MM-DD")
	ErrInvalidDuration   = errors.New("service duration must be positive")
)

// Manager implements staff roster, closure, and service-definition
// operations. The bookable offering is already called Service here, so the
// component carries a different name.
type Manager struct {
	repo Repository
}

func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo}
}

type StaffCreateInput struct {
	Name         string
	WorkingHours *WeeklySchedule
	ColorTag     *string
}

// CreateStaff inserts a staff member, enforcing the plan's active-staff
// ceiling. The check counts active staff only; deactivated members free up
// a seat.
func (m *Manager) CreateStaff(ctx context.Context, tenantID uuid.UUID, tenantPlan plan.Type, in StaffCreateInput) (*Staff, error) {
	count, err := m.repo.CountActiveStaff(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count active staff: %w", err)
	}

	limits := plan.LimitsFor(tenantPlan)
	if count >= limits.MaxStaff {
		return nil, ErrStaffLimitReached
	}

	schedule := DefaultWeeklySchedule()
	if in.WorkingHours != nil {
		schedule = *in.WorkingHours
	}

	colorTag := DefaultColorTag
	if in.ColorTag != nil && *in.ColorTag != "" {
		colorTag = *in.ColorTag
	}

	st := &Staff{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Name:         in.Name,
		Active:       true,
		ColorTag:     colorTag,
		Timezone:     DefaultTimezone,
		WorkingHours: schedule,
		CreatedAt:    time.Now().UTC(),
	}

	if err := m.repo.CreateStaff(ctx, st); err != nil {
		return nil, fmt.Errorf("create staff: %w", err)
	}

	log.Info().Str("tenant_id", tenantID.String()).Str("staff_id", st.ID.String()).Msg("staff created")
	return st, nil
}

type StaffPatch struct {
	Name         *string
	WorkingHours *WeeklySchedule
	ColorTag     *string
	Active       *bool
}

func (p StaffPatch) empty() bool {
	return p.Name == nil && p.WorkingHours == nil && p.ColorTag == nil && p.Active == nil
}

// UpdateStaff applies a partial update. An empty patch is rejected.
func (m *Manager) UpdateStaff(ctx context.Context, tenantID, staffID uuid.UUID, patch StaffPatch) (*Staff, error) {
	if patch.empty() {
		return nil, ErrEmptyUpdate
	}

	st, err := m.repo.GetStaff(ctx, tenantID, staffID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		st.Name = *patch.Name
	}
	if patch.WorkingHours != nil {
		st.WorkingHours = *patch.WorkingHours
	}
	if patch.ColorTag != nil {
		st.ColorTag = *patch.ColorTag
	}
	if patch.Active != nil {
		st.Active = *patch.Active
	}

	if err := m.repo.UpdateStaff(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// SetWorkingHours replaces the full weekly schedule; it is not a merge.
func (m *Manager) SetWorkingHours(ctx context.Context, tenantID, staffID uuid.UUID, schedule WeeklySchedule) (*Staff, error) {
	st, err := m.repo.GetStaff(ctx, tenantID, staffID)
	if err != nil {
		return nil, err
	}

	st.WorkingHours = schedule
	if err := m.repo.UpdateStaff(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (m *Manager) GetStaff(ctx context.Context, tenantID, staffID uuid.UUID) (*Staff, error) {
	return m.repo.GetStaff(ctx, tenantID, staffID)
}

func (m *Manager) ListStaff(ctx context.Context, tenantID uuid.UUID) ([]Staff, error) {
	return m.repo.ListStaff(ctx, tenantID)
}

func (m *Manager) ListActiveStaff(ctx context.Context, tenantID uuid.UUID) ([]Staff, error) {
	return m.repo.ListActiveStaff(ctx, tenantID)
}

func (m *Manager) CountActiveStaff(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return m.repo.CountActiveStaff(ctx, tenantID)
}

type ClosureCreateInput struct {
	Date      string
	Reason    *string
	AllDay    bool
	StartTime *string
	EndTime   *string
}

// AddClosure records a one-off closure date for a staff member. The date
// must be a plain YYYY-MM-DD calendar date; any other format is rejected.
func (m *Manager) AddClosure(ctx context.Context, tenantID, staffID uuid.UUID, in ClosureCreateInput) (*SpecialClosure, error) {
	if _, err := m.repo.GetStaff(ctx, tenantID, staffID); err != nil {
		return nil, err
	}

	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, ErrBadClosureDate
	}

	c := &SpecialClosure{
		ID:        uuid.New(),
		TenantID:  tenantID,
		StaffID:   staffID,
		Date:      in.Date,
		Reason:    in.Reason,
		AllDay:    in.AllDay,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		CreatedAt: time.Now().UTC(),
	}

	if err := m.repo.CreateClosure(ctx, c); err != nil {
		return nil, fmt.Errorf("create closure: %w", err)
	}
	return c, nil
}

func (m *Manager) ListClosures(ctx context.Context, tenantID, staffID uuid.UUID) ([]SpecialClosure, error) {
	if _, err := m.repo.GetStaff(ctx, tenantID, staffID); err != nil {
		return nil, err
	}
	return m.repo.ListClosures(ctx, tenantID, staffID)
}

func (m *Manager) ListAllClosures(ctx context.Context, tenantID uuid.UUID) ([]SpecialClosure, error) {
	return m.repo.ListAllClosures(ctx, tenantID)
}

func (m *Manager) DeleteClosure(ctx context.Context, tenantID, staffID, closureID uuid.UUID) error {
	if _, err := m.repo.GetStaff(ctx, tenantID, staffID); err != nil {
		return err
	}
	return m.repo.DeleteClosure(ctx, tenantID, staffID, closureID)
}

type ServiceCreateInput struct {
	Name            string
	Description     *string
	DurationMinutes int
	PriceCHF        float64
	BufferMinutes   int
}

func (m *Manager) CreateService(ctx context.Context, tenantID uuid.UUID, in ServiceCreateInput) (*Service, error) {
	if in.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	svc := &Service{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Name:            in.Name,
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		PriceCHF:        in.PriceCHF,
		BufferMinutes:   in.BufferMinutes,
		Active:          true,
		CreatedAt:       time.Now().UTC(),
	}

	if err := m.repo.CreateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

func (m *Manager) GetService(ctx context.Context, tenantID, serviceID uuid.UUID) (*Service, error) {
	return m.repo.GetService(ctx, tenantID, serviceID)
}

func (m *Manager) ListServices(ctx context.Context, tenantID uuid.UUID) ([]Service, error) {
	return m.repo.ListServices(ctx, tenantID)
}

func (m *Manager) ListActiveServices(ctx context.Context, tenantID uuid.UUID) ([]Service, error) {
	return m.repo.ListActiveServices(ctx, tenantID)
}
