package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/daylane/booking-api/internal/catalog"
	"github.com/daylane/booking-api/internal/plan"
	"github.com/daylane/booking-api/internal/scheduling"
	"github.com/daylane/booking-api/internal/tenant"
)

type registerRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=120"`
	Slug     string  `json:"slug" validate:"required,min=2,max=64,lowercase,excludesall=0x20"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tenantResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Email     string     `json:"email"`
	Phone     *string    `json:"phone,omitempty"`
	Locale    string     `json:"locale"`
	Currency  string     `json:"currency"`
	Plan      plan.Type  `json:"plan"`
	TrialEnd  *time.Time `json:"trial_end,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toTenantResponse(t *tenant.Tenant) tenantResponse {
	return tenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Email:     t.Email,
		Phone:     t.Phone,
		Locale:    t.Locale,
		Currency:  t.Currency,
		Plan:      t.Plan,
		TrialEnd:  t.TrialEnd,
		CreatedAt: t.CreatedAt,
	}
}

type authResponse struct {
	Token  string         `json:"token"`
	Tenant tenantResponse `json:"tenant"`
}

type staffCreateRequest struct {
	Name         string                  `json:"name" validate:"required,min=1,max=120"`
	WorkingHours *catalog.WeeklySchedule `json:"working_hours"`
	ColorTag     *string                 `json:"color_tag" validate:"omitempty,hexcolor"`
}

type staffUpdateRequest struct {
	Name         *string                 `json:"name" validate:"omitempty,min=1,max=120"`
	WorkingHours *catalog.WeeklySchedule `json:"working_hours"`
	ColorTag     *string                 `json:"color_tag" validate:"omitempty,hexcolor"`
	Active       *bool                   `json:"active"`
}

type staffResponse struct {
	ID           uuid.UUID              `json:"id"`
	Name         string                 `json:"name"`
	Active       bool                   `json:"active"`
	ColorTag     string                 `json:"color_tag"`
	Timezone     string                 `json:"timezone"`
	WorkingHours catalog.WeeklySchedule `json:"working_hours"`
	CreatedAt    time.Time              `json:"created_at"`
}

func toStaffResponse(s *catalog.Staff) staffResponse {
	return staffResponse{
		ID:           s.ID,
		Name:         s.Name,
		Active:       s.Active,
		ColorTag:     s.ColorTag,
		Timezone:     s.Timezone,
		WorkingHours: s.WorkingHours,
		CreatedAt:    s.CreatedAt,
	}
}

type closureCreateRequest struct {
	Date      string  `json:"date" validate:"required"`
	Reason    *string `json:"reason" validate:"omitempty,max=250"`
	AllDay    *bool   `json:"all_day"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type closureResponse struct {
	ID        uuid.UUID `json:"id"`
	StaffID   uuid.UUID `json:"staff_id"`
	Date      string    `json:"date"`
	Reason    *string   `json:"reason,omitempty"`
	AllDay    bool      `json:"all_day"`
	StartTime *string   `json:"start_time,omitempty"`
	EndTime   *string   `json:"end_time,omitempty"`
}

func toClosureResponse(c *catalog.SpecialClosure) closureResponse {
	return closureResponse{
		ID:        c.ID,
		StaffID:   c.StaffID,
		Date:      c.Date,
		Reason:    c.Reason,
		AllDay:    c.AllDay,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
	}
}

type serviceCreateRequest struct {
	Name            string  `json:"name" validate:"required,min=1,max=120"`
	Description     *string `json:"description" validate:"omitempty,max=500"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0,lte=720"`
	PriceCHF        float64 `json:"price_chf" validate:"gte=0"`
	BufferMinutes   int     `json:"buffer_minutes" validate:"gte=0,lte=120"`
}

type serviceResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCHF        float64   `json:"price_chf"`
	BufferMinutes   int       `json:"buffer_minutes"`
	Active          bool      `json:"active"`
}

func toServiceResponse(s *catalog.Service) serviceResponse {
	return serviceResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		DurationMinutes: s.DurationMinutes,
		PriceCHF:        s.PriceCHF,
		BufferMinutes:   s.BufferMinutes,
		Active:          s.Active,
	}
}

type appointmentCreateRequest struct {
	ServiceID     uuid.UUID `json:"service_id" validate:"required"`
	StaffID       uuid.UUID `json:"staff_id" validate:"required"`
	StartAt       time.Time `json:"start_at" validate:"required"`
	CustomerName  string    `json:"customer_name" validate:"required,min=1,max=120"`
	CustomerEmail *string   `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone *string   `json:"customer_phone" validate:"omitempty,max=32"`
	Notes         *string   `json:"notes" validate:"omitempty,max=1000"`
}

type appointmentUpdateRequest struct {
	CustomerName  *string `json:"customer_name" validate:"omitempty,min=1,max=120"`
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone *string `json:"customer_phone" validate:"omitempty,max=32"`
	Notes         *string `json:"notes" validate:"omitempty,max=1000"`
	Status        *string `json:"status" validate:"omitempty,oneof=confirmed cancelled"`
}

type appointmentResponse struct {
	ID            uuid.UUID         `json:"id"`
	ServiceID     uuid.UUID         `json:"service_id"`
	StaffID       uuid.UUID         `json:"staff_id"`
	StartAt       time.Time         `json:"start_at"`
	EndAt         time.Time         `json:"end_at"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail *string           `json:"customer_email,omitempty"`
	CustomerPhone *string           `json:"customer_phone,omitempty"`
	Notes         *string           `json:"notes,omitempty"`
	Status        scheduling.Status `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}

func toAppointmentResponse(a *scheduling.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:            a.ID,
		ServiceID:     a.ServiceID,
		StaffID:       a.StaffID,
		StartAt:       a.StartAt,
		EndAt:         a.EndAt,
		CustomerName:  a.CustomerName,
		CustomerEmail: a.CustomerEmail,
		CustomerPhone: a.CustomerPhone,
		Notes:         a.Notes,
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
	}
}

type appointmentDetailResponse struct {
	appointmentResponse
	ServiceName     *string  `json:"service_name"`
	PriceCHF        *float64 `json:"price_chf"`
	DurationMinutes *int     `json:"duration_minutes"`
	StaffName       *string  `json:"staff_name"`
	StaffColor      *string  `json:"staff_color"`
}

func toDetailResponse(d scheduling.Detail) appointmentDetailResponse {
	return appointmentDetailResponse{
		appointmentResponse: toAppointmentResponse(&d.Appointment),
		ServiceName:         d.ServiceName,
		PriceCHF:            d.PriceCHF,
		DurationMinutes:     d.DurationMinutes,
		StaffName:           d.StaffName,
		StaffColor:          d.StaffColor,
	}
}

type publicSlotResponse struct {
	ID           uuid.UUID `json:"id"`
	StaffID      uuid.UUID `json:"staff_id"`
	StartAt      time.Time `json:"start_at"`
	EndAt        time.Time `json:"end_at"`
	ServiceName  string    `json:"service_name"`
	CustomerName string    `json:"customer_name"`
}

type publicInfoResponse struct {
	Name     string            `json:"name"`
	Slug     string            `json:"slug"`
	Locale   string            `json:"locale"`
	Currency string            `json:"currency"`
	Services []serviceResponse `json:"services"`
	Staff    []staffResponse   `json:"staff"`
}

type overviewResponse struct {
	AppointmentsToday     int                         `json:"appointments_today"`
	AppointmentsThisMonth int                         `json:"appointments_this_month"`
	ActiveStaff           int                         `json:"active_staff"`
	TotalCustomers        int                         `json:"total_customers"`
	NextAppointments      []appointmentDetailResponse `json:"next_appointments"`
	Plan                  plan.Type                   `json:"plan"`
	TrialEnd              *time.Time                  `json:"trial_end,omitempty"`
	TenantName            string                      `json:"tenant_name"`
	TenantSlug            string                      `json:"tenant_slug"`
}

type usageSnapshotResponse struct {
	Year             int       `json:"year"`
	Month            int       `json:"month"`
	StaffCount       int       `json:"staff_count"`
	AppointmentCount int       `json:"monthly_appointment_count"`
	RecordedAt       time.Time `json:"recorded_at"`
}

type checkoutRequest struct {
	PackageID  string `json:"package_id" validate:"required"`
	SuccessURL string `json:"success_url" validate:"required,url"`
	CancelURL  string `json:"cancel_url" validate:"required,url"`
}

type checkoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type paymentStatusResponse struct {
	SessionID     string  `json:"session_id"`
	PaymentStatus string  `json:"payment_status"`
	SessionStatus string  `json:"session_status"`
	PlanUpgradeTo *string `json:"plan_upgrade_to,omitempty"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
}
