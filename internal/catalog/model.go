package catalog

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultColorTag = "#3B82F6"
	DefaultTimezone = "Europe/Zurich"
)

// WorkingDay is one weekday entry of a staff member's recurring schedule.
// Times are wall-clock strings like "09:00" interpreted in the staff
// member's timezone; both are nil on non-working days.
type WorkingDay struct {
	IsWorking bool    `json:"is_working"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type WeeklySchedule struct {
	Monday    WorkingDay `json:"monday"`
	Tuesday   WorkingDay `json:"tuesday"`
	Wednesday WorkingDay `json:"wednesday"`
	Thursday  WorkingDay `json:"thursday"`
	Friday    WorkingDay `json:"friday"`
	Saturday  WorkingDay `json:"saturday"`
	Sunday    WorkingDay `json:"sunday"`
}

// DefaultWeeklySchedule is Mon-Fri 09:00-17:00, weekend off.
func DefaultWeeklySchedule() WeeklySchedule {
	start, end := "09:00", "17:00"
	working := WorkingDay{IsWorking: true, StartTime: &start, EndTime: &end}
	off := WorkingDay{IsWorking: false}

	return WeeklySchedule{
		Monday:    working,
		Tuesday:   working,
		Wednesday: working,
		Thursday:  working,
		Friday:    working,
		Saturday:  off,
		Sunday:    off,
	}
}

type Staff struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Name         string
	Active       bool
	ColorTag     string
	Timezone     string
	WorkingHours WeeklySchedule
	CreatedAt    time.Time
}

// SpecialClosure removes availability on a single calendar date on top of
// the weekly schedule. All-day by default; partial-day closures carry
// wall-clock start/end times.
type SpecialClosure struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	StaffID   uuid.UUID
	Date      string // YYYY-MM-DD
	Reason    *string
	AllDay    bool
	StartTime *string
	EndTime   *string
	CreatedAt time.Time
}

type Service struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	Name            string
	Description     *string
	DurationMinutes int
	PriceCHF        float64
	BufferMinutes   int
	Active          bool
	CreatedAt       time.Time
}

// SlotLength is the interval an appointment for this service occupies,
// duration plus the trailing buffer.
func (s *Service) SlotLength() time.Duration {
	return time.Duration(s.DurationMinutes+s.BufferMinutes) * time.Minute
}
