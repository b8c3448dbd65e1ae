package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// Appointment occupies the half-open interval [StartAt, EndAt) for one staff
// member. EndAt is derived at booking time from the service's duration plus
// buffer. Service and staff ids are soft references resolved at read time.
type Appointment struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	ServiceID     uuid.UUID
	StaffID       uuid.UUID
	StartAt       time.Time
	EndAt         time.Time
	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string
	Notes         *string
	Status        Status
	CreatedAt     time.Time
}

// Detail is an appointment hydrated with display fields from its soft
// references. The pointers stay nil when a reference dangles.
type Detail struct {
	Appointment
	ServiceName     *string
	PriceCHF        *float64
	DurationMinutes *int
	StaffName       *string
	StaffColor      *string
}

// PublicSlot is the shape exposed to the unauthenticated booking page: just
// enough to render taken slots, no customer contact details.
type PublicSlot struct {
	ID           uuid.UUID
	StaffID      uuid.UUID
	StartAt      time.Time
	EndAt        time.Time
	ServiceName  string
	CustomerName string
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
