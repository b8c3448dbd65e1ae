package plan

import "time"

type Type string

const (
	Trial   Type = "trial"
	Starter Type = "starter"
	Pro     Type = "pro"
)

func (t Type) Valid() bool {
	switch t {
	case Trial, Starter, Pro:
		return true
	}
	return false
}

// Limits are the per-plan usage ceilings. Both are inclusive of the existing
// count: the Nth create where N equals the ceiling is rejected.
type Limits struct {
	MaxStaff                int
	MaxAppointmentsPerMonth int
}

var limits = map[Type]Limits{
	Trial:   {MaxStaff: 1, MaxAppointmentsPerMonth: 30},
	Starter: {MaxStaff: 2, MaxAppointmentsPerMonth: 200},
	Pro:     {MaxStaff: 3, MaxAppointmentsPerMonth: 400},
}

// LimitsFor returns the ceilings for a plan. Unknown plans get trial limits.
func LimitsFor(t Type) Limits {
	if l, ok := limits[t]; ok {
		return l
	}
	return limits[Trial]
}

// Package is a purchasable plan tier. Amounts are defined server-side only
// and never taken from client input.
type Package struct {
	ID       string
	Name     string
	Amount   float64
	Currency string
	Plan     Type
}

var packages = map[string]Package{
	"starter": {ID: "starter", Name: "Starter Plan", Amount: 29.00, Currency: "CHF", Plan: Starter},
	"pro":     {ID: "pro", Name: "Pro Plan", Amount: 59.00, Currency: "CHF", Plan: Pro},
}

func PackageByID(id string) (Package, bool) {
	p, ok := packages[id]
	return p, ok
}

// rank orders plans for "already on this tier or higher" checks.
func rank(t Type) int {
	switch t {
	case Starter:
		return 1
	case Pro:
		return 2
	default:
		return 0
	}
}

// AtLeast reports whether plan a is the same tier as b or higher.
func AtLeast(a, b Type) bool {
	return rank(a) >= rank(b)
}

// MonthWindow returns the current calendar month as a half-open UTC interval
// [first instant of the month, first instant of the next month).
func MonthWindow(now time.Time) (start, end time.Time) {
	now = now.UTC()
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}
