package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimitsFor(t *testing.T) {
	assert.Equal(t, Limits{MaxStaff: 1, MaxAppointmentsPerMonth: 30}, LimitsFor(Trial))
	assert.Equal(t, Limits{MaxStaff: 2, MaxAppointmentsPerMonth: 200}, LimitsFor(Starter))
	assert.Equal(t, Limits{MaxStaff: 3, MaxAppointmentsPerMonth: 400}, LimitsFor(Pro))

	// unknown plans fall back to the most restrictive tier
	assert.Equal(t, LimitsFor(Trial), LimitsFor(Type("enterprise")))
}

func TestPackageByID(t *testing.T) {
	p, ok := PackageByID("starter")
	assert.True(t, ok)
	assert.Equal(t, 29.00, p.Amount)
	assert.Equal(t, "CHF", p.Currency)
	assert.Equal(t, Starter, p.Plan)

	p, ok = PackageByID("pro")
	assert.True(t, ok)
	assert.Equal(t, 59.00, p.Amount)
	assert.Equal(t, Pro, p.Plan)

	_, ok = PackageByID("trial")
	assert.False(t, ok)
}

func TestAtLeast(t *testing.T) {
	assert.True(t, AtLeast(Pro, Starter))
	assert.True(t, AtLeast(Starter, Starter))
	assert.True(t, AtLeast(Trial, Trial))
	assert.False(t, AtLeast(Trial, Starter))
	assert.False(t, AtLeast(Starter, Pro))
}

func TestMonthWindow(t *testing.T) {
	now := time.Date(2025, time.September, 17, 13, 45, 12, 0, time.UTC)
	start, end := MonthWindow(now)
	assert.Equal(t, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), end)

	// December rolls into the next year
	start, end = MonthWindow(time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), end)

	// non-UTC input is normalized
	zurich := time.FixedZone("CET", 3600)
	start, _ = MonthWindow(time.Date(2025, time.March, 1, 0, 30, 0, 0, zurich))
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), start)
}
