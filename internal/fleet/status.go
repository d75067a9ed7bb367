// Package fleet computes autoland compliance status per aircraft from its
// most recent landing.
package fleet

import (
	"math"
	"time"
)

// Status is an aircraft's compliance state relative to its next required
// autoland.
type Status string

const (
	StatusOnTime  Status = "ON_TIME"
	StatusDueSoon Status = "DUE_SOON"
	StatusOverdue Status = "OVERDUE"
)

// Assessment is the computed compliance picture for one aircraft.
type Assessment struct {
	LastAutoland  time.Time `json:"last_autoland_date"`
	NextRequired  time.Time `json:"next_required_date"`
	DaysRemaining int       `json:"days_remaining"`
	Status        Status    `json:"status"`
}

// Tracker evaluates compliance using a fixed cycle length and due-soon
// threshold. Pure calculation, safe for concurrent use.
type Tracker struct {
	CycleDays   int
	DueSoonDays int
}

// NewTracker creates a tracker with the given cycle and threshold in days.
func NewTracker(cycleDays, dueSoonDays int) Tracker {
	return Tracker{CycleDays: cycleDays, DueSoonDays: dueSoonDays}
}

// Evaluate computes the assessment for an aircraft whose latest autoland
// happened at lastAutoland, as of now.
func (t Tracker) Evaluate(lastAutoland, now time.Time) Assessment {
	next := lastAutoland.AddDate(0, 0, t.CycleDays)
	remaining := daysUntil(next, now)

	status := StatusOnTime
	switch {
	case remaining < 0:
		status = StatusOverdue
	case remaining <= t.DueSoonDays:
		status = StatusDueSoon
	}

	return Assessment{
		LastAutoland:  lastAutoland,
		NextRequired:  next,
		DaysRemaining: remaining,
		Status:        status,
	}
}

// daysUntil counts whole days from now until target, rounding up so a
// deadline later today still counts as one remaining day.
func daysUntil(target, now time.Time) int {
	diff := target.Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}
