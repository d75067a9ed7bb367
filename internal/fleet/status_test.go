package fleet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tracker := NewTracker(30, 7)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		lastAutoland  time.Time
		wantStatus    Status
		wantRemaining int
	}{
		{
			name:          "fresh autoland",
			lastAutoland:  now.AddDate(0, 0, -1),
			wantStatus:    StatusOnTime,
			wantRemaining: 29,
		},
		{
			name:          "just inside due-soon window",
			lastAutoland:  now.AddDate(0, 0, -23),
			wantStatus:    StatusDueSoon,
			wantRemaining: 7,
		},
		{
			name:          "last compliant day",
			lastAutoland:  now.AddDate(0, 0, -29),
			wantStatus:    StatusDueSoon,
			wantRemaining: 1,
		},
		{
			name:          "overdue",
			lastAutoland:  now.AddDate(0, 0, -31),
			wantStatus:    StatusOverdue,
			wantRemaining: -1,
		},
		{
			name:          "long overdue",
			lastAutoland:  now.AddDate(0, 0, -90),
			wantStatus:    StatusOverdue,
			wantRemaining: -60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tracker.Evaluate(tt.lastAutoland, now)
			assert.Equal(t, tt.wantStatus, a.Status)
			assert.Equal(t, tt.wantRemaining, a.DaysRemaining)
			assert.Equal(t, tt.lastAutoland.AddDate(0, 0, 30), a.NextRequired)
			assert.Equal(t, tt.lastAutoland, a.LastAutoland)
		})
	}
}

// A deadline later today still counts as one remaining day.
func TestEvaluateRoundsUpPartialDays(t *testing.T) {
	tracker := NewTracker(30, 7)

	lastAutoland := time.Date(2024, 2, 14, 18, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	a := tracker.Evaluate(lastAutoland, now)
	assert.Equal(t, 1, a.DaysRemaining)
	assert.Equal(t, StatusDueSoon, a.Status)
}

func TestEvaluateExactDeadline(t *testing.T) {
	tracker := NewTracker(30, 7)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	lastAutoland := now.AddDate(0, 0, -30)

	a := tracker.Evaluate(lastAutoland, now)
	assert.Equal(t, 0, a.DaysRemaining)
	assert.Equal(t, StatusDueSoon, a.Status)
}
