package aggregate

import (
	"testing"
	"time"
)

func TestCalendarMonth(t *testing.T) {
	now := time.Date(2025, 2, 14, 15, 30, 0, 0, time.UTC)
	w := CalendarMonth(now)

	wantStart := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	if !w.Since.Equal(wantStart) {
		t.Errorf("Since = %v, want %v", w.Since, wantStart)
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"first instant", wantStart, true},
		{"last day evening", time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC), true},
		{"previous month", time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC), false},
		{"next month", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestRollingDays(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

	w := RollingDays(now, DashboardExpenseDays)
	if want := now.Add(-30 * 24 * time.Hour); !w.Since.Equal(want) {
		t.Errorf("Since = %v, want %v", w.Since, want)
	}
	if !w.Contains(now.Add(time.Hour)) {
		t.Error("rolling window should be open-ended")
	}
	if w.Contains(now.Add(-31 * 24 * time.Hour)) {
		t.Error("rolling window should exclude dates older than 30 days")
	}

	income := RollingDays(now, DashboardIncomeDays)
	if !income.Contains(now.Add(-45 * 24 * time.Hour)) {
		t.Error("60 day window should include a 45 day old record")
	}
}
