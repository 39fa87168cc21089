package aggregate

import "time"

// Window is a date range used to select transactions. Both bounds are
// inclusive; a zero Until leaves the window open-ended.
type Window struct {
	Since time.Time
	Until time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Since) {
		return false
	}
	if !w.Until.IsZero() && t.After(w.Until) {
		return false
	}
	return true
}

// CalendarMonth covers the month containing now, from its first instant to its
// last, in now's location. The AI suggestion and chat views use it.
func CalendarMonth(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return Window{Since: start, Until: end}
}

// RollingDays covers the last days*24h up to now and beyond. The dashboard
// uses 30 days for expenses and 60 days for income.
func RollingDays(now time.Time, days int) Window {
	return Window{Since: now.Add(-time.Duration(days) * 24 * time.Hour)}
}

const (
	DashboardExpenseDays = 30
	DashboardIncomeDays  = 60
)
