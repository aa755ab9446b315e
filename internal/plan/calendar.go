package plan

import "time"

// Nominal work-day window. Availability windows are tested against these
// hours, not the full 24. Tunable, not semantically load-bearing.
const (
	WorkDayStartHour = 10
	WorkDayEndHour   = 18
)

const workingDaysPerWeek = 5

// WorkingDaysRemaining returns how many working days are left in t's week,
// counting t itself: Monday 5 down to Friday 1, weekends 0.
func WorkingDaysRemaining(t time.Time) int {
	switch t.Weekday() {
	case time.Monday:
		return 5
	case time.Tuesday:
		return 4
	case time.Wednesday:
		return 3
	case time.Thursday:
		return 2
	case time.Friday:
		return 1
	default:
		return 0
	}
}

// NextMonday returns the Monday of the week after t's, between 1 and 7 days
// forward. A Monday input yields the Monday 7 days later, never t itself.
// The time of day is preserved.
func NextMonday(t time.Time) time.Time {
	var days int
	switch t.Weekday() {
	case time.Monday:
		days = 7
	case time.Tuesday:
		days = 6
	case time.Wednesday:
		days = 5
	case time.Thursday:
		days = 4
	case time.Friday:
		days = 3
	case time.Saturday:
		days = 2
	default: // Sunday
		days = 1
	}
	return t.AddDate(0, 0, days)
}

// workDay returns the nominal work window of t's calendar day in t's
// location.
func workDay(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, WorkDayStartHour, 0, 0, 0, t.Location())
	end := time.Date(y, m, d, WorkDayEndHour, 0, 0, 0, t.Location())
	return start, end
}
