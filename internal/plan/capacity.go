package plan

import "time"

// dailyCapacity returns the work capacity for the day containing t. Each
// availability window overlapping the day's work window contributes an even
// fifth of its weekly cap; the minimum across them governs. A day no window
// covers has zero capacity.
func dailyCapacity(t time.Time, avails []Avail) time.Duration {
	start, end := workDay(t)
	var capacity time.Duration
	found := false
	for _, a := range avails {
		if !a.Start.Before(end) || !a.End.After(start) {
			continue
		}
		c := a.Weekly / workingDaysPerWeek
		if !found || c < capacity {
			capacity = c
			found = true
		}
	}
	return capacity
}

// weeklyCapacity sums dailyCapacity over the working days left in the week
// starting at t. A mid-week start yields a partial week; a weekend start
// yields zero.
func weeklyCapacity(t time.Time, avails []Avail) time.Duration {
	var total time.Duration
	for i := 0; i < WorkingDaysRemaining(t); i++ {
		total += dailyCapacity(t.AddDate(0, 0, i), avails)
	}
	return total
}
