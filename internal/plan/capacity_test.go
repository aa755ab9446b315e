package plan

import (
	"testing"
	"time"
)

func avail(user string, from, to time.Time, weekly time.Duration) Avail {
	return Avail{User: user, Start: from, End: to, Weekly: weekly}
}

func TestDailyCapacityMinimumAcrossOverlappingWindows(t *testing.T) {
	day := date(2024, time.March, 4)
	avails := []Avail{
		avail("ada", date(2024, time.March, 1), date(2024, time.April, 1), 20*time.Hour),
		avail("ada", date(2024, time.March, 1), date(2024, time.April, 1), 10*time.Hour),
	}

	if got := dailyCapacity(day, avails); got != 2*time.Hour {
		t.Fatalf("dailyCapacity = %s, want 2h (min window / 5)", got)
	}
}

func TestDailyCapacityNoWindow(t *testing.T) {
	day := date(2024, time.March, 4)
	avails := []Avail{
		avail("ada", date(2024, time.May, 1), date(2024, time.June, 1), 20*time.Hour),
	}
	if got := dailyCapacity(day, avails); got != 0 {
		t.Fatalf("dailyCapacity outside any window = %s, want 0", got)
	}
}

func TestDailyCapacityOverlapUsesWorkDayWindow(t *testing.T) {
	day := date(2024, time.March, 4)

	// Ends at 09:00, before the 10:00 work-day start: no overlap.
	ended := []Avail{
		avail("ada", date(2024, time.February, 1), time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC), 20*time.Hour),
	}
	if got := dailyCapacity(day, ended); got != 0 {
		t.Fatalf("window ending before work hours contributed %s, want 0", got)
	}

	// Starts at 17:00, inside the 10:00-18:00 window: counts.
	late := []Avail{
		avail("ada", time.Date(2024, time.March, 4, 17, 0, 0, 0, time.UTC), date(2024, time.April, 1), 20*time.Hour),
	}
	if got := dailyCapacity(day, late); got != 4*time.Hour {
		t.Fatalf("window starting within work hours contributed %s, want 4h", got)
	}
}

func TestWeeklyCapacityPartialWeek(t *testing.T) {
	avails := []Avail{
		avail("ada", date(2024, time.March, 1), date(2024, time.April, 1), 20*time.Hour),
	}

	// Wednesday: three working days left at 4h each.
	wed := date(2024, time.March, 6)
	if got := weeklyCapacity(wed, avails); got != 12*time.Hour {
		t.Fatalf("weeklyCapacity from Wednesday = %s, want 12h", got)
	}

	// Saturday: no working days left.
	sat := date(2024, time.March, 9)
	if got := weeklyCapacity(sat, avails); got != 0 {
		t.Fatalf("weeklyCapacity from Saturday = %s, want 0", got)
	}
}

func TestWeeklyCapacityFullWeek(t *testing.T) {
	avails := []Avail{
		avail("ada", date(2024, time.March, 1), date(2024, time.April, 1), 20*time.Hour),
	}
	mon := date(2024, time.March, 4)
	if got := weeklyCapacity(mon, avails); got != 20*time.Hour {
		t.Fatalf("weeklyCapacity from Monday = %s, want 20h", got)
	}
}
