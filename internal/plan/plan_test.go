package plan

import (
	"testing"
	"time"
)

func tp(t time.Time) *time.Time { return &t }

func project(name, user string, start time.Time, deadline *time.Time) Project {
	return Project{Name: name, User: user, Start: start, Deadline: deadline}
}

func userPlan(t *testing.T, p WorkPlan, user string) UserPlan {
	t.Helper()
	for _, up := range p {
		if up.User == user {
			return up
		}
	}
	t.Fatalf("no plan for user %q", user)
	return UserPlan{}
}

func projectLoads(t *testing.T, up UserPlan, name string) ProjectLoads {
	t.Helper()
	for _, pl := range up.Projects {
		if pl.Project == name {
			return pl
		}
	}
	t.Fatalf("no loads for project %q", name)
	return ProjectLoads{}
}

// The reference scenario: 20h/week availability for 8 weeks, a 30h intent,
// no prior work, starting on a Monday. Week one takes the full 20h, week two
// the remaining 10h, and the loop stops there.
func TestPlanAllSplitsIntentAcrossWeeks(t *testing.T) {
	now := date(2024, time.March, 4) // Monday
	projects := []Project{project("atlas", "ada", date(2024, time.February, 1), nil)}
	intents := []Intent{{User: "ada", Project: "atlas", Amount: 30 * time.Hour}}
	avails := []Avail{avail("ada", now, now.AddDate(0, 0, 56), 20*time.Hour)}

	p := PlanAll(projects, intents, avails, nil, now)

	pl := projectLoads(t, userPlan(t, p, "ada"), "atlas")
	if len(pl.Loads) != 2 {
		t.Fatalf("got %d loads, want 2: %+v", len(pl.Loads), pl.Loads)
	}
	if !pl.Loads[0].Start.Equal(now) || pl.Loads[0].Load != 20*time.Hour {
		t.Errorf("week 1 = %s for %s, want %s for 20h",
			pl.Loads[0].Load, pl.Loads[0].Start.Format("2006-01-02"), now.Format("2006-01-02"))
	}
	nextMon := NextMonday(now)
	if !pl.Loads[1].Start.Equal(nextMon) || pl.Loads[1].Load != 10*time.Hour {
		t.Errorf("week 2 = %s for %s, want %s for 10h",
			pl.Loads[1].Load, pl.Loads[1].Start.Format("2006-01-02"), nextMon.Format("2006-01-02"))
	}
	if pl.Truncated {
		t.Error("forecast marked truncated")
	}
}

// Emitted loads must add up to the outstanding amount, within the spare
// threshold, and never precede now.
func TestPlanAllConservesRemainingWork(t *testing.T) {
	now := date(2024, time.March, 6) // Wednesday, partial first week
	projects := []Project{project("atlas", "ada", date(2024, time.February, 1), nil)}
	intents := []Intent{{User: "ada", Project: "atlas", Amount: 45 * time.Hour}}
	avails := []Avail{avail("ada", date(2024, time.March, 1), date(2024, time.June, 1), 15*time.Hour)}
	dones := []Done{{User: "ada", Project: "atlas", Start: now.Add(-4 * time.Hour), End: now.Add(-1 * time.Hour)}}

	p := PlanAll(projects, intents, avails, dones, now)

	pl := projectLoads(t, userPlan(t, p, "ada"), "atlas")
	var total time.Duration
	prev := now
	for _, l := range pl.Loads {
		total += l.Load
		if l.Start.Before(now) {
			t.Errorf("load at %s precedes now", l.Start.Format("2006-01-02"))
		}
		if l.Start.Before(prev) {
			t.Errorf("load at %s out of order", l.Start.Format("2006-01-02"))
		}
		prev = l.Start
	}

	remaining := 45*time.Hour - 3*time.Hour
	if diff := remaining - total; diff < 0 || diff > SpareThreshold {
		t.Fatalf("loads total %s, want %s within %s", total, remaining, SpareThreshold)
	}
}

func TestPlanAllDeadlineOrderAndSharedCursor(t *testing.T) {
	now := date(2024, time.March, 4) // Monday
	projects := []Project{
		project("later", "ada", date(2024, time.January, 2), tp(date(2024, time.June, 1))),
		project("soon", "ada", date(2024, time.January, 1), tp(date(2024, time.April, 1))),
		project("someday", "ada", date(2024, time.January, 3), nil),
	}
	intents := []Intent{
		{User: "ada", Project: "soon", Amount: 10 * time.Hour},
		{User: "ada", Project: "later", Amount: 10 * time.Hour},
		{User: "ada", Project: "someday", Amount: 5 * time.Hour},
	}
	avails := []Avail{avail("ada", now, now.AddDate(0, 0, 90), 10*time.Hour)}

	p := PlanAll(projects, intents, avails, nil, now)
	up := userPlan(t, p, "ada")

	want := []string{"soon", "later", "someday"}
	if len(up.Projects) != len(want) {
		t.Fatalf("got %d projects, want %d", len(up.Projects), len(want))
	}
	for i, name := range want {
		if up.Projects[i].Project != name {
			t.Errorf("project[%d] = %q, want %q", i, up.Projects[i].Project, name)
		}
	}

	// "soon" consumes the first week entirely; "later" must not get a share
	// of it.
	soon := up.Projects[0]
	later := up.Projects[1]
	if len(soon.Loads) == 0 || len(later.Loads) == 0 {
		t.Fatalf("expected loads for both projects: %+v / %+v", soon, later)
	}
	if !soon.Loads[0].Start.Equal(now) {
		t.Errorf("soon starts %s, want %s", soon.Loads[0].Start.Format("2006-01-02"), now.Format("2006-01-02"))
	}
	if !later.Loads[0].Start.Equal(NextMonday(now)) {
		t.Errorf("later starts %s, want %s",
			later.Loads[0].Start.Format("2006-01-02"), NextMonday(now).Format("2006-01-02"))
	}
}

func TestPlanAllSatisfiedIntentYieldsNoLoads(t *testing.T) {
	now := date(2024, time.March, 4)
	projects := []Project{project("atlas", "ada", date(2024, time.February, 1), nil)}
	intents := []Intent{{User: "ada", Project: "atlas", Amount: 5 * time.Hour}}
	dones := []Done{{User: "ada", Project: "atlas", Start: now.Add(-8 * time.Hour), End: now.Add(-2 * time.Hour)}}

	p := PlanAll(projects, intents, nil, dones, now)

	pl := projectLoads(t, userPlan(t, p, "ada"), "atlas")
	if len(pl.Loads) != 0 {
		t.Fatalf("satisfied intent produced %d loads", len(pl.Loads))
	}
}

func TestPlanAllSkipsCompletedProjectsAndExpiredIntents(t *testing.T) {
	now := date(2024, time.March, 4)
	projects := []Project{
		project("atlas", "ada", date(2024, time.February, 1), nil),
		{Name: "shipped", User: "ada", Start: date(2024, time.January, 1), Completed: tp(date(2024, time.February, 20))},
		project("stale", "ada", date(2024, time.January, 15), nil),
	}
	intents := []Intent{
		{User: "ada", Project: "atlas", Amount: 5 * time.Hour},
		{User: "ada", Project: "shipped", Amount: 5 * time.Hour},
		{User: "ada", Project: "stale", Amount: 5 * time.Hour, Expires: tp(date(2024, time.February, 1))},
		{User: "bob", Project: "atlas", Amount: 5 * time.Hour, Expires: tp(date(2024, time.January, 1))},
	}
	avails := []Avail{avail("ada", now, now.AddDate(0, 0, 30), 20*time.Hour)}

	p := PlanAll(projects, intents, avails, nil, now)

	if len(p) != 1 {
		t.Fatalf("got %d users, want only ada (bob's intent expired): %+v", len(p), p)
	}
	up := userPlan(t, p, "ada")
	if len(up.Projects) != 1 || up.Projects[0].Project != "atlas" {
		t.Fatalf("got projects %+v, want only atlas", up.Projects)
	}
}

// A nonzero intent with no availability at all must terminate at the
// forecast horizon instead of hanging.
func TestPlanAllBoundedWithoutAvailability(t *testing.T) {
	now := date(2024, time.March, 4)
	projects := []Project{project("atlas", "ada", date(2024, time.February, 1), nil)}
	intents := []Intent{{User: "ada", Project: "atlas", Amount: 40 * time.Hour}}

	done := make(chan WorkPlan, 1)
	go func() {
		done <- PlanAll(projects, intents, nil, nil, now)
	}()

	var p WorkPlan
	select {
	case p = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("PlanAll did not terminate with zero availability")
	}

	pl := projectLoads(t, userPlan(t, p, "ada"), "atlas")
	if !pl.Truncated {
		t.Error("forecast not marked truncated")
	}
	if len(pl.Loads) != 0 {
		t.Errorf("zero-capacity weeks emitted %d loads", len(pl.Loads))
	}
}

func TestPlanAllDeterministicUserOrder(t *testing.T) {
	now := date(2024, time.March, 4)
	projects := []Project{project("atlas", "ada", date(2024, time.February, 1), nil)}
	intents := []Intent{
		{User: "zoe", Project: "atlas", Amount: 2 * time.Hour},
		{User: "ada", Project: "atlas", Amount: 2 * time.Hour},
		{User: "bob", Project: "atlas", Amount: 2 * time.Hour},
	}

	p := PlanAll(projects, intents, nil, nil, now)
	want := []string{"ada", "bob", "zoe"}
	if len(p) != len(want) {
		t.Fatalf("got %d users, want %d", len(p), len(want))
	}
	for i, u := range want {
		if p[i].User != u {
			t.Errorf("user[%d] = %q, want %q", i, p[i].User, u)
		}
	}
}

func TestFindLoads(t *testing.T) {
	mon := date(2024, time.March, 4)
	p := WorkPlan{
		{User: "ada", Projects: []ProjectLoads{{
			Project: "atlas",
			Loads: []WorkLoad{
				{Start: mon, User: "ada", Project: "atlas", Load: 10 * time.Hour},
				{Start: mon.AddDate(0, 0, 7), User: "ada", Project: "atlas", Load: 8 * time.Hour},
				{Start: mon.AddDate(0, 0, 14), User: "ada", Project: "atlas", Load: 4 * time.Hour},
			},
		}}},
		{User: "bob", Projects: []ProjectLoads{{
			Project: "briefs",
			Loads: []WorkLoad{
				{Start: mon.AddDate(0, 0, 7), User: "bob", Project: "briefs", Load: 6 * time.Hour},
			},
		}}},
	}

	got := FindLoads(p, mon.AddDate(0, 0, 7), mon.AddDate(0, 0, 14))
	if len(got) != 2 {
		t.Fatalf("got %d loads, want 2", len(got))
	}
	for _, l := range got {
		if l.Start.Before(mon.AddDate(0, 0, 7)) || !l.Start.Before(mon.AddDate(0, 0, 14)) {
			t.Errorf("load at %s outside window", l.Start.Format("2006-01-02"))
		}
	}

	// Window start is inclusive, end exclusive.
	if got := FindLoads(p, mon, mon); len(got) != 0 {
		t.Fatalf("empty window returned %d loads", len(got))
	}
	if got := FindLoads(p, mon, mon.AddDate(0, 0, 1)); len(got) != 1 {
		t.Fatalf("one-day window returned %d loads, want 1", len(got))
	}
}
