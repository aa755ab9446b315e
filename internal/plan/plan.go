// Package plan computes a week-by-week forecast of when each user's
// remaining committed work will happen, from immutable snapshots of
// projects, intents, availability windows and logged tasks. It is a pure
// function of its inputs plus an explicit "now": no I/O, no clock reads, no
// shared state, so concurrent calls on independent snapshots are safe and
// identical inputs always reproduce the same plan.
package plan

import (
	"sort"
	"time"
)

// SpareThreshold is the residual below which remaining work counts as fully
// scheduled. Tunable, not semantically load-bearing.
const SpareThreshold = time.Hour

// MaxForecastWeeks bounds how many weeks the allocator will simulate for a
// single project. Without it a user with a standing intent but no
// availability would keep the loop spinning forever; hitting the bound marks
// the project's forecast as truncated instead.
const MaxForecastWeeks = 104

// lessByDeadline orders projects soonest-deadline first, undated projects
// last, undated ties by start date.
func lessByDeadline(a, b Project) bool {
	switch {
	case a.Deadline == nil && b.Deadline == nil:
		return a.Start.Before(b.Start)
	case a.Deadline == nil:
		return false
	case b.Deadline == nil:
		return true
	default:
		return a.Deadline.Before(*b.Deadline)
	}
}

func sumDone(user, project string, dones []Done) time.Duration {
	var total time.Duration
	for _, d := range dones {
		if d.User != user || d.Project != project {
			continue
		}
		if dur := d.End.Sub(d.Start); dur > 0 {
			total += dur
		}
	}
	return total
}

func findIntent(user, project string, intents []Intent, now time.Time) *Intent {
	for i := range intents {
		in := &intents[i]
		if in.User != user || in.Project != project {
			continue
		}
		if in.Expires != nil && !in.Expires.After(now) {
			continue
		}
		return in
	}
	return nil
}

// allocate consumes remaining against weekly capacity starting at the cursor
// dt, emitting one WorkLoad per week until the shortfall drops to
// SpareThreshold or less. Full weeks consume their entire capacity and move
// the cursor to the next Monday; the terminating partial week advances the
// cursor proportionally into the week, so the next project picks up where
// this one left off. Weeks with zero capacity advance the cursor without
// emitting anything. Returns the loads, the advanced cursor, and whether the
// MaxForecastWeeks horizon cut the allocation short.
func allocate(user, project string, remaining time.Duration, avails []Avail, dt time.Time) ([]WorkLoad, time.Time, bool) {
	var loads []WorkLoad
	for weeks := 0; remaining > SpareThreshold; weeks++ {
		if weeks >= MaxForecastWeeks {
			return loads, dt, true
		}
		weekCap := weeklyCapacity(dt, avails)
		if weekCap > remaining {
			loads = append(loads, WorkLoad{Start: dt, User: user, Project: project, Load: remaining})
			days := int64(remaining) * int64(WorkingDaysRemaining(dt)) / int64(weekCap)
			dt = dt.AddDate(0, 0, int(days))
			break
		}
		if weekCap > 0 {
			loads = append(loads, WorkLoad{Start: dt, User: user, Project: project, Load: weekCap})
		}
		dt = NextMonday(dt)
		remaining -= weekCap
	}
	return loads, dt, false
}

// PlanAll forecasts all remaining committed work. Completed projects are
// dropped, the rest are ordered by deadline, and every user with an active
// intent gets an allocation pass over that ordering: a single cursor per
// user walks forward through the calendar, so deadline-nearest work consumes
// weekly capacity before later-deadline or undated work gets a share of the
// same week. Usernames are sorted so the plan is deterministic.
func PlanAll(projects []Project, intents []Intent, avails []Avail, dones []Done, now time.Time) WorkPlan {
	open := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Completed == nil {
			open = append(open, p)
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return lessByDeadline(open[i], open[j]) })

	seen := make(map[string]bool)
	var users []string
	for _, in := range intents {
		if in.Expires != nil && !in.Expires.After(now) {
			continue
		}
		if !seen[in.User] {
			seen[in.User] = true
			users = append(users, in.User)
		}
	}
	sort.Strings(users)

	result := make(WorkPlan, 0, len(users))
	for _, user := range users {
		var userAvails []Avail
		for _, a := range avails {
			if a.User == user {
				userAvails = append(userAvails, a)
			}
		}

		dt := now
		var perProject []ProjectLoads
		for _, p := range open {
			intent := findIntent(user, p.Name, intents, now)
			if intent == nil {
				continue
			}
			pl := ProjectLoads{Project: p.Name}
			if done := sumDone(user, p.Name, dones); done < intent.Amount {
				pl.Loads, dt, pl.Truncated = allocate(user, p.Name, intent.Amount-done, userAvails, dt)
			}
			perProject = append(perProject, pl)
		}
		result = append(result, UserPlan{User: user, Projects: perProject})
	}
	return result
}

// FindLoads returns pointers to every WorkLoad in the plan whose start falls
// in [start, end). Rendering uses it to bucket the plan into calendar weeks;
// the plan itself is not touched.
func FindLoads(p WorkPlan, start, end time.Time) []*WorkLoad {
	var out []*WorkLoad
	for i := range p {
		for j := range p[i].Projects {
			loads := p[i].Projects[j].Loads
			for k := range loads {
				if !loads[k].Start.Before(start) && loads[k].Start.Before(end) {
					out = append(out, &loads[k])
				}
			}
		}
	}
	return out
}
