package plan

import "time"

// Project is a read-only snapshot of a tracked project. The scheduler never
// mutates it; management commands own its lifecycle.
type Project struct {
	Name      string
	User      string
	Start     time.Time
	Deadline  *time.Time
	Provision *time.Duration
	Completed *time.Time
	Meta      bool
	Parent    *string
}

// Intent is a user's declared commitment to spend Amount of total time on a
// project. An intent whose Expires is in the past is inactive.
type Intent struct {
	User    string
	Project string
	Amount  time.Duration
	Expires *time.Time
}

// Avail says "between Start and End I can do at most Weekly of work per
// week". Windows for the same user may overlap; the most restrictive one
// governs any day they share.
type Avail struct {
	User   string
	Start  time.Time
	End    time.Time
	Weekly time.Duration
}

// Done is a completed or ongoing logged task.
type Done struct {
	User    string
	Project string
	Start   time.Time
	End     time.Time
}

// WorkLoad is one dated chunk of forecasted work, always falling within a
// single calendar week.
type WorkLoad struct {
	Start   time.Time
	User    string
	Project string
	Load    time.Duration
}

// ProjectLoads holds the chronological forecast for one project. Truncated
// is set when the allocator hit the forecast horizon with work left over.
type ProjectLoads struct {
	Project   string
	Loads     []WorkLoad
	Truncated bool
}

// UserPlan lists a user's committed projects in deadline order.
type UserPlan struct {
	User     string
	Projects []ProjectLoads
}

// WorkPlan is the full forecast, ordered by username.
type WorkPlan []UserPlan
