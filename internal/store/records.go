package store

import (
	"database/sql"
	"fmt"
	"time"

	"tally/internal/plan"
)

// Snapshot loads the four entity sets the scheduler consumes. Everything is
// fetched in one shot so a forecast always sees a consistent view.
func (db *DB) Snapshot() ([]plan.Project, []plan.Intent, []plan.Avail, []plan.Done, error) {
	projects, err := db.Projects()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	intents, err := db.Intents()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	avails, err := db.Avails()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	tasks, err := db.Tasks()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	dones := make([]plan.Done, len(tasks))
	for i, t := range tasks {
		dones[i] = plan.Done{User: t.User, Project: t.Project, Start: t.Start, End: t.End}
	}
	return projects, intents, avails, dones, nil
}

func (db *DB) Projects() ([]plan.Project, error) {
	rows, err := db.Query(
		`SELECT name, username, start_time, deadline, provision_seconds, completed, meta, parent
		 FROM projects ORDER BY start_time ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []plan.Project
	for rows.Next() {
		var p plan.Project
		var startStr string
		var deadline, completed, parent sql.NullString
		var provision sql.NullInt64
		var meta int

		if err := rows.Scan(&p.Name, &p.User, &startStr, &deadline, &provision, &completed, &meta, &parent); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}

		p.Start = parseTime(startStr)
		p.Deadline = parseTimePtr(deadline)
		p.Completed = parseTimePtr(completed)
		p.Meta = meta != 0
		if provision.Valid {
			d := time.Duration(provision.Int64) * time.Second
			p.Provision = &d
		}
		if parent.Valid {
			s := parent.String
			p.Parent = &s
		}

		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (db *DB) Intents() ([]plan.Intent, error) {
	rows, err := db.Query(
		`SELECT username, project, amount_seconds, expires FROM intents ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying intents: %w", err)
	}
	defer rows.Close()

	var intents []plan.Intent
	for rows.Next() {
		var in plan.Intent
		var secs int64
		var expires sql.NullString

		if err := rows.Scan(&in.User, &in.Project, &secs, &expires); err != nil {
			return nil, fmt.Errorf("scanning intent: %w", err)
		}
		in.Amount = time.Duration(secs) * time.Second
		in.Expires = parseTimePtr(expires)

		intents = append(intents, in)
	}
	return intents, rows.Err()
}

func (db *DB) Avails() ([]plan.Avail, error) {
	rows, err := db.Query(
		`SELECT username, start_time, end_time, weekly_seconds FROM avails ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying avails: %w", err)
	}
	defer rows.Close()

	var avails []plan.Avail
	for rows.Next() {
		var a plan.Avail
		var startStr, endStr string
		var secs int64

		if err := rows.Scan(&a.User, &startStr, &endStr, &secs); err != nil {
			return nil, fmt.Errorf("scanning avail: %w", err)
		}
		a.Start = parseTime(startStr)
		a.End = parseTime(endStr)
		a.Weekly = time.Duration(secs) * time.Second

		avails = append(avails, a)
	}
	return avails, rows.Err()
}

func (db *DB) InsertProject(p plan.Project) error {
	var deadline, completed, parent any
	var provision any
	if p.Deadline != nil {
		deadline = formatTime(*p.Deadline)
	}
	if p.Completed != nil {
		completed = formatTime(*p.Completed)
	}
	if p.Parent != nil {
		parent = *p.Parent
	}
	if p.Provision != nil {
		provision = int64(p.Provision.Seconds())
	}

	_, err := db.Exec(
		`INSERT INTO projects (name, username, start_time, deadline, provision_seconds, completed, meta, parent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.User, formatTime(p.Start), deadline, provision, completed, boolInt(p.Meta), parent,
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (db *DB) SetDeadline(project string, deadline time.Time) error {
	return db.updateProject(project, "deadline", formatTime(deadline))
}

func (db *DB) SetProvision(project string, provision time.Duration) error {
	return db.updateProject(project, "provision_seconds", int64(provision.Seconds()))
}

func (db *DB) CompleteProject(project string, at time.Time) error {
	return db.updateProject(project, "completed", formatTime(at))
}

func (db *DB) updateProject(project, column string, value any) error {
	res, err := db.Exec("UPDATE projects SET "+column+" = ? WHERE name = ?", value, project)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no project named %q", project)
	}
	return nil
}

// SetIntent records or replaces a user's commitment to a project.
func (db *DB) SetIntent(in plan.Intent) error {
	var expires any
	if in.Expires != nil {
		expires = formatTime(*in.Expires)
	}
	_, err := db.Exec(
		`INSERT INTO intents (username, project, amount_seconds, expires) VALUES (?, ?, ?, ?)
		 ON CONFLICT(username, project) DO UPDATE SET amount_seconds = excluded.amount_seconds, expires = excluded.expires`,
		in.User, in.Project, int64(in.Amount.Seconds()), expires,
	)
	if err != nil {
		return fmt.Errorf("setting intent: %w", err)
	}
	return nil
}

func (db *DB) InsertAvail(a plan.Avail) error {
	_, err := db.Exec(
		`INSERT INTO avails (username, start_time, end_time, weekly_seconds) VALUES (?, ?, ?, ?)`,
		a.User, formatTime(a.Start), formatTime(a.End), int64(a.Weekly.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("inserting avail: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
