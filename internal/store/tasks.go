package store

import (
	"fmt"
	"time"
)

// Task is one logged span of work. An ongoing task is simply a row whose end
// lies in the future (the estimated end set when it was started).
type Task struct {
	ID      int64
	User    string
	Project string
	Note    string
	Start   time.Time
	End     time.Time
}

func (db *DB) InsertTask(t Task) (int64, error) {
	result, err := db.Exec(
		`INSERT INTO tasks (username, project, note, start_time, end_time) VALUES (?, ?, ?, ?, ?)`,
		t.User, t.Project, t.Note, formatTime(t.Start), formatTime(t.End),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting task: %w", err)
	}
	return result.LastInsertId()
}

func (db *DB) Tasks() ([]Task, error) {
	return db.queryTasks(
		`SELECT id, username, project, note, start_time, end_time FROM tasks ORDER BY start_time ASC`,
	)
}

// CurrentTask returns the user's ongoing task, if any.
func (db *DB) CurrentTask(user string, now time.Time) (*Task, error) {
	tasks, err := db.queryTasks(
		`SELECT id, username, project, note, start_time, end_time
		 FROM tasks
		 WHERE username = ? AND end_time > ?
		 ORDER BY start_time DESC
		 LIMIT 1`,
		user, formatTime(now),
	)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

// SetTaskEnd rewrites a task's end, used both to stop early and to extend.
func (db *DB) SetTaskEnd(id int64, end time.Time) error {
	_, err := db.Exec("UPDATE tasks SET end_time = ? WHERE id = ?", formatTime(end), id)
	if err != nil {
		return fmt.Errorf("updating task end: %w", err)
	}
	return nil
}

// EndingTasks returns ongoing tasks ending within the lead window that have
// not been notified about yet.
func (db *DB) EndingTasks(now time.Time, lead time.Duration) ([]Task, error) {
	return db.queryTasks(
		`SELECT t.id, t.username, t.project, t.note, t.start_time, t.end_time
		 FROM tasks t
		 LEFT JOIN notifications n ON n.task_id = t.id
		 WHERE n.task_id IS NULL AND t.end_time > ? AND t.end_time <= ?
		 ORDER BY t.end_time ASC`,
		formatTime(now), formatTime(now.Add(lead)),
	)
}

// RecordNotification marks a task as notified so the watcher fires once.
func (db *DB) RecordNotification(taskID int64, end time.Time) error {
	_, err := db.Exec(
		"INSERT INTO notifications (task_id, end_time) VALUES (?, ?) ON CONFLICT(task_id) DO NOTHING",
		taskID, formatTime(end),
	)
	if err != nil {
		return fmt.Errorf("recording notification: %w", err)
	}
	return nil
}

func (db *DB) queryTasks(query string, args ...interface{}) ([]Task, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var startStr, endStr string

		if err := rows.Scan(&t.ID, &t.User, &t.Project, &t.Note, &startStr, &endStr); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.Start = parseTime(startStr)
		t.End = parseTime(endStr)

		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
