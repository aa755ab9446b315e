// Package watch polls the store for tasks about to end and raises a desktop
// notification for each, once.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"

	"tally/internal/config"
	"tally/internal/store"
)

type Watcher struct {
	cfg *config.Config
	db  *store.DB
	log zerolog.Logger
}

func New(cfg *config.Config, db *store.DB, log zerolog.Logger) *Watcher {
	return &Watcher{cfg: cfg, db: db, log: log}
}

func (w *Watcher) Run(ctx context.Context) error {
	if err := w.writePID(); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer w.removePID()

	interval := time.Duration(w.cfg.Watch.IntervalSeconds) * time.Second
	lead := time.Duration(w.cfg.Watch.LeadMinutes) * time.Minute

	w.log.Info().
		Dur("interval", interval).
		Dur("lead", lead).
		Msg("watcher started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("watcher stopped")
			return nil
		case <-ticker.C:
			w.sweep(time.Now())
		}
	}
}

func (w *Watcher) sweep(now time.Time) {
	lead := time.Duration(w.cfg.Watch.LeadMinutes) * time.Minute
	tasks, err := w.db.EndingTasks(now, lead)
	if err != nil {
		w.log.Error().Err(err).Msg("querying ending tasks")
		return
	}

	for _, t := range tasks {
		left := t.End.Sub(now).Round(time.Minute)
		msg := fmt.Sprintf("%s on %s ends in %s — run 'tally more' to continue", t.User, t.Project, left)

		if w.cfg.Watch.Enabled {
			if err := beeep.Notify("tally", msg, ""); err != nil {
				w.log.Warn().Err(err).Int64("task", t.ID).Msg("sending notification")
			}
		}

		if err := w.db.RecordNotification(t.ID, t.End); err != nil {
			// Not recorded means it will fire again next sweep; better twice
			// than never.
			w.log.Error().Err(err).Int64("task", t.ID).Msg("recording notification")
			continue
		}

		w.log.Info().
			Str("user", t.User).
			Str("project", t.Project).
			Time("end", t.End).
			Msg("task ending soon")
	}
}

func pidPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tally.pid"), nil
}

func (w *Watcher) writePID() error {
	path, err := pidPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (w *Watcher) removePID() {
	if path, err := pidPath(); err == nil {
		os.Remove(path)
	}
}

func ReadPID() (int, error) {
	path, err := pidPath()
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("no running watcher found")
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file")
	}

	return pid, nil
}
