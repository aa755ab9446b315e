package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	naturaldate "github.com/tj/go-naturaldate"

	"tally/internal/config"
	"tally/internal/ics"
	"tally/internal/plan"
	"tally/internal/report"
	"tally/internal/store"
	"tally/internal/tui"
	"tally/internal/watch"
)

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "Time-tracking assistant with forward work forecasting",
	Long:  "tally records work against projects and forecasts, week by week, when the remaining committed work will happen given everyone's declared availability.",
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print the week-by-week work forecast",
	RunE:  runForecast,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Browse the forecast interactively",
	RunE:  runPlan,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the forecast as an iCalendar feed",
	RunE:  runExport,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for tasks about to end and notify",
	RunE:  runWatch,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	exportCmd.Flags().String("out", "", "Write the calendar to a file instead of stdout")
	exportCmd.Flags().String("until", "", "Export up to this date (natural language, e.g. 'in 3 months')")
	watchCmd.Flags().Bool("stop", false, "Stop a running watcher")

	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.DB, error) {
	path := cfg.Database.Path
	if path == "" {
		var err error
		path, err = store.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func requireUser(cfg *config.Config) (string, error) {
	if cfg.User.Name == "" {
		return "", fmt.Errorf("no username configured — set [user] name in the config or TALLY_USER")
	}
	return cfg.User.Name, nil
}

// parseWhen accepts natural-language dates ("next monday", "in 3 months") as
// well as plain YYYY-MM-DD.
func parseWhen(s string, ref time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, ref.Location()); err == nil {
		return t, nil
	}
	t, err := naturaldate.Parse(s, ref, naturaldate.WithDirection(naturaldate.Future))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func buildPlan(db *store.DB, now time.Time) (plan.WorkPlan, []plan.Avail, error) {
	projects, intents, avails, dones, err := db.Snapshot()
	if err != nil {
		return nil, nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return plan.PlanAll(projects, intents, avails, dones, now), avails, nil
}

func runForecast(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now()
	p, avails, err := buildPlan(db, now)
	if err != nil {
		return err
	}

	fmt.Print(report.RenderPlan(p, avails, now, cfg.Forecast.HorizonDays))
	fmt.Println()
	fmt.Print(report.RenderSummary(p))
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now()
	p, avails, err := buildPlan(db, now)
	if err != nil {
		return err
	}

	content := report.RenderPlan(p, avails, now, cfg.Forecast.HorizonDays)
	app := tui.NewApp(content)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	until, _ := cmd.Flags().GetString("until")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now()
	p, avails, err := buildPlan(db, now)
	if err != nil {
		return err
	}

	end := report.Horizon(avails, now, cfg.Forecast.HorizonDays)
	if until != "" {
		if end, err = parseWhen(until, now); err != nil {
			return err
		}
	}

	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := ics.Write(w, p, now, end, now); err != nil {
		return err
	}
	if out != "" {
		fmt.Printf("Wrote forecast through %s to %s\n", end.Format("2006-01-02"), out)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	if stop, _ := cmd.Flags().GetBool("stop"); stop {
		pid, err := watch.ReadPID()
		if err != nil {
			return err
		}
		process, err := os.FindProcess(pid)
		if err != nil {
			return fmt.Errorf("finding process %d: %w", pid, err)
		}
		if err := process.Signal(syscall.SIGTERM); err != nil {
			return fmt.Errorf("sending stop signal: %w", err)
		}
		fmt.Printf("Sent stop signal to tally watcher (PID %d)\n", pid)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return watch.New(cfg, db, newLogger()).Run(ctx)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := writeDefaultConfig(configPath); err != nil {
			return err
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
