package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"tally/internal/config"
	"tally/internal/plan"
	"tally/internal/store"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectNew,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE:  runProjectList,
}

var projectDoneCmd = &cobra.Command{
	Use:   "done <name>",
	Short: "Mark a project completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDone,
}

var projectDeadlineCmd = &cobra.Command{
	Use:   "deadline <name> <when>",
	Short: "Set a project deadline",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectDeadline,
}

var projectProvisionCmd = &cobra.Command{
	Use:   "provision <name> <duration>",
	Short: "Set a project's budgeted duration",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectProvision,
}

var intentCmd = &cobra.Command{
	Use:   "intent <project> <amount>",
	Short: "Declare how much time you intend to spend on a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runIntent,
}

var availCmd = &cobra.Command{
	Use:   "avail <weekly>",
	Short: "Declare weekly availability over a time span",
	Args:  cobra.ExactArgs(1),
	RunE:  runAvail,
}

var startCmd = &cobra.Command{
	Use:   "start <project> [note]",
	Short: "Start working on a project",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runStart,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the current task now",
	RunE:  runStop,
}

var moreCmd = &cobra.Command{
	Use:   "more <duration>",
	Short: "Extend the current task",
	Args:  cobra.ExactArgs(1),
	RunE:  runMore,
}

var logCmd = &cobra.Command{
	Use:   "log <project> <duration> [note]",
	Short: "Record finished work ending now",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runLog,
}

func init() {
	projectNewCmd.Flags().String("deadline", "", "Deadline (natural language or YYYY-MM-DD)")
	projectNewCmd.Flags().String("provision", "", "Budgeted duration, e.g. 80h")
	projectNewCmd.Flags().Bool("meta", false, "Mark as a meta project")
	projectNewCmd.Flags().String("parent", "", "Parent project name")

	intentCmd.Flags().String("until", "", "Intent expiry (natural language or YYYY-MM-DD)")

	availCmd.Flags().String("from", "", "Span start (default: now)")
	availCmd.Flags().String("until", "", "Span end (required)")
	availCmd.MarkFlagRequired("until")

	startCmd.Flags().String("for", "1h", "Estimated task duration")

	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectDoneCmd)
	projectCmd.AddCommand(projectDeadlineCmd)
	projectCmd.AddCommand(projectProvisionCmd)

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(intentCmd)
	rootCmd.AddCommand(availCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(moreCmd)
	rootCmd.AddCommand(logCmd)
}

func withStore(f func(cfg *config.Config, db *store.DB, user string) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	user, err := requireUser(cfg)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return f(cfg, db, user)
}

func runProjectNew(cmd *cobra.Command, args []string) error {
	deadlineStr, _ := cmd.Flags().GetString("deadline")
	provisionStr, _ := cmd.Flags().GetString("provision")
	meta, _ := cmd.Flags().GetBool("meta")
	parent, _ := cmd.Flags().GetString("parent")

	return withStore(func(cfg *config.Config, db *store.DB, user string) error {
		now := time.Now()
		p := plan.Project{Name: args[0], User: user, Start: now, Meta: meta}

		if deadlineStr != "" {
			deadline, err := parseWhen(deadlineStr, now)
			if err != nil {
				return err
			}
			p.Deadline = &deadline
		}
		if provisionStr != "" {
			provision, err := time.ParseDuration(provisionStr)
			if err != nil {
				return fmt.Errorf("parsing provision: %w", err)
			}
			p.Provision = &provision
		}
		if parent != "" {
			p.Parent = &parent
		}

		if err := db.InsertProject(p); err != nil {
			return err
		}
		fmt.Printf("Created project %s\n", p.Name)
		return nil
	})
}

func runProjectList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	projects, err := db.Projects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No projects yet.")
		return nil
	}

	for _, p := range projects {
		deadline := "-"
		if p.Deadline != nil {
			deadline = p.Deadline.Format("2006-01-02")
		}
		mark := " "
		if p.Completed != nil {
			mark = "✓"
		}
		fmt.Printf("%s %-20s %-10s deadline %s\n", mark, p.Name, p.User, deadline)
	}
	return nil
}

func runProjectDone(cmd *cobra.Command, args []string) error {
	return withStore(func(cfg *config.Config, db *store.DB, user string) error {
		if err := db.CompleteProject(args[0], time.Now()); err != nil {
			return err
		}
		fmt.Printf("Completed %s\n", args[0])
		return nil
	})
}

func runProjectDeadline(cmd *cobra.Command, args []string) error {
	return withStore(func(cfg *config.Config, db *store.DB, user string) error {
		deadline, err := parseWhen(args[1], time.Now())
		if err != nil {
			return err
		}
		if err := db.SetDeadline(args[0], deadline); err != nil {
			return err
		}
		fmt.Printf("%s due %s\n", args[0], deadline.Format("2006-01-02"))
		return nil
	})
}

func runProjectProvision(cmd *cobra.Command, args []string) error {
	return withStore(func(cfg *config.Config, db *store.DB, user string) error {
		provision, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("parsing provision: %w", err)
		}
		if err := db.SetProvision(args[0], provision); err != nil {
			return err
		}
		fmt.Printf("%s provisioned for %s\n", args[0], provision)
		return nil
	})
}

func runIntent(cmd *cobra.Command, args []string) error {
	until, _ := cmd.Flags().GetString("until")

	return withStore(func(cfg *config.Config, db *store.DB, user string) error {
		amount, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("parsing amount: %w", err)
		}

		in := plan.Intent{User: user, Project: args[0], Amount: amount}
		if until != "" {
			expires, err := parseWhen(until, time.Now())
			if err != nil {
				return err
			}
			in.Expires = &expires
		}

		if err := db.SetIntent(in); err != nil {
			return err
		}
		fmt.Printf("%s intends %s on %s\n", user, amount, args[0])
		return nil
	})
}

func runAvail(cmd *cobra.Command, args []string) error {
	fromStr, _ := cmd.Flags().GetString("from")
	untilStr, _ := cmd.Flags().GetString("until")

	return withStore(func(cfg *config.Config, db *store.DB, user string) error {
		weekly, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("parsing weekly cap: %w", err)
		}

		now := time.Now()
		from := now
		if fromStr != "" {
			if from, err = parseWhen(fromStr, now); err != nil {
				return err
			}
		}
		until, err := parseWhen(untilStr, now)
		if err != nil {
			return err
		}
		if !until.After(from) {
			return fmt.Errorf("span ends before it starts")
		}

		if err := db.InsertAvail(plan.Avail{User: user, Start: from, End: until, Weekly: weekly}); err != nil {
			return err
		}
		fmt.Printf("%s available %s/week from %s to %s\n",
			user, weekly, from.Format("2006-01-02"), until.Format("2006-01-02"))
		return nil
	})
}

func runStart(cmd *cobra.Command, args []string) error {
	forStr, _ := cmd.Flags().GetString("for")

	return withStore(func(cfg *config.Config, db *store.DB, user string) error {
		estimate, err := time.ParseDuration(forStr)
		if err != nil {
			return fmt.Errorf("parsing duration: %w", err)
		}

		now := time.Now()
		if cur, err := db.CurrentTask(user, now); err != nil {
			return err
		} else if cur != nil {
			// Switching tasks ends the current one first.
			if err := db.SetTaskEnd(cur.ID, now); err != nil {
				return err
			}
			fmt.Printf("Stopped %s\n", cur.Project)
		}

		note := ""
		if len(args) > 1 {
			note = args[1]
		}

		t := store.Task{User: user, Project: args[0], Note: note, Start: now, End: now.Add(estimate)}
		if _, err := db.InsertTask(t); err != nil {
			return err
		}
		fmt.Printf("Started %s until %s\n", args[0], t.End.Format("15:04"))
		return nil
	})
}

func runStop(cmd *cobra.Command, args []string) error {
	return withStore(func(cfg *config.Config, db *store.DB, user string) error {
		now := time.Now()
		cur, err := db.CurrentTask(user, now)
		if err != nil {
			return err
		}
		if cur == nil {
			return fmt.Errorf("no task running")
		}
		if err := db.SetTaskEnd(cur.ID, now); err != nil {
			return err
		}
		fmt.Printf("Stopped %s after %s\n", cur.Project, now.Sub(cur.Start).Round(time.Minute))
		return nil
	})
}

func runMore(cmd *cobra.Command, args []string) error {
	return withStore(func(cfg *config.Config, db *store.DB, user string) error {
		extra, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("parsing duration: %w", err)
		}

		now := time.Now()
		cur, err := db.CurrentTask(user, now)
		if err != nil {
			return err
		}
		if cur == nil {
			return fmt.Errorf("no task running")
		}
		end := cur.End.Add(extra)
		if err := db.SetTaskEnd(cur.ID, end); err != nil {
			return err
		}
		fmt.Printf("%s extended until %s\n", cur.Project, end.Format("15:04"))
		return nil
	})
}

func runLog(cmd *cobra.Command, args []string) error {
	return withStore(func(cfg *config.Config, db *store.DB, user string) error {
		dur, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("parsing duration: %w", err)
		}

		note := ""
		if len(args) > 2 {
			note = args[2]
		}

		now := time.Now()
		t := store.Task{User: user, Project: args[0], Note: note, Start: now.Add(-dur), End: now}
		if _, err := db.InsertTask(t); err != nil {
			return err
		}
		fmt.Printf("Logged %s on %s\n", dur, args[0])
		return nil
	})
}

func writeDefaultConfig(path string) error {
	data, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
