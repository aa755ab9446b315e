// Package report renders a WorkPlan for the terminal, bucketed into
// calendar weeks.
package report

import (
	"fmt"
	"strings"
	"time"

	"tally/internal/plan"
)

// Horizon returns how far ahead the rendered forecast walks: the latest
// availability end, or now plus horizonDays, whichever is later.
func Horizon(avails []plan.Avail, now time.Time, horizonDays int) time.Time {
	max := now.AddDate(0, 0, horizonDays)
	for _, a := range avails {
		if a.End.After(max) {
			max = a.End
		}
	}
	return max
}

// RenderPlan walks the plan week by week from now until the horizon and
// formats every week that has forecasted work. The first bucket is the
// partial week starting at now.
func RenderPlan(p plan.WorkPlan, avails []plan.Avail, now time.Time, horizonDays int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Forecast") + "\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("from %s", now.Format("Mon 2006-01-02"))) + "\n\n")

	horizon := Horizon(avails, now, horizonDays)
	start := now
	weeks := 0
	for start.Before(horizon) {
		end := plan.NextMonday(start)
		loads := plan.FindLoads(p, start, end)
		if len(loads) > 0 {
			b.WriteString(weekStyle.Render(fmt.Sprintf("week of %s", end.AddDate(0, 0, -7).Format("2006-01-02"))) + "\n")
			for _, l := range loads {
				b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
					l.Start.Format("2006-01-02"),
					userStyle.Render(l.User),
					fmt.Sprintf("%-20s %s", l.Project, formatHours(l.Load)),
				))
			}
			weeks++
		}
		start = end
	}
	if weeks == 0 {
		b.WriteString(dimStyle.Render("nothing scheduled") + "\n")
	}

	for _, up := range p {
		for _, pl := range up.Projects {
			if pl.Truncated {
				b.WriteString("\n" + warnStyle.Render(fmt.Sprintf(
					"%s/%s: forecast cut off after %d weeks, work remains unscheduled",
					up.User, pl.Project, plan.MaxForecastWeeks)) + "\n")
			}
		}
	}

	return b.String()
}

// RenderSummary lists per-user totals of forecasted work.
func RenderSummary(p plan.WorkPlan) string {
	var b strings.Builder
	for _, up := range p {
		var total time.Duration
		for _, pl := range up.Projects {
			for _, l := range pl.Loads {
				total += l.Load
			}
		}
		b.WriteString(fmt.Sprintf("%s  %s\n", userStyle.Render(up.User), formatHours(total)))
	}
	return b.String()
}

func formatHours(d time.Duration) string {
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
