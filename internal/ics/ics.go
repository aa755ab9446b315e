// Package ics exports a WorkPlan as an iCalendar feed, one event per
// forecasted chunk of work.
package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/emersion/go-ical"

	"tally/internal/plan"
)

const productID = "-//tally//forecast//EN"

// Write encodes every WorkLoad in [start, end) as a VEVENT spanning the
// working days the chunk occupies. UIDs are deterministic so re-imports
// update events in place.
func Write(w io.Writer, p plan.WorkPlan, start, end, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, load := range plan.FindLoads(p, start, end) {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, uid(load))
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		event.Props.SetDateTime(ical.PropDateTimeStart, load.Start)
		event.Props.SetDateTime(ical.PropDateTimeEnd, eventEnd(load))
		event.Props.SetText(ical.PropSummary, summary(load))
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

// eventEnd stretches the event over the remaining working days of the
// chunk's week, since the load represents that whole span.
func eventEnd(l *plan.WorkLoad) time.Time {
	days := plan.WorkingDaysRemaining(l.Start)
	if days == 0 {
		days = 1
	}
	return l.Start.AddDate(0, 0, days)
}

func summary(l *plan.WorkLoad) string {
	return fmt.Sprintf("%s: %s (%dh)", l.User, l.Project, l.Load/time.Hour)
}

func uid(l *plan.WorkLoad) string {
	return fmt.Sprintf("%s-%s-%s@tally", l.User, l.Project, l.Start.Format("20060102"))
}
