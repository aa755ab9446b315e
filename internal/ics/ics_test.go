package ics

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	ical "github.com/emersion/go-ical"

	"tally/internal/plan"
)

func TestWriteRoundTrip(t *testing.T) {
	mon := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	p := plan.WorkPlan{
		{User: "ada", Projects: []plan.ProjectLoads{{
			Project: "atlas",
			Loads: []plan.WorkLoad{
				{Start: mon, User: "ada", Project: "atlas", Load: 20 * time.Hour},
				{Start: mon.AddDate(0, 0, 7), User: "ada", Project: "atlas", Load: 10 * time.Hour},
			},
		}}},
	}

	var buf bytes.Buffer
	if err := Write(&buf, p, mon, mon.AddDate(0, 0, 14), mon); err != nil {
		t.Fatalf("write: %v", err)
	}

	dec := ical.NewDecoder(&buf)
	events := 0
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			events++
			event := ical.Event{Component: component}
			summary, err := event.Props.Text(ical.PropSummary)
			if err != nil {
				t.Fatalf("summary: %v", err)
			}
			if !strings.Contains(summary, "atlas") {
				t.Errorf("summary %q missing project name", summary)
			}
			start, err := event.DateTimeStart(nil)
			if err != nil {
				t.Fatalf("dtstart: %v", err)
			}
			if start.Before(mon) {
				t.Errorf("event starts %s, before plan start", start)
			}
		}
	}
	if events != 2 {
		t.Fatalf("got %d events, want 2", events)
	}
}

func TestWriteRespectsWindow(t *testing.T) {
	mon := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	p := plan.WorkPlan{
		{User: "ada", Projects: []plan.ProjectLoads{{
			Project: "atlas",
			Loads: []plan.WorkLoad{
				{Start: mon, User: "ada", Project: "atlas", Load: 20 * time.Hour},
				{Start: mon.AddDate(0, 0, 28), User: "ada", Project: "atlas", Load: 10 * time.Hour},
			},
		}}},
	}

	var buf bytes.Buffer
	if err := Write(&buf, p, mon, mon.AddDate(0, 0, 7), mon); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	if strings.Count(out, "BEGIN:VEVENT") != 1 {
		t.Fatalf("expected one event inside window, got:\n%s", out)
	}
}
