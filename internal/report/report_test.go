package report

import (
	"strings"
	"testing"
	"time"

	"tally/internal/plan"
)

func TestRenderPlanListsWeeks(t *testing.T) {
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
	avails := []plan.Avail{{User: "ada", Start: mon, End: mon.AddDate(0, 0, 56), Weekly: 20 * time.Hour}}

	out := RenderPlan(p, avails, mon, 361)
	for _, want := range []string{"atlas", "ada", "20h", "10h", "week of 2024-03-04", "week of 2024-03-11"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPlanFlagsTruncation(t *testing.T) {
	mon := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	p := plan.WorkPlan{
		{User: "ada", Projects: []plan.ProjectLoads{{Project: "atlas", Truncated: true}}},
	}

	out := RenderPlan(p, nil, mon, 30)
	if !strings.Contains(out, "cut off") {
		t.Errorf("truncated project not flagged:\n%s", out)
	}
	if !strings.Contains(out, "nothing scheduled") {
		t.Errorf("empty forecast not reported:\n%s", out)
	}
}

func TestHorizon(t *testing.T) {
	now := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

	if got := Horizon(nil, now, 30); !got.Equal(now.AddDate(0, 0, 30)) {
		t.Fatalf("horizon without avails = %s", got.Format("2006-01-02"))
	}

	far := now.AddDate(1, 0, 0)
	avails := []plan.Avail{{User: "ada", Start: now, End: far, Weekly: 10 * time.Hour}}
	if got := Horizon(avails, now, 30); !got.Equal(far) {
		t.Fatalf("horizon = %s, want avail end %s", got.Format("2006-01-02"), far.Format("2006-01-02"))
	}
}
