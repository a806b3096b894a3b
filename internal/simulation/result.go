package simulation

import (
	"time"

	"github.com/eamoe/jira-flow-metrics/internal/metrics"
)

// Mode distinguishes the two forecast questions.
type Mode string

const (
	// ModeHowMany asks how many items will finish within a day horizon.
	ModeHowMany Mode = "how_many"
	// ModeHowLong asks how many days a target backlog needs.
	ModeHowLong Mode = "how_long"
)

// Result holds the percentile table of one simulation run. For how-many
// the percentiles are completed-item counts; for how-long they are day
// counts.
type Result struct {
	Mode        Mode     `json:"mode"`
	Trials      int      `json:"trials"`
	TargetDays  int      `json:"target_days,omitempty"`
	TargetItems int      `json:"target_items,omitempty"`
	P50         int      `json:"p50"`
	P75         int      `json:"p75"`
	P85         int      `json:"p85"`
	P95         int      `json:"p95"`
	Diverged    int      `json:"diverged,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// ForecastDates is a how-long percentile table resolved to calendar
// dates.
type ForecastDates struct {
	P50 time.Time `json:"p50"`
	P75 time.Time `json:"p75"`
	P85 time.Time `json:"p85"`
	P95 time.Time `json:"p95"`
}

// ProjectDates adds each percentile's day count to the start date. With
// weekend exclusion the projection lands on working days only.
func (r *Result) ProjectDates(cal metrics.Calendar, start time.Time) ForecastDates {
	day := metrics.DateOf(start)
	return ForecastDates{
		P50: cal.AddDays(day, r.P50),
		P75: cal.AddDays(day, r.P75),
		P85: cal.AddDays(day, r.P85),
		P95: cal.AddDays(day, r.P95),
	}
}

func newResult(mode Mode, trials int, outcomes []int) *Result {
	return &Result{
		Mode:   mode,
		Trials: trials,
		P50:    metrics.Percentile(outcomes, 50),
		P75:    metrics.Percentile(outcomes, 75),
		P85:    metrics.Percentile(outcomes, 85),
		P95:    metrics.Percentile(outcomes, 95),
	}
}
