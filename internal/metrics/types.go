package metrics

import (
	"time"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

// IntervalKind distinguishes the two duration clocks derived per item.
type IntervalKind string

const (
	// KindLead measures creation to final completion.
	KindLead IntervalKind = "Lead"
	// KindCycle measures first active work to final completion.
	KindCycle IntervalKind = "Cycle"
)

// Interval is a derived start/end boundary pair. End is nil while the item
// has not reached a Done-category status; when present, Start never exceeds
// End.
type Interval struct {
	Kind  IntervalKind `json:"kind"`
	Start time.Time    `json:"start"`
	End   *time.Time   `json:"end,omitempty"`
}

// Closed reports whether the interval has an end boundary.
func (iv Interval) Closed() bool {
	return iv.End != nil
}

// Days converts the interval into a day count through the calendar. Open
// intervals are measured up to now.
func (iv Interval) Days(cal Calendar, now time.Time) int {
	end := now
	if iv.End != nil {
		end = *iv.End
	}
	return cal.Days(iv.Start, end)
}

// ResolvedItem pairs a work item with its extracted boundaries. Started is
// false for items that never entered an InProgress-category status, in
// which case Cycle is meaningless and must be ignored.
type ResolvedItem struct {
	Item    *workitem.WorkItem
	Lead    Interval
	Cycle   Interval
	Started bool
}

// Completed reports whether the item's history ends in a Done-category
// status. Equivalent to Lead.Closed().
func (r ResolvedItem) Completed() bool {
	return r.Lead.End != nil
}

// CompletedAt returns the final Done-entry timestamp, or nil for open items.
func (r ResolvedItem) CompletedAt() *time.Time {
	return r.Lead.End
}

// DurationStats summarizes one duration view over qualifying completed
// items. Percentiles use the nearest-rank rule, so each value is an
// actually observed day count.
type DurationStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	P50   int     `json:"p50"`
	P75   int     `json:"p75"`
	P85   int     `json:"p85"`
	P95   int     `json:"p95"`
}

// ThroughputSeries is the daily completed-item count over a contiguous date
// range, zero-filled for days without completions. Recomputed from final
// state on every run, never adjusted incrementally.
type ThroughputSeries struct {
	Start  time.Time `json:"start"`
	Counts []int     `json:"counts"`
}

// Day returns the date of the i-th entry.
func (s ThroughputSeries) Day(i int) time.Time {
	return s.Start.AddDate(0, 0, i)
}

// Total is the sum of all daily counts.
func (s ThroughputSeries) Total() int {
	total := 0
	for _, c := range s.Counts {
		total += c
	}
	return total
}

// Samples returns the resampling population for the forecaster. With
// weekend exclusion the population keeps weekday entries only, so a
// simulated day and a calendar-walked day mean the same thing.
func (s ThroughputSeries) Samples(excludeWeekends bool) []int {
	if !excludeWeekends {
		return append([]int(nil), s.Counts...)
	}
	samples := make([]int, 0, len(s.Counts))
	for i, c := range s.Counts {
		if isWeekend(s.Day(i)) {
			continue
		}
		samples = append(samples, c)
	}
	return samples
}

// WIPPoint is the number of items in flight on one day.
type WIPPoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// SurvivalPoint states the fraction of items whose age reached AgeDays.
type SurvivalPoint struct {
	AgeDays  int     `json:"age_days"`
	Fraction float64 `json:"fraction"`
}

// CorrelationResult is the Pearson coefficient between the estimate field
// and one duration kind.
type CorrelationResult struct {
	Kind        IntervalKind `json:"kind"`
	Pairs       int          `json:"pairs"`
	Coefficient float64      `json:"coefficient"`
}

// DetailRow is one line of the per-item report table.
type DetailRow struct {
	Key         string     `json:"key"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Created     time.Time  `json:"created"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	LeadDays    *int       `json:"lead_days,omitempty"`
	CycleDays   *int       `json:"cycle_days,omitempty"`
}

// RunChartRow is one completed item on the cycle-time run chart, with the
// trailing moving average over the previous completions.
type RunChartRow struct {
	Key         string    `json:"key"`
	CompletedAt time.Time `json:"completed_at"`
	CycleDays   int       `json:"cycle_days"`
	MovingAvg   float64   `json:"moving_avg"`
}

// FlowReport bundles every analysis view for rendering. Absent views stay
// nil so "no data" never reads as a zero-valued statistic.
type FlowReport struct {
	GeneratedAt     time.Time          `json:"generated_at"`
	Since           *time.Time         `json:"since,omitempty"`
	Until           *time.Time         `json:"until,omitempty"`
	ExcludeWeekends bool               `json:"exclude_weekends"`
	ItemCount       int                `json:"item_count"`
	CompletedCount  int                `json:"completed_count"`
	OpenCount       int                `json:"open_count"`
	SkippedCount    int                `json:"skipped_count"`
	LeadTime        *DurationStats     `json:"lead_time,omitempty"`
	CycleTime       *DurationStats     `json:"cycle_time,omitempty"`
	Throughput      *ThroughputSeries  `json:"throughput,omitempty"`
	WIP             []WIPPoint         `json:"wip,omitempty"`
	Survival        []SurvivalPoint    `json:"survival,omitempty"`
	Correlation     *CorrelationResult `json:"correlation,omitempty"`
	RunChart        []RunChartRow      `json:"run_chart,omitempty"`
	Details         []DetailRow        `json:"details,omitempty"`
	Warnings        []string           `json:"warnings,omitempty"`
}
