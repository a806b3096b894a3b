package metrics

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

// Filter narrows an analysis run. Since/Until are inclusive on both ends
// and compared at UTC day granularity; nil bounds are open. Type exclusion
// is case-insensitive.
type Filter struct {
	Since        *time.Time
	Until        *time.Time
	ExcludeTypes []string
}

func (f Filter) allowsType(itemType string) bool {
	for _, excluded := range f.ExcludeTypes {
		if strings.EqualFold(strings.TrimSpace(excluded), itemType) {
			return false
		}
	}
	return true
}

func (f Filter) containsDay(t time.Time) bool {
	day := DateOf(t)
	if f.Since != nil && day.Before(DateOf(*f.Since)) {
		return false
	}
	if f.Until != nil && day.After(DateOf(*f.Until)) {
		return false
	}
	return true
}

// Analysis is one run over a loaded dataset. Intervals are extracted once
// at construction; items with unresolvable statuses are skipped with a
// logged diagnostic and counted, never aborting the run. Views filter by
// the date relevant to them: entry views (lead time, WIP, survival) by
// creation date, completion views (cycle time, throughput, correlation)
// by the final Done date.
type Analysis struct {
	calendar Calendar
	filter   Filter
	now      time.Time
	items    []ResolvedItem
	skipped  int
}

// NewAnalysis resolves intervals for every item that passes the type
// filter. A zero now means the current time.
func NewAnalysis(items []*workitem.WorkItem, resolver *workitem.Resolver, calendar Calendar, filter Filter, now time.Time) *Analysis {
	if now.IsZero() {
		now = time.Now()
	}
	a := &Analysis{calendar: calendar, filter: filter, now: now.UTC()}

	for _, item := range items {
		if !filter.allowsType(item.Type) {
			continue
		}
		resolved, err := ExtractIntervals(item, resolver)
		if err != nil {
			a.skipped++
			log.Warn().Str("key", item.Key).Err(err).Msg("Skipping item")
			continue
		}
		a.items = append(a.items, resolved)
	}
	return a
}

// Calendar exposes the adjuster this analysis was built with.
func (a *Analysis) Calendar() Calendar {
	return a.calendar
}

// Now exposes the reference time used for open intervals.
func (a *Analysis) Now() time.Time {
	return a.now
}

// ItemCount is the number of items surviving type filtering and interval
// extraction. Date filters apply per view, not here.
func (a *Analysis) ItemCount() int {
	return len(a.items)
}

// SkippedCount is the number of items dropped for unresolvable or
// malformed histories.
func (a *Analysis) SkippedCount() int {
	return a.skipped
}

// LeadTimeStats summarizes creation-to-completion durations for completed
// items created inside the filter window.
func (a *Analysis) LeadTimeStats() (*DurationStats, error) {
	var durations []int
	for _, item := range a.items {
		if !item.Completed() || !a.filter.containsDay(item.Item.Created) {
			continue
		}
		durations = append(durations, item.Lead.Days(a.calendar, a.now))
	}
	return summarize("lead time", durations)
}

// CycleTimeStats summarizes first-active-work-to-completion durations for
// items completed inside the filter window.
func (a *Analysis) CycleTimeStats() (*DurationStats, error) {
	var durations []int
	for _, item := range a.items {
		if !item.Completed() || !item.Started || !a.filter.containsDay(*item.CompletedAt()) {
			continue
		}
		durations = append(durations, item.Cycle.Days(a.calendar, a.now))
	}
	return summarize("cycle time", durations)
}

// Throughput buckets completions into a daily series covering the filter
// window when bounds are set, otherwise the observed completion range.
// Every day in range is present; days without completions are zero.
func (a *Analysis) Throughput() (*ThroughputSeries, error) {
	var completions []time.Time
	for _, item := range a.items {
		if !item.Completed() || !a.filter.containsDay(*item.CompletedAt()) {
			continue
		}
		completions = append(completions, DateOf(*item.CompletedAt()))
	}
	if len(completions) == 0 {
		return nil, &InsufficientDataError{View: "throughput"}
	}

	start, end := completions[0], completions[0]
	for _, day := range completions[1:] {
		if day.Before(start) {
			start = day
		}
		if day.After(end) {
			end = day
		}
	}
	if a.filter.Since != nil {
		start = DateOf(*a.filter.Since)
	}
	if a.filter.Until != nil {
		end = DateOf(*a.filter.Until)
	}

	series := &ThroughputSeries{
		Start:  start,
		Counts: make([]int, daysInclusive(start, end)),
	}
	for _, day := range completions {
		series.Counts[dayIndex(start, day)]++
	}
	return series, nil
}

// WIP counts, for every day of the window, the started items whose
// [cycle start, cycle end or now) covers that day. Items are admitted by
// creation date. A completed item stops covering on its completion day, so
// an item opened and closed on the same day covers no day; an open item
// covers every day through today.
func (a *Analysis) WIP() ([]WIPPoint, error) {
	type span struct {
		start time.Time
		end   time.Time // exclusive
	}
	var spans []span
	for _, item := range a.items {
		if !item.Started || !a.filter.containsDay(item.Item.Created) {
			continue
		}
		end := DateOf(a.now).AddDate(0, 0, 1)
		if item.Cycle.End != nil {
			end = DateOf(*item.Cycle.End)
		}
		spans = append(spans, span{start: DateOf(item.Cycle.Start), end: end})
	}
	if len(spans) == 0 {
		return nil, &InsufficientDataError{View: "wip"}
	}

	gridStart := spans[0].start
	gridEnd := spans[0].end.AddDate(0, 0, -1)
	for _, s := range spans[1:] {
		if s.start.Before(gridStart) {
			gridStart = s.start
		}
		if last := s.end.AddDate(0, 0, -1); last.After(gridEnd) {
			gridEnd = last
		}
	}
	if a.filter.Since != nil {
		gridStart = DateOf(*a.filter.Since)
	}
	if a.filter.Until != nil {
		gridEnd = DateOf(*a.filter.Until)
	}
	if gridEnd.Before(gridStart) {
		return nil, &InsufficientDataError{View: "wip"}
	}

	points := make([]WIPPoint, 0, daysInclusive(gridStart, gridEnd))
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		count := 0
		for _, s := range spans {
			if !day.Before(s.start) && day.Before(s.end) {
				count++
			}
		}
		points = append(points, WIPPoint{Date: day, Count: count})
	}
	return points, nil
}

// BuildReport runs every view and folds per-view shortfalls into warnings,
// leaving the affected view absent rather than zero-valued.
func (a *Analysis) BuildReport() *FlowReport {
	report := &FlowReport{
		GeneratedAt:     a.now,
		Since:           a.filter.Since,
		Until:           a.filter.Until,
		ExcludeWeekends: a.calendar.ExcludeWeekends,
		ItemCount:       len(a.items),
		SkippedCount:    a.skipped,
	}
	for _, item := range a.items {
		if item.Completed() {
			report.CompletedCount++
		} else {
			report.OpenCount++
		}
	}

	report.LeadTime = viewOrWarn(report, a.LeadTimeStats)
	report.CycleTime = viewOrWarn(report, a.CycleTimeStats)
	report.Throughput = viewOrWarn(report, a.Throughput)
	report.WIP = viewOrWarnSlice(report, a.WIP)
	report.Survival = viewOrWarnSlice(report, a.Survival)
	report.Correlation = viewOrWarn(report, func() (*CorrelationResult, error) {
		return a.Correlation(KindCycle)
	})
	report.RunChart = viewOrWarnSlice(report, a.RunChart)
	report.Details = a.Details()
	return report
}

// Details lists every surviving item with its durations. Open items keep
// nil durations; unstarted items additionally have no cycle days.
func (a *Analysis) Details() []DetailRow {
	rows := make([]DetailRow, 0, len(a.items))
	for _, item := range a.items {
		row := DetailRow{
			Key:         item.Item.Key,
			Type:        item.Item.Type,
			Status:      item.Item.CurrentStatus(),
			Created:     item.Item.Created,
			CompletedAt: item.CompletedAt(),
		}
		if item.Completed() {
			lead := item.Lead.Days(a.calendar, a.now)
			row.LeadDays = &lead
			if item.Started {
				cycle := item.Cycle.Days(a.calendar, a.now)
				row.CycleDays = &cycle
			}
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(x, y DetailRow) int {
		if c := x.Created.Compare(y.Created); c != 0 {
			return c
		}
		return strings.Compare(x.Key, y.Key)
	})
	return rows
}

func summarize(view string, durations []int) (*DurationStats, error) {
	if len(durations) == 0 {
		return nil, &InsufficientDataError{View: view}
	}
	return &DurationStats{
		Count: len(durations),
		Mean:  Mean(durations),
		P50:   Percentile(durations, 50),
		P75:   Percentile(durations, 75),
		P85:   Percentile(durations, 85),
		P95:   Percentile(durations, 95),
	}, nil
}

func viewOrWarn[T any](report *FlowReport, view func() (*T, error)) *T {
	value, err := view()
	if err != nil {
		warnReport(report, err)
		return nil
	}
	return value
}

func viewOrWarnSlice[T any](report *FlowReport, view func() ([]T, error)) []T {
	value, err := view()
	if err != nil {
		warnReport(report, err)
		return nil
	}
	return value
}

func warnReport(report *FlowReport, err error) {
	var insufficient *InsufficientDataError
	if errors.As(err, &insufficient) {
		report.Warnings = append(report.Warnings, insufficient.Error())
		return
	}
	report.Warnings = append(report.Warnings, err.Error())
}

func daysInclusive(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func dayIndex(start, day time.Time) int {
	return int(day.Sub(start).Hours() / 24)
}
