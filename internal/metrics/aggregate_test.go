package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

func completedItem(t *testing.T, key string, created, started, done time.Time) *workitem.WorkItem {
	t.Helper()
	return mustItem(t, workitem.WorkItem{
		Key:     key,
		Type:    "Story",
		Created: created,
		Changes: []workitem.StatusChange{
			{Timestamp: started, FromStatus: "To Do", ToStatus: "In Progress"},
			{Timestamp: done, FromStatus: "In Progress", ToStatus: "Done"},
		},
	})
}

func openItem(t *testing.T, key string, created, started time.Time) *workitem.WorkItem {
	t.Helper()
	return mustItem(t, workitem.WorkItem{
		Key:     key,
		Type:    "Story",
		Created: created,
		Changes: []workitem.StatusChange{
			{Timestamp: started, FromStatus: "To Do", ToStatus: "In Progress"},
		},
	})
}

func TestLeadAndCycleStats(t *testing.T) {
	day := func(d int, hour int) time.Time {
		return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
	}
	now := day(20, 12)

	items := []*workitem.WorkItem{
		completedItem(t, "PROJ-1", day(1, 9), day(2, 9), day(5, 17)),  // lead 4, cycle 3
		completedItem(t, "PROJ-2", day(1, 9), day(4, 9), day(11, 17)), // lead 10, cycle 7
		completedItem(t, "PROJ-3", day(4, 9), day(4, 10), day(6, 17)), // lead 2, cycle 2
		openItem(t, "PROJ-4", day(5, 9), day(6, 9)),
	}

	analysis := NewAnalysis(items, testResolver(t), Calendar{}, Filter{}, now)
	if analysis.ItemCount() != 4 {
		t.Fatalf("expected 4 items, got %d", analysis.ItemCount())
	}

	lead, err := analysis.LeadTimeStats()
	if err != nil {
		t.Fatalf("lead: %v", err)
	}
	if lead.Count != 3 {
		t.Fatalf("lead count: expected 3, got %d", lead.Count)
	}
	if lead.P50 != 4 {
		t.Errorf("lead p50: expected 4, got %d", lead.P50)
	}
	if lead.P95 != 10 {
		t.Errorf("lead p95: expected 10, got %d", lead.P95)
	}

	cycle, err := analysis.CycleTimeStats()
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if cycle.Count != 3 {
		t.Fatalf("cycle count: expected 3, got %d", cycle.Count)
	}
	if cycle.P50 != 3 {
		t.Errorf("cycle p50: expected 3, got %d", cycle.P50)
	}
	want := (3.0 + 7.0 + 2.0) / 3.0
	if cycle.Mean != want {
		t.Errorf("cycle mean: expected %v, got %v", want, cycle.Mean)
	}
}

func TestThroughputZeroFillsGaps(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 15, 0, 0, 0, time.UTC)
	}

	items := []*workitem.WorkItem{
		completedItem(t, "PROJ-1", day(1), day(2), day(4)),
		completedItem(t, "PROJ-2", day(1), day(2), day(4)),
		completedItem(t, "PROJ-3", day(1), day(3), day(8)),
	}

	analysis := NewAnalysis(items, testResolver(t), Calendar{}, Filter{}, day(20))
	series, err := analysis.Throughput()
	if err != nil {
		t.Fatalf("throughput: %v", err)
	}

	if !series.Start.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("series should start at the first completion date, got %v", series.Start)
	}
	expected := []int{2, 0, 0, 0, 1}
	if len(series.Counts) != len(expected) {
		t.Fatalf("expected %d days, got %d", len(expected), len(series.Counts))
	}
	for i, want := range expected {
		if series.Counts[i] != want {
			t.Errorf("day %d: expected %d, got %d", i, want, series.Counts[i])
		}
	}
	if series.Total() != 3 {
		t.Errorf("total: expected 3, got %d", series.Total())
	}
}

func TestThroughputHonorsExplicitWindow(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 15, 0, 0, 0, time.UTC)
	}
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	items := []*workitem.WorkItem{
		completedItem(t, "PROJ-1", day(1), day(2), day(4)),
		completedItem(t, "PROJ-2", day(1), day(2), day(12)), // outside the window
	}

	analysis := NewAnalysis(items, testResolver(t), Calendar{}, Filter{Since: &since, Until: &until}, day(20))
	series, err := analysis.Throughput()
	if err != nil {
		t.Fatalf("throughput: %v", err)
	}
	if !series.Start.Equal(since) {
		t.Errorf("series should start at the window start, got %v", series.Start)
	}
	if len(series.Counts) != 10 {
		t.Errorf("expected 10 days, got %d", len(series.Counts))
	}
	if series.Total() != 1 {
		t.Errorf("completion outside the window leaked in: total %d", series.Total())
	}
}

func TestWIPCoverage(t *testing.T) {
	day := func(d int, hour int) time.Time {
		return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
	}
	now := day(10, 12)

	items := []*workitem.WorkItem{
		// cycle Mar 2 .. Mar 5: covers 2,3,4
		completedItem(t, "PROJ-1", day(1, 9), day(2, 9), day(5, 11)),
		// cycle Mar 3 .. open: covers 3..10 (through today)
		openItem(t, "PROJ-2", day(1, 9), day(3, 9)),
		// opened and closed on Mar 4: covers nothing
		completedItem(t, "PROJ-3", day(4, 9), day(4, 10), day(4, 16)),
	}

	analysis := NewAnalysis(items, testResolver(t), Calendar{}, Filter{}, now)
	points, err := analysis.WIP()
	if err != nil {
		t.Fatalf("wip: %v", err)
	}

	byDate := make(map[string]int, len(points))
	for _, p := range points {
		byDate[p.Date.Format("2006-01-02")] = p.Count
	}

	expectations := map[string]int{
		"2024-03-02": 1, // PROJ-1 only
		"2024-03-03": 2, // PROJ-1 + PROJ-2
		"2024-03-04": 2, // PROJ-3 covers nothing
		"2024-03-05": 1, // PROJ-1 completed, PROJ-2 remains
		"2024-03-10": 1, // open item covers today
	}
	for date, want := range expectations {
		got, ok := byDate[date]
		if !ok {
			t.Fatalf("missing grid day %s", date)
		}
		if got != want {
			t.Errorf("%s: expected %d, got %d", date, want, got)
		}
	}
}

func TestZeroQualifyingItemsReportNoData(t *testing.T) {
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	since := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)

	items := []*workitem.WorkItem{
		completedItem(t, "PROJ-1", day, day.Add(24*time.Hour), day.Add(96*time.Hour)),
	}

	analysis := NewAnalysis(items, testResolver(t), Calendar{}, Filter{Since: &since, Until: &until}, since)

	if _, err := analysis.LeadTimeStats(); !isInsufficient(err) {
		t.Errorf("lead: expected InsufficientDataError, got %v", err)
	}
	if _, err := analysis.CycleTimeStats(); !isInsufficient(err) {
		t.Errorf("cycle: expected InsufficientDataError, got %v", err)
	}
	if _, err := analysis.Throughput(); !isInsufficient(err) {
		t.Errorf("throughput: expected InsufficientDataError, got %v", err)
	}
	if _, err := analysis.WIP(); !isInsufficient(err) {
		t.Errorf("wip: expected InsufficientDataError, got %v", err)
	}

	report := analysis.BuildReport()
	if report.LeadTime != nil || report.CycleTime != nil || report.Throughput != nil {
		t.Error("report must carry absent views, not zero-valued statistics")
	}
	if len(report.Warnings) == 0 {
		t.Error("report should explain why views are absent")
	}
}

func TestTypeExclusion(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
	}
	bug := mustItem(t, workitem.WorkItem{
		Key:     "PROJ-9",
		Type:    "Bug",
		Created: day(1),
		Changes: []workitem.StatusChange{
			{Timestamp: day(2), FromStatus: "To Do", ToStatus: "In Progress"},
			{Timestamp: day(3), FromStatus: "In Progress", ToStatus: "Done"},
		},
	})
	items := []*workitem.WorkItem{
		completedItem(t, "PROJ-1", day(1), day(2), day(5)),
		bug,
	}

	analysis := NewAnalysis(items, testResolver(t), Calendar{}, Filter{ExcludeTypes: []string{"bug"}}, day(20))
	if analysis.ItemCount() != 1 {
		t.Fatalf("expected the bug to be excluded, have %d items", analysis.ItemCount())
	}
	lead, err := analysis.LeadTimeStats()
	if err != nil {
		t.Fatalf("lead: %v", err)
	}
	if lead.Count != 1 {
		t.Errorf("expected 1 completed item, got %d", lead.Count)
	}
}

func TestSkippedItemsAreCountedNotFatal(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
	}
	stranger := mustItem(t, workitem.WorkItem{
		Key:     "PROJ-X",
		Type:    "Story",
		Created: day(1),
		Changes: []workitem.StatusChange{
			{Timestamp: day(2), FromStatus: "To Do", ToStatus: "Limbo"},
		},
	})
	items := []*workitem.WorkItem{
		completedItem(t, "PROJ-1", day(1), day(2), day(5)),
		stranger,
	}

	analysis := NewAnalysis(items, testResolver(t), Calendar{}, Filter{}, day(20))
	if analysis.ItemCount() != 1 {
		t.Errorf("expected 1 surviving item, got %d", analysis.ItemCount())
	}
	if analysis.SkippedCount() != 1 {
		t.Errorf("expected 1 skipped item, got %d", analysis.SkippedCount())
	}
}

func TestDetailsIncludeOpenItems(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
	}
	items := []*workitem.WorkItem{
		completedItem(t, "PROJ-1", day(1), day(2), day(5)),
		openItem(t, "PROJ-2", day(3), day(4)),
	}

	analysis := NewAnalysis(items, testResolver(t), Calendar{}, Filter{}, day(20))
	rows := analysis.Details()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Key != "PROJ-1" || rows[1].Key != "PROJ-2" {
		t.Fatalf("rows should be ordered by creation: %v, %v", rows[0].Key, rows[1].Key)
	}
	if rows[0].LeadDays == nil || *rows[0].LeadDays != 4 {
		t.Errorf("completed row should carry lead days, got %v", rows[0].LeadDays)
	}
	if rows[1].LeadDays != nil || rows[1].CycleDays != nil {
		t.Error("open row must not fake durations")
	}
}

func isInsufficient(err error) bool {
	var insufficient *InsufficientDataError
	return errors.As(err, &insufficient)
}
