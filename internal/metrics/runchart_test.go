package metrics

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

func TestRunChartMovingAverage(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
	}

	items := []*workitem.WorkItem{
		completedItem(t, "PROJ-1", day(1), day(1), day(3)), // cycle 2, completed Mar 3
		completedItem(t, "PROJ-2", day(1), day(2), day(6)), // cycle 4, completed Mar 6
		completedItem(t, "PROJ-3", day(2), day(3), day(9)), // cycle 6, completed Mar 9
		openItem(t, "PROJ-4", day(2), day(3)),
	}

	analysis := NewAnalysis(items, testResolver(t), Calendar{}, Filter{}, day(20))
	rows, err := analysis.RunChart()
	if err != nil {
		t.Fatalf("run chart: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 completed rows, got %d", len(rows))
	}
	for i, key := range []string{"PROJ-1", "PROJ-2", "PROJ-3"} {
		if rows[i].Key != key {
			t.Fatalf("rows out of completion order: %v", rows)
		}
	}

	expectedAvg := []float64{2, 3, 4}
	for i, want := range expectedAvg {
		if math.Abs(rows[i].MovingAvg-want) > 1e-9 {
			t.Errorf("row %d: expected moving average %v, got %v", i, want, rows[i].MovingAvg)
		}
	}
}

func TestRunChartWindowCapsAtTen(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	var items []*workitem.WorkItem
	for i := 0; i < 12; i++ {
		created := base.AddDate(0, 0, i)
		// Item i takes i+1 days, so completions stay in creation order.
		items = append(items, completedItem(t, fmt.Sprintf("PROJ-%d", i+1), created, created, created.AddDate(0, 0, i+1)))
	}

	analysis := NewAnalysis(items, testResolver(t), Calendar{}, Filter{}, base.AddDate(0, 0, 60))
	rows, err := analysis.RunChart()
	if err != nil {
		t.Fatalf("run chart: %v", err)
	}
	last := rows[len(rows)-1]
	// Only the latest ten completions (cycle times 3..12) are averaged.
	if want := 7.5; last.MovingAvg != want {
		t.Errorf("expected moving average %v over the last ten rows, got %v", want, last.MovingAvg)
	}
}
