package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

func TestPearson(t *testing.T) {
	tests := []struct {
		name     string
		xs       []float64
		ys       []float64
		expected float64
		wantErr  bool
	}{
		{name: "perfect positive", xs: []float64{1, 2, 3}, ys: []float64{2, 4, 6}, expected: 1},
		{name: "perfect negative", xs: []float64{1, 2, 3}, ys: []float64{6, 4, 2}, expected: -1},
		{name: "single pair", xs: []float64{1}, ys: []float64{2}, wantErr: true},
		{name: "empty", xs: nil, ys: nil, wantErr: true},
		{name: "zero variance in x", xs: []float64{3, 3, 3}, ys: []float64{1, 2, 3}, wantErr: true},
		{name: "zero variance in y", xs: []float64{1, 2, 3}, ys: []float64{5, 5, 5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pearson(tt.xs, tt.ys)
			if tt.wantErr {
				if !isInsufficient(err) {
					t.Fatalf("expected InsufficientDataError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCorrelationView(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
	}
	estimate := func(v float64) *float64 { return &v }

	build := func(key string, est *float64, created, started, done time.Time) *workitem.WorkItem {
		return mustItem(t, workitem.WorkItem{
			Key:      key,
			Type:     "Story",
			Estimate: est,
			Created:  created,
			Changes: []workitem.StatusChange{
				{Timestamp: started, FromStatus: "To Do", ToStatus: "In Progress"},
				{Timestamp: done, FromStatus: "In Progress", ToStatus: "Done"},
			},
		})
	}

	items := []*workitem.WorkItem{
		build("PROJ-1", estimate(1), day(1), day(2), day(3)),  // cycle 1
		build("PROJ-2", estimate(2), day(1), day(2), day(4)),  // cycle 2
		build("PROJ-3", estimate(5), day(1), day(2), day(7)),  // cycle 5
		build("PROJ-4", nil, day(1), day(2), day(20)),         // no estimate, ignored
	}

	analysis := NewAnalysis(items, testResolver(t), Calendar{}, Filter{}, day(25))
	result, err := analysis.Correlation(KindCycle)
	if err != nil {
		t.Fatalf("correlation: %v", err)
	}
	if result.Pairs != 3 {
		t.Fatalf("expected 3 pairs, got %d", result.Pairs)
	}
	if math.Abs(result.Coefficient-1) > 1e-9 {
		t.Errorf("estimates equal cycle days here, expected 1, got %v", result.Coefficient)
	}
}

func TestCorrelationWithoutEstimatesIsAbsent(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
	}
	items := []*workitem.WorkItem{
		completedItem(t, "PROJ-1", day(1), day(2), day(5)),
		completedItem(t, "PROJ-2", day(1), day(2), day(6)),
	}

	analysis := NewAnalysis(items, testResolver(t), Calendar{}, Filter{}, day(20))
	_, err := analysis.Correlation(KindCycle)
	if !isInsufficient(err) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}
