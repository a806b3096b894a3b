package metrics

import (
	"testing"
	"time"
)

func TestParseGranularity(t *testing.T) {
	tests := []struct {
		token   string
		want    Granularity
		wantErr bool
	}{
		{token: "", want: GranularityDay},
		{token: "day", want: GranularityDay},
		{token: "week", want: GranularityWeek},
		{token: "month", want: GranularityMonth},
		{token: "fortnight", wantErr: true},
		{token: "Week", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseGranularity(tt.token)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseGranularity(%q) expected error, got %q", tt.token, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGranularity(%q) unexpected error: %v", tt.token, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseGranularity(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestSnapToStart(t *testing.T) {
	tests := []struct {
		name        string
		day         time.Time
		granularity Granularity
		want        time.Time
	}{
		{
			name:        "day is identity",
			day:         time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
			granularity: GranularityDay,
			want:        time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "wednesday snaps to monday",
			day:         time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
			granularity: GranularityWeek,
			want:        time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "monday stays put",
			day:         time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			granularity: GranularityWeek,
			want:        time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "sunday belongs to the preceding monday",
			day:         time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			granularity: GranularityWeek,
			want:        time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "week snap crosses month boundary",
			day:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			granularity: GranularityWeek,
			want:        time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "month snaps to the first",
			day:         time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
			granularity: GranularityMonth,
			want:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnapToStart(tt.day, tt.granularity)
			if !got.Equal(tt.want) {
				t.Errorf("SnapToStart(%v, %s) = %v, want %v", tt.day, tt.granularity, got, tt.want)
			}
		})
	}
}

func TestRollupWeekly(t *testing.T) {
	// Friday 2024-03-01 through Tuesday 2024-03-12: three partial-or-full
	// ISO weeks (W09, W10, W11).
	series := ThroughputSeries{
		Start:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Counts: []int{1, 0, 2, 3, 0, 0, 1, 0, 0, 2, 4, 1},
	}

	buckets := Rollup(series, GranularityWeek)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 weekly buckets, got %d", len(buckets))
	}

	wantCounts := []int{3, 6, 5}
	wantLabels := []string{"2024-W09", "2024-W10", "2024-W11"}
	for i, bucket := range buckets {
		if bucket.Count != wantCounts[i] {
			t.Errorf("bucket %s count = %d, want %d", bucket.Label, bucket.Count, wantCounts[i])
		}
		if bucket.Label != wantLabels[i] {
			t.Errorf("bucket %d label = %q, want %q", i, bucket.Label, wantLabels[i])
		}
	}
}

func TestRollupMonthly(t *testing.T) {
	// 2024-02-28 through 2024-03-02 spans the leap-day month boundary.
	series := ThroughputSeries{
		Start:  time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
		Counts: []int{1, 2, 3, 4},
	}

	buckets := Rollup(series, GranularityMonth)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 monthly buckets, got %d", len(buckets))
	}
	if buckets[0].Label != "Feb 2024" || buckets[0].Count != 3 {
		t.Errorf("february bucket = %q/%d, want Feb 2024/3", buckets[0].Label, buckets[0].Count)
	}
	if buckets[1].Label != "Mar 2024" || buckets[1].Count != 7 {
		t.Errorf("march bucket = %q/%d, want Mar 2024/7", buckets[1].Label, buckets[1].Count)
	}
}

func TestRollupDailyPreservesSeries(t *testing.T) {
	series := ThroughputSeries{
		Start:  time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Counts: []int{2, 0, 1},
	}

	buckets := Rollup(series, GranularityDay)
	if len(buckets) != 3 {
		t.Fatalf("expected one bucket per day, got %d", len(buckets))
	}
	for i, bucket := range buckets {
		if bucket.Count != series.Counts[i] {
			t.Errorf("day %d count = %d, want %d", i, bucket.Count, series.Counts[i])
		}
		if want := series.Day(i); !bucket.Start.Equal(want) {
			t.Errorf("day %d start = %v, want %v", i, bucket.Start, want)
		}
	}
	if buckets[0].Label != "2024-03-04" {
		t.Errorf("daily label = %q, want 2024-03-04", buckets[0].Label)
	}
}

func TestRollupEmptySeries(t *testing.T) {
	buckets := Rollup(ThroughputSeries{}, GranularityWeek)
	if len(buckets) != 0 {
		t.Errorf("empty series should produce no buckets, got %d", len(buckets))
	}
}
