package metrics

import (
	"fmt"
	"time"
)

// Granularity selects the bucket size for throughput rollups.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity validates a rollup token, defaulting empty to daily.
func ParseGranularity(token string) (Granularity, error) {
	switch token {
	case "", "day":
		return GranularityDay, nil
	case "week":
		return GranularityWeek, nil
	case "month":
		return GranularityMonth, nil
	}
	return "", fmt.Errorf("unknown granularity %q (want day, week or month)", token)
}

// Bucket is one rollup period of a throughput series.
type Bucket struct {
	Start time.Time `json:"start"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

// Rollup aggregates the daily series into buckets of the given granularity.
// Weeks are Monday-anchored; the first and last bucket may cover the range
// only partially.
func Rollup(series ThroughputSeries, granularity Granularity) []Bucket {
	var buckets []Bucket
	for i, count := range series.Counts {
		day := series.Day(i)
		start := SnapToStart(day, granularity)
		if len(buckets) == 0 || !buckets[len(buckets)-1].Start.Equal(start) {
			buckets = append(buckets, Bucket{
				Start: start,
				Label: BucketLabel(start, granularity),
			})
		}
		buckets[len(buckets)-1].Count += count
	}
	return buckets
}

// SnapToStart normalizes a date to the beginning of its bucket.
func SnapToStart(t time.Time, granularity Granularity) time.Time {
	switch granularity {
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case GranularityWeek:
		// Snap to Monday
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday -> 7
		}
		return time.Date(t.Year(), t.Month(), t.Day()-(weekday-1), 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

// BucketLabel renders a human-readable bucket label, e.g. "2024-03-04",
// "2024-W10" or "Mar 2024".
func BucketLabel(start time.Time, granularity Granularity) string {
	switch granularity {
	case GranularityMonth:
		return start.Format("Jan 2006")
	case GranularityWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return start.Format("2006-01-02")
	}
}
