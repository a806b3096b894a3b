package metrics

import (
	"slices"
	"strings"
)

// movingAverageWindow is the number of latest completions smoothed into
// each run-chart point.
const movingAverageWindow = 10

// RunChart orders completed items by completion date and pairs every cycle
// time with the trailing moving average over the latest completions, the
// shape the cycle-time run chart plots.
func (a *Analysis) RunChart() ([]RunChartRow, error) {
	var rows []RunChartRow
	for _, item := range a.items {
		if !item.Completed() || !item.Started || !a.filter.containsDay(*item.CompletedAt()) {
			continue
		}
		rows = append(rows, RunChartRow{
			Key:         item.Item.Key,
			CompletedAt: *item.CompletedAt(),
			CycleDays:   item.Cycle.Days(a.calendar, a.now),
		})
	}
	if len(rows) == 0 {
		return nil, &InsufficientDataError{View: "run chart"}
	}

	slices.SortFunc(rows, func(x, y RunChartRow) int {
		if c := x.CompletedAt.Compare(y.CompletedAt); c != 0 {
			return c
		}
		return strings.Compare(x.Key, y.Key)
	})

	for i := range rows {
		lo := i - movingAverageWindow + 1
		if lo < 0 {
			lo = 0
		}
		sum := 0
		for j := lo; j <= i; j++ {
			sum += rows[j].CycleDays
		}
		rows[i].MovingAvg = float64(sum) / float64(i-lo+1)
	}
	return rows, nil
}
