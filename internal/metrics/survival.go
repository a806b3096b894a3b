package metrics

import "slices"

// Survival builds the empirical survival curve over the ages of started
// items created inside the filter window. Open items age from cycle start
// to now, completed items from cycle start to cycle end.
func (a *Analysis) Survival() ([]SurvivalPoint, error) {
	var ages []int
	for _, item := range a.items {
		if !item.Started || !a.filter.containsDay(item.Item.Created) {
			continue
		}
		ages = append(ages, item.Cycle.Days(a.calendar, a.now))
	}
	if len(ages) == 0 {
		return nil, &InsufficientDataError{View: "survival"}
	}
	return SurvivalCurve(ages), nil
}

// SurvivalCurve computes, for every distinct observed age a, the fraction
// of items whose age is at least a. The result is a non-increasing step
// function starting at 1.0; zero ages are ordinary observations.
func SurvivalCurve(ages []int) []SurvivalPoint {
	sorted := make([]int, len(ages))
	copy(sorted, ages)
	slices.Sort(sorted)

	total := len(sorted)
	var points []SurvivalPoint
	for i := 0; i < total; {
		age := sorted[i]
		points = append(points, SurvivalPoint{
			AgeDays:  age,
			Fraction: float64(total-i) / float64(total),
		})
		for i < total && sorted[i] == age {
			i++
		}
	}
	return points
}
