package metrics

import "math"

// Correlation computes the Pearson coefficient between the estimate field
// and the chosen duration kind over items completed inside the filter
// window. Items without an estimate do not qualify.
func (a *Analysis) Correlation(kind IntervalKind) (*CorrelationResult, error) {
	var estimates, durations []float64
	for _, item := range a.items {
		if !item.Completed() || item.Item.Estimate == nil || !a.filter.containsDay(*item.CompletedAt()) {
			continue
		}
		if kind == KindCycle && !item.Started {
			continue
		}
		interval := item.Lead
		if kind == KindCycle {
			interval = item.Cycle
		}
		estimates = append(estimates, *item.Item.Estimate)
		durations = append(durations, float64(interval.Days(a.calendar, a.now)))
	}

	coefficient, err := Pearson(estimates, durations)
	if err != nil {
		return nil, err
	}
	return &CorrelationResult{Kind: kind, Pairs: len(estimates), Coefficient: coefficient}, nil
}

// Pearson computes the correlation coefficient of two equally long series.
// Fewer than two pairs, or zero variance in either dimension, yields an
// InsufficientDataError: a coefficient is simply not defined there.
func Pearson(xs, ys []float64) (float64, error) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0, &InsufficientDataError{View: "correlation", Need: 2, Got: n}
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
		sumY2 += ys[i] * ys[i]
	}

	varX := float64(n)*sumX2 - sumX*sumX
	varY := float64(n)*sumY2 - sumY*sumY
	if varX == 0 || varY == 0 {
		return 0, &InsufficientDataError{View: "correlation", Reason: "zero variance in one dimension"}
	}

	num := float64(n)*sumXY - sumX*sumY
	return num / math.Sqrt(varX*varY), nil
}
