package metrics

import "time"

// Calendar converts timestamp pairs into day counts, optionally treating
// Saturdays and Sundays as non-days. All arithmetic happens at UTC date
// granularity, so two timestamps on the same calendar date are zero days
// apart regardless of their clock times.
type Calendar struct {
	ExcludeWeekends bool
}

// Days counts the calendar dates in [start, end), minus weekend dates when
// exclusion is on. The result is never negative and Days(t, t) is always
// zero. Pure: equal inputs always produce equal output.
func (c Calendar) Days(start, end time.Time) int {
	from, to := DateOf(start), DateOf(end)
	if !to.After(from) {
		return 0
	}
	days := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if c.ExcludeWeekends && isWeekend(d) {
			continue
		}
		days++
	}
	return days
}

// AddDays walks the given number of counted days forward from start,
// skipping weekends when exclusion is on. The result is a UTC date; with
// exclusion it never lands on a weekend. Non-positive counts return the
// start date unchanged.
func (c Calendar) AddDays(start time.Time, days int) time.Time {
	d := DateOf(start)
	for remaining := days; remaining > 0; {
		d = d.AddDate(0, 0, 1)
		if c.ExcludeWeekends && isWeekend(d) {
			continue
		}
		remaining--
	}
	return d
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
